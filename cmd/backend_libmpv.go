//go:build libmpv && cgo

package cmd

import (
	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/engine/libmpv"
)

func libmpvFactory() (engine.Factory, error) {
	return libmpv.Factory(), nil
}
