//go:build !libmpv || !cgo

package cmd

import (
	"errors"

	"github.com/mpvkit/mpvkit/engine"
)

func libmpvFactory() (engine.Factory, error) {
	return nil, errors.New("this build has no libmpv backend, rebuild with -tags libmpv")
}
