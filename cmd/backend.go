package cmd

import (
	"fmt"

	"github.com/mpvkit/mpvkit/constant"
	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/engine/ipc"
	"github.com/mpvkit/mpvkit/key"
	"github.com/mpvkit/mpvkit/where"
	"github.com/spf13/viper"
)

func engineFactory(backend string) (engine.Factory, error) {
	switch backend {
	case constant.BackendIPC, "":
		return ipc.Factory(viper.GetString(key.EngineBinary), where.Sockets()), nil
	case constant.BackendLibmpv:
		return libmpvFactory()
	default:
		return nil, fmt.Errorf("unknown engine backend %q, available: %s, %s", backend, constant.BackendIPC, constant.BackendLibmpv)
	}
}
