//go:build libmpv && cgo

package libmpv

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/mattn/go-pointer"
	"github.com/mpvkit/mpvkit/engine"
)

//export mpvkitWakeup
func mpvkitWakeup(ctx unsafe.Pointer) {
	if fn, ok := pointer.Restore(ctx).(func()); ok {
		fn()
	}
}

//export mpvkitUpdate
func mpvkitUpdate(ctx unsafe.Pointer) {
	if fn, ok := pointer.Restore(ctx).(func()); ok {
		fn()
	}
}

//export mpvkitProcAddress
func mpvkitProcAddress(ctx unsafe.Pointer, name *C.char) C.uintptr_t {
	resolve, ok := pointer.Restore(ctx).(engine.ProcAddressFunc)
	if !ok {
		return 0
	}
	return C.uintptr_t(resolve(C.GoString(name)))
}
