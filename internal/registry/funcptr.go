package registry

import "reflect"

// funcPointer extracts a comparable identity for a func value. Go forbids
// comparing funcs directly; reflect's pointer value is stable for the
// lifetime of the process, which is all Unregister needs.
func funcPointer(fn interface{}) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}
