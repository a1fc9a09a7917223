package registry

import "reflect"

// TypeIdentity is the stable name of T: its import path and type string.
// Predeclared types have no import path and are named by their type string
// alone.
func TypeIdentity[T any]() string {
	t := reflect.TypeFor[T]()
	if p := t.PkgPath(); p != "" {
		return p + ":" + t.String()
	}
	return t.String()
}
