package hostdemo

import (
	"golang.org/x/crypto/bcrypt"

	"flowcore/internal/registry"
	"flowcore/internal/types"
)

// RegisterAuth publishes the `auth.checkPassword` SharedFunction: a real
// credential check needs bcrypt, not the runtime's constant-shape (not
// constant-time) CmpString. Flow call shape: `auth.checkPassword(password,
// hash)` -> bool.
func RegisterAuth(reg *registry.Registry) error {
	_, err := reg.RegisterSharedFunction("auth.checkPassword", types.Bool, checkPassword, nil)
	return err
}

func checkPassword(_ interface{}, argv []registry.Value) {
	if len(argv) != 3 {
		argv[0] = registry.Value{Kind: types.Bool, Number: 0}
		return
	}
	password := argv[1].Str
	hash := argv[2].Str

	ok := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	n := int64(0)
	if ok {
		n = 1
	}
	argv[0] = registry.Value{Kind: types.Bool, Number: n}
}
