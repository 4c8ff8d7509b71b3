package hostdemo

import (
	"os"

	"flowcore/internal/registry"
	"flowcore/internal/types"
)

// RegisterFS publishes `fs.exists` and `fs.isDirectory`, grounded on x0's
// `mod_indexfile.cpp`/`plugins/compress.cpp` file-metadata checks. Both are
// Property-kind natives called with one string argument, giving CodeGen's
// Property-kind dispatch path a second exerciser independent of the
// Handler/Function paths.
func RegisterFS(reg *registry.Registry) error {
	if _, err := reg.RegisterProperty("fs.exists", types.Bool, fsExists, nil); err != nil {
		return err
	}
	_, err := reg.RegisterProperty("fs.isDirectory", types.Bool, fsIsDirectory, nil)
	return err
}

func fsExists(_ interface{}, argv []registry.Value) {
	path := argOr(argv, "")
	_, err := os.Stat(path)
	argv[0] = registry.Value{Kind: types.Bool, Number: boolNum(err == nil)}
}

func fsIsDirectory(_ interface{}, argv []registry.Value) {
	path := argOr(argv, "")
	info, err := os.Stat(path)
	argv[0] = registry.Value{Kind: types.Bool, Number: boolNum(err == nil && info.IsDir())}
}

func argOr(argv []registry.Value, fallback string) string {
	if len(argv) < 2 {
		return fallback
	}
	return argv[1].Str
}

func boolNum(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
