package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed builtin/*.cue
var builtinFS embed.FS

// Builtin namespaces.
const (
	PriceTick = "Finance.Trading.PriceTick"
	IMUFusion = "Edge.Sensor.IMUFusion"
	H264Delta = "Video.Streaming.H264Delta"
)

var builtin = sync.OnceValues(loadBuiltin)

// Builtin returns a fresh copy of the catalogue compiled from the embedded CUE
// schemas. Callers may add to the returned catalog.
func Builtin() (*Catalog, error) {
	cat, err := builtin()
	if err != nil {
		return nil, err
	}
	out, _ := NewCatalog()
	if err := out.Merge(cat); err != nil {
		return nil, err
	}
	return out, nil
}

func loadBuiltin() (*Catalog, error) {
	files, err := fs.Glob(builtinFS, "builtin/*.cue")
	if err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	cat, _ := NewCatalog()
	for _, name := range files {
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		v := ctx.CompileBytes(data, cue.Filename(name))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("builtin schema %s: %w", name, formatCUEError(err))
		}
		if errs := compileDomains(v, cat, LoadModeFailFast); len(errs) > 0 {
			return nil, fmt.Errorf("builtin schema %s: %w", name, errs[0])
		}
	}
	return cat, nil
}
