package object

import (
	"fmt"

	"github.com/roach88/deltastate/internal/register"
	"github.com/roach88/deltastate/internal/schema"
)

// Resolve picks the schema named by name from cat. An empty name yields a
// Bare schema of the given width (64 when 0). A non-nil maxHistory overrides
// the history depth of every field.
func Resolve(cat *schema.Catalog, name string, width int, maxHistory *int) (schema.Schema, error) {
	if name == "" || name == BareNamespace {
		if width == 0 {
			width = 64
		}
		depth := register.DefaultMaxHistory
		if maxHistory != nil {
			depth = *maxHistory
		}
		return Bare(width, depth), nil
	}
	if width != 0 {
		return schema.Schema{}, fmt.Errorf("width applies only to the bare register, not %s", name)
	}

	if cat == nil {
		var err error
		if cat, err = schema.Builtin(); err != nil {
			return schema.Schema{}, fmt.Errorf("load builtin schemas: %w", err)
		}
	}
	s, ok := cat.Lookup(name)
	if !ok {
		return schema.Schema{}, fmt.Errorf("unknown schema %q", name)
	}
	if maxHistory != nil {
		s = WithHistoryDepth(s, *maxHistory)
	}
	return s, nil
}
