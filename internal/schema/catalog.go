package schema

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateNamespace is returned when two schemas share a namespace.
var ErrDuplicateNamespace = errors.New("duplicate namespace")

// Catalog is a set of schemas with unique namespaces.
type Catalog struct {
	byName map[string]Schema
}

// NewCatalog builds a catalog from schemas. Namespaces must be unique.
func NewCatalog(schemas ...Schema) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Schema, len(schemas))}
	for _, s := range schemas {
		if err := c.Add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add inserts s. Returns ErrDuplicateNamespace if its namespace is taken.
// The zero Catalog is ready to use.
func (c *Catalog) Add(s Schema) error {
	if c.byName == nil {
		c.byName = make(map[string]Schema)
	}
	name := s.Name()
	if _, ok := c.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNamespace, name)
	}
	c.byName[name] = s
	return nil
}

// Merge adds every schema of other to c, stopping at the first duplicate.
func (c *Catalog) Merge(other *Catalog) error {
	for _, s := range other.All() {
		if err := c.Add(s); err != nil {
			return err
		}
	}
	return nil
}

// Lookup finds a schema by dotted namespace.
func (c *Catalog) Lookup(name string) (Schema, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Len returns the number of schemas.
func (c *Catalog) Len() int {
	return len(c.byName)
}

// All returns schemas sorted by namespace.
func (c *Catalog) All() []Schema {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Schema, len(names))
	for i, name := range names {
		out[i] = c.byName[name]
	}
	return out
}
