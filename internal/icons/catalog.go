package icons

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/mapmarks/internal/domain"
)

//go:embed icons.yaml
var builtin []byte

// Catalog is the fixed, ordered set of bookmark icons.
type Catalog struct {
	icons  []domain.Icon
	byName map[string]int
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(builtin)
}

// MustLoad panics if the embedded catalog is invalid.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from yaml. The first icon is the default.
func Parse(data []byte) (*Catalog, error) {
	var list []domain.Icon
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse icon catalog: %w", err)
	}
	if len(list) == 0 {
		return nil, errors.New("icon catalog is empty")
	}

	c := &Catalog{
		icons:  make([]domain.Icon, 0, len(list)),
		byName: make(map[string]int, len(list)),
	}
	for _, icon := range list {
		if icon.Name == "" {
			return nil, fmt.Errorf("icon catalog entry %d has no name", len(c.icons))
		}
		if _, dup := c.byName[icon.Name]; dup {
			return nil, fmt.Errorf("duplicate icon %q in catalog", icon.Name)
		}
		c.byName[icon.Name] = len(c.icons)
		c.icons = append(c.icons, icon)
	}
	return c, nil
}

// All returns the icons in catalog order.
func (c *Catalog) All() []domain.Icon {
	return append([]domain.Icon(nil), c.icons...)
}

func (c *Catalog) Default() domain.Icon {
	return c.icons[0]
}

// ByName returns the named icon, or the default icon when unknown.
func (c *Catalog) ByName(name string) domain.Icon {
	if i, ok := c.byName[name]; ok {
		return c.icons[i]
	}
	return c.Default()
}

// Has reports whether name is in the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}
