package bookmarks

import (
	"github.com/MrSnakeDoc/mapmarks/internal/engine"
)

// Category is a handle on one category. It holds no bookmarks; size, name
// and id are read from the engine on every call.
type Category struct {
	index  int
	engine engine.Engine
}

func (c *Category) Index() int   { return c.index }
func (c *Category) Size() int    { return c.engine.CategorySize(c.index) }
func (c *Category) ID() string   { return c.engine.CategoryID(c.index) }
func (c *Category) Name() string { return c.engine.CategoryName(c.index) }
