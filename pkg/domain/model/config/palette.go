package config

// ShapeDef declares one shape type the agent is allowed to create
type ShapeDef struct {
	Type         string
	Name         string
	DefaultColor string
	DefaultFill  string
}

// Palette holds the shape palette configuration
type Palette struct {
	Shapes []ShapeDef
}

// Allows reports whether the palette permits creating the given shape type.
func (p *Palette) Allows(shapeType string) bool {
	if p == nil {
		return true
	}
	for _, s := range p.Shapes {
		if s.Type == shapeType {
			return true
		}
	}
	return false
}

// Shape returns the palette entry for a shape type.
func (p *Palette) Shape(shapeType string) (ShapeDef, bool) {
	if p == nil {
		return ShapeDef{}, false
	}
	for _, s := range p.Shapes {
		if s.Type == shapeType {
			return s, true
		}
	}
	return ShapeDef{}, false
}

// DefaultPalette returns the built-in palette used when no configuration file
// is given.
func DefaultPalette() *Palette {
	return &Palette{
		Shapes: []ShapeDef{
			{Type: "rectangle", Name: "Rectangle", DefaultColor: "black", DefaultFill: "none"},
			{Type: "ellipse", Name: "Ellipse", DefaultColor: "black", DefaultFill: "none"},
			{Type: "triangle", Name: "Triangle", DefaultColor: "black", DefaultFill: "none"},
			{Type: "line", Name: "Line", DefaultColor: "black"},
			{Type: "arrow", Name: "Arrow", DefaultColor: "black"},
			{Type: "text", Name: "Text", DefaultColor: "black"},
			{Type: "note", Name: "Sticky Note", DefaultColor: "black", DefaultFill: "yellow"},
		},
	}
}
