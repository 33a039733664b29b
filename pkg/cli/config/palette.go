package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	modelconfig "github.com/easel-labs/easel/pkg/domain/model/config"
)

// PaletteFile is the TOML representation of a shape palette
type PaletteFile struct {
	Shapes []ShapeEntry `toml:"shapes"`
}

// ShapeEntry is one shape definition in a palette file
type ShapeEntry struct {
	Type         string `toml:"type"`
	Name         string `toml:"name"`
	DefaultColor string `toml:"default_color"`
	DefaultFill  string `toml:"default_fill"`
}

// Palette holds CLI flags for the shape palette
type Palette struct {
	path string
}

// Flags returns CLI flags for palette configuration
func (x *Palette) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "palette",
			Usage:       "Path to shape palette TOML file (built-in palette when empty)",
			Sources:     cli.EnvVars("EASEL_PALETTE"),
			Destination: &x.path,
		},
	}
}

// Configure loads the palette file, falling back to the built-in palette when
// no path is set.
func (x *Palette) Configure() (*modelconfig.Palette, error) {
	if x.path == "" {
		return modelconfig.DefaultPalette(), nil
	}
	return LoadPalette(x.path)
}

// LoadPalette reads and validates a palette TOML file
func LoadPalette(path string) (*modelconfig.Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "palette file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read palette file", goerr.V(ConfigPathKey, path))
	}

	var file PaletteFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse palette file", goerr.V(ConfigPathKey, path))
	}

	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "palette validation failed", goerr.V(ConfigPathKey, path))
	}

	return file.Palette(), nil
}

// Validate checks structural constraints of the palette file
func (x *PaletteFile) Validate() error {
	if len(x.Shapes) == 0 {
		return goerr.Wrap(ErrInvalidPalette, "palette declares no shapes")
	}

	seen := make(map[string]struct{}, len(x.Shapes))
	for i, s := range x.Shapes {
		if s.Type == "" {
			return goerr.Wrap(ErrMissingShapeName, "shape type is empty", goerr.V(ShapeIndexKey, i))
		}
		if _, ok := seen[s.Type]; ok {
			return goerr.Wrap(ErrDuplicateShapeDef, "shape type declared twice",
				goerr.V(ShapeNameKey, s.Type),
				goerr.V(ShapeIndexKey, i),
			)
		}
		seen[s.Type] = struct{}{}
	}
	return nil
}

// Palette converts the file representation into the domain palette
func (x *PaletteFile) Palette() *modelconfig.Palette {
	p := &modelconfig.Palette{
		Shapes: make([]modelconfig.ShapeDef, 0, len(x.Shapes)),
	}
	for _, s := range x.Shapes {
		name := s.Name
		if name == "" {
			name = s.Type
		}
		p.Shapes = append(p.Shapes, modelconfig.ShapeDef{
			Type:         s.Type,
			Name:         name,
			DefaultColor: s.DefaultColor,
			DefaultFill:  s.DefaultFill,
		})
	}
	return p
}
