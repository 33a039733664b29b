package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound    = goerr.New("configuration file not found")
	ErrInvalidLogLevel   = goerr.New("invalid log level")
	ErrInvalidLogFormat  = goerr.New("invalid log format")
	ErrInvalidPalette    = goerr.New("invalid palette configuration")
	ErrDuplicateShapeDef = goerr.New("duplicate shape definition")
	ErrMissingShapeName  = goerr.New("shape name is required")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	ShapeNameKey  = "shape_name"
	ShapeIndexKey = "shape_index"
)
