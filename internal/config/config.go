package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"softraster/internal/export"
)

// ErrUnknownFormat is returned for a config file with an unsupported
// extension.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Config holds the scene and render settings.
type Config struct {
	// Scene
	Mesh     string     `json:"mesh" toml:"mesh" yaml:"mesh"`
	Rotation [3]float64 `json:"rotation" toml:"rotation" yaml:"rotation"` // XYZ degrees
	Margin   float64    `json:"margin" toml:"margin" yaml:"margin"`
	Shader   string     `json:"shader" toml:"shader" yaml:"shader"`
	Color    []float64  `json:"color" toml:"color" yaml:"color"` // RGB or RGBA in [0,1]
	Topology string     `json:"topology" toml:"topology" yaml:"topology"`

	// Target
	Width       int       `json:"width" toml:"width" yaml:"width"`
	Height      int       `json:"height" toml:"height" yaml:"height"`
	Background  []float64 `json:"background" toml:"background" yaml:"background"`
	Cull        string    `json:"cull" toml:"cull" yaml:"cull"`
	DepthTest   *bool     `json:"depth_test" toml:"depth_test" yaml:"depth_test"`
	Derivatives bool      `json:"derivatives" toml:"derivatives" yaml:"derivatives"`

	// Output
	Output   string `json:"output" toml:"output" yaml:"output"`
	Format   string `json:"format" toml:"format" yaml:"format"`
	Scale    int    `json:"scale" toml:"scale" yaml:"scale"`
	Manifest string `json:"manifest" toml:"manifest" yaml:"manifest"`
	Workers  int    `json:"workers" toml:"workers" yaml:"workers"`
}

// Load reads a JSON, TOML or YAML config file, chosen by extension.
// Unknown keys are rejected. Fields not set in the file keep their zero
// values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values and nil pointers mean "not given".
type Flags struct {
	Mesh        string
	Output      string
	Format      string
	Width       int
	Height      int
	Cull        string
	DepthTest   *bool
	Derivatives *bool
	Topology    string
	Shader      string
	Workers     int
	Scale       int
	Manifest    string
}

// Resolve applies flags over the file settings and fills in defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	setString(&c.Mesh, flags.Mesh)
	setString(&c.Output, flags.Output)
	setString(&c.Format, flags.Format)
	setString(&c.Cull, flags.Cull)
	setString(&c.Topology, flags.Topology)
	setString(&c.Shader, flags.Shader)
	setString(&c.Manifest, flags.Manifest)
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}
	if flags.DepthTest != nil {
		v := *flags.DepthTest
		c.DepthTest = &v
	}
	if flags.Derivatives != nil {
		c.Derivatives = *flags.Derivatives
	}

	// Defaults
	if c.Width <= 0 {
		c.Width = 256
	}
	if c.Height <= 0 {
		c.Height = c.Width
	}
	if c.Cull == "" {
		c.Cull = "back"
	}
	if c.DepthTest == nil {
		v := true
		c.DepthTest = &v
	}
	if c.Topology == "" {
		c.Topology = "triangles"
	}
	if c.Shader == "" {
		c.Shader = "lambert"
	}
	if c.Mesh == "" {
		c.Mesh = "cube"
	}
	if c.Output == "" {
		c.Output = "render.png"
	}
	if c.Format == "" {
		c.Format = string(export.FormatFromPath(c.Output))
	}
	if c.Scale <= 0 {
		c.Scale = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports settings Resolve cannot fix.
func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("size %dx%d", c.Width, c.Height))
	}
	if c.Margin < 0 || c.Margin >= 1 {
		errs = append(errs, fmt.Errorf("margin %g outside [0,1)", c.Margin))
	}
	if n := len(c.Color); n != 0 && n != 3 && n != 4 {
		errs = append(errs, fmt.Errorf("color needs 3 or 4 components, got %d", n))
	}
	if n := len(c.Background); n != 0 && n != 3 && n != 4 {
		errs = append(errs, fmt.Errorf("background needs 3 or 4 components, got %d", n))
	}
	if _, err := export.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// RGBA expands a 3- or 4-component color; def is returned for an empty one.
func RGBA(c []float64, def [4]float64) [4]float64 {
	switch len(c) {
	case 3:
		return [4]float64{c[0], c[1], c[2], 1}
	case 4:
		return [4]float64{c[0], c[1], c[2], c[3]}
	}
	return def
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
