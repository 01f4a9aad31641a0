package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Manifest describes one rendered image.
type Manifest struct {
	Image       string  `json:"image"`
	Format      Format  `json:"format"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Mesh        string  `json:"mesh"`
	Shader      string  `json:"shader"`
	Topology    string  `json:"topology"`
	Cull        string  `json:"cull"`
	DepthTest   bool    `json:"depth_test"`
	Derivatives bool    `json:"derivatives"`
	Workers     int     `json:"workers"`
	Faces       int64   `json:"faces"`
	Primitives  int64   `json:"primitives"`
	Errors      int64   `json:"errors"`
	ElapsedMS   float64 `json:"elapsed_ms"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("export: manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: manifest: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
