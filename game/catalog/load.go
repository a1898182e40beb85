package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/cards.yaml
var defaultData []byte

// File is the on-disk shape of a catalog source.
type File struct {
	Groups []Group `yaml:"groups"`
}

// Parse decodes YAML catalog data and builds a Catalog validated against order.
func Parse(data []byte, order RarityOrder) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return New(order, f.Groups...)
}

// Load reads a catalog file from disk.
func Load(path string, order RarityOrder) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(b, order)
}

// Default builds the embedded catalog shipped with the binary.
func Default(order RarityOrder) (*Catalog, error) {
	return Parse(defaultData, order)
}
