package protocol

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogRaw []byte

// CatalogField describes one payload field of a cataloged command.
type CatalogField struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Required    bool   `yaml:"required" json:"required"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// CatalogEntry describes one command accepted on the control socket.
type CatalogEntry struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description,omitempty"`
	Fields      []CatalogField `yaml:"fields" json:"fields,omitempty"`
}

var (
	catalogOnce sync.Once
	catalog     []CatalogEntry
	catalogErr  error
)

// Catalog returns the embedded command catalog.
func Catalog() ([]CatalogEntry, error) {
	catalogOnce.Do(func() {
		var doc struct {
			Commands []CatalogEntry `yaml:"commands"`
		}
		if err := yaml.Unmarshal(catalogRaw, &doc); err != nil {
			catalogErr = fmt.Errorf("parse command catalog: %w", err)
			return
		}
		catalog = doc.Commands
	})
	return catalog, catalogErr
}
