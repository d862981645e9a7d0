// Package catalog provides the read-only exercise catalog used to seed new exercises.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Entry is a catalog exercise definition.
type Entry struct {
	ID          string `yaml:"id" toml:"id" json:"id"`
	Name        string `yaml:"name" toml:"name" json:"name"`
	Description string `yaml:"description" toml:"description" json:"description"`
	Category    string `yaml:"category" toml:"category" json:"category"`
}

type file struct {
	Exercises []Entry `yaml:"exercises" toml:"exercises"`
}

// Catalog is an immutable id-indexed set of entries.
type Catalog struct {
	entries []Entry
	byID    map[string]Entry
}

// Default returns the catalog bundled with the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog file. Files ending in .toml are decoded as TOML,
// anything else as YAML.
func Load(path string) (*Catalog, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var f file
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("reading catalog file: %w", err)
		}
		return build(f)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML. Entries need a unique id and a name.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return build(f)
}

func build(f file) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Entry, len(f.Exercises))}
	for i, e := range f.Exercises {
		if e.ID == "" || e.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: id and name are required", i)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, e.ID)
		}
		c.byID[e.ID] = e
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Lookup returns the entry with the given id.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// List returns all entries in file order.
func (c *Catalog) List() []Entry {
	return append([]Entry(nil), c.entries...)
}
