// Package tables loads table definitions: the board size and the tokens
// placed on it at start.
package tables

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var TablesFS embed.FS

// Table describes one shared board.
type Table struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Tokens []Token `yaml:"tokens"`
}

// Token is a piece placed on the table at load.
type Token struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Owner     string  `yaml:"owner"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Radius    float64 `yaml:"radius"`
	Elevation float64 `yaml:"elevation"`
	Color     string  `yaml:"color"`
}

// Load reads a table by file name, preferring an on-disk copy so local
// edits win over the embedded default.
func Load(name string) (*Table, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		data, err = fs.ReadFile(TablesFS, name)
		if err != nil {
			return nil, fmt.Errorf("read table: %w", err)
		}
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal table: %w", err)
	}
	if t.Width <= 0 || t.Height <= 0 {
		return nil, fmt.Errorf("table %s: non-positive size", name)
	}
	for i := range t.Tokens {
		if t.Tokens[i].ID == "" {
			return nil, fmt.Errorf("table %s: token %d missing id", name, i)
		}
		if t.Tokens[i].Radius <= 0 {
			t.Tokens[i].Radius = 16
		}
	}
	return &t, nil
}
