// Package parser picks a table loader by file extension.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/insights-explorer/internal/table"
)

// Loader turns one file format into a table.
type Loader interface {
	CanLoad(filename string) bool
	Load(r io.Reader, name string, opt Options) (*table.Table, error)
}

// Options are the table options plus format-specific selectors.
type Options struct {
	table.Options
	// Sheet selects an XLSX worksheet; empty means the first sheet.
	Sheet string
}

// DefaultOptions returns the table defaults.
func DefaultOptions() Options {
	return Options{Options: table.DefaultOptions()}
}

// ErrUnsupported indicates no registered loader accepts the file.
var ErrUnsupported = errors.New("unsupported file format")

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// Load reads r with the loader that accepts name.
func Load(name string, r io.Reader, opt Options) (*table.Table, error) {
	for _, l := range registry {
		if l.CanLoad(name) {
			return l.Load(r, name, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(name))
}

// LoadFile opens path and loads it. The table is named after the file's base name.
func LoadFile(path string, opt Options) (*table.Table, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Load(filepath.Base(path), f, opt)
}

// Supported reports whether any loader accepts filename.
func Supported(filename string) bool {
	for _, l := range registry {
		if l.CanLoad(filename) {
			return true
		}
	}
	return false
}
