package translation

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// routeFile is the TOML layout of a route table:
//
//	[[route]]
//	source = "el"
//	target = "en"
//	model = "Helsinki-NLP/opus-mt-el-en"
type routeFile struct {
	Routes []routeFileEntry `toml:"route"`
}

type routeFileEntry struct {
	Source string `toml:"source"`
	Target string `toml:"target"`
	Model  string `toml:"model"`
}

// LoadRouteFile reads a TOML route table from path.
func LoadRouteFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route file: %w", err)
	}
	registry, err := ParseRouteFile(raw)
	if err != nil {
		return nil, fmt.Errorf("route file %s: %w", path, err)
	}
	return registry, nil
}

// ParseRouteFile builds a registry from TOML. Unknown keys and empty tables
// are rejected.
func ParseRouteFile(raw []byte) (*Registry, error) {
	decoder := toml.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()

	var parsed routeFile
	if err := decoder.Decode(&parsed); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return nil, fmt.Errorf("unknown keys: %s", strictErr.String())
		}
		return nil, fmt.Errorf("decode TOML: %w", err)
	}
	if len(parsed.Routes) == 0 {
		return nil, fmt.Errorf("no [[route]] entries")
	}

	registry := NewRegistry()
	for i, entry := range parsed.Routes {
		id, err := routeID(entry.Source, entry.Target, fmt.Sprintf("%s-%s", entry.Source, entry.Target))
		if err != nil {
			return nil, fmt.Errorf("route %d: %w", i+1, err)
		}
		if err := registry.Register(id, entry.Model); err != nil {
			return nil, fmt.Errorf("route %d: %w", i+1, err)
		}
	}
	return registry, nil
}
