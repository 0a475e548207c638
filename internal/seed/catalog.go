// Package seed loads the reference data a ledger starts from.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rfidledger/m/internal/ledger"
)

//go:embed default_seed.yaml
var defaultSeed []byte

// Profile is the UI role configuration served for a client mode.
type Profile struct {
	Role   string `yaml:"role" json:"role"`
	UIMode string `yaml:"uiMode" json:"uiMode"`
}

// Catalog is a seed document: ledger reference data plus client profiles.
type Catalog struct {
	ledger.Seed `yaml:",inline"`
	Profiles    map[string]Profile `yaml:"profiles"`
}

// Profile returns the profile for a client mode, falling back to the
// "default" profile.
func (c Catalog) Profile(mode string) Profile {
	if p, ok := c.Profiles[mode]; ok {
		return p
	}
	if p, ok := c.Profiles["default"]; ok {
		return p
	}
	return Profile{Role: "operator", UIMode: mode}
}

// Parse decodes a YAML seed document.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode seed: %w", err)
	}
	return c, nil
}

// LoadCatalog reads the seed at path, or the embedded default when path is
// empty.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return Parse(defaultSeed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Parse(data)
}
