package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads a configuration file from the given path, layered over the
// defaults for home. The format is determined by the file extension:
//   - .json for JSON
//   - .yaml or .yml for YAML
//   - .hcl for HCL
//   - .syncsetup will try YAML then HCL
func LoadConfig(path string, home string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	cfg := Default(home)

	// For .syncsetup files, try both YAML and HCL
	if ext == ".syncsetup" || filepath.Base(path) == ".syncsetup" {
		if yerr := loadYAML(data, cfg); yerr == nil {
			return finish(cfg)
		}
		if herr := loadHCL(data, path, cfg); herr == nil {
			return finish(cfg)
		}
		return nil, errors.Errorf("parsing %s as YAML or HCL failed", path)
	}

	switch ext {
	case ".json":
		err = loadJSON(data, cfg)
	case ".yaml", ".yml":
		err = loadYAML(data, cfg)
	case ".hcl":
		err = loadHCL(data, path, cfg)
	default:
		return nil, errors.Errorf("unsupported file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// loadJSON decodes JSON data over cfg
func loadJSON(data []byte, cfg *Config) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return errors.Errorf("parsing JSON: %w", err)
	}
	return nil
}

// loadYAML decodes YAML data over cfg
func loadYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return errors.Errorf("parsing YAML: %w", err)
	}
	return nil
}
