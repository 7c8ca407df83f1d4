package ooldml

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDestDir     = "main"
	DefaultCLDRVersion = "1.3"
	DefaultWorkers     = 4
)

// Config holds the conversion options, it can be loaded from a YAML file.
type Config struct {
	DestDir      string `yaml:"dest_dir"`
	DTDDir       string `yaml:"dtd_dir"`
	CLDRVersion  string `yaml:"cldr_version"`
	DateTime     bool   `yaml:"date_time"` // translate date and time format codes to LDML patterns
	ResolveRefs  bool   `yaml:"res_refs"`
	CLDROnly     bool   `yaml:"cldr_only"` // omit openOffice specials
	Supplemental string `yaml:"supplemental"`
	Workers      int    `yaml:"workers"`
	Verbose      bool   `yaml:"verbose"`
}

func DefaultConfig() Config {
	return Config{
		DestDir:     DefaultDestDir,
		CLDRVersion: DefaultCLDRVersion,
		Workers:     DefaultWorkers,
	}
}

// LoadConfig reads a YAML file on top of the default configuration.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("ooldml: %v: %w", filename, err)
	}
	return cfg, cfg.Validate()
}

// Validate returns all configuration problems combined.
func (cfg Config) Validate() error {
	var err error
	if cfg.DestDir == "" {
		err = multierr.Append(err, errors.New("ooldml: dest_dir must be set"))
	}
	if _, errVersion := cfg.CLDRVersionNumber(); errVersion != nil {
		err = multierr.Append(err, errVersion)
	}
	if cfg.Workers < 1 {
		err = multierr.Append(err, fmt.Errorf("ooldml: workers must be positive, got %d", cfg.Workers))
	}
	if cfg.DTDDir != "" {
		if info, errStat := os.Stat(cfg.DTDDir); errStat != nil {
			err = multierr.Append(err, fmt.Errorf("ooldml: dtd_dir: %w", errStat))
		} else if !info.IsDir() {
			err = multierr.Append(err, fmt.Errorf("ooldml: dtd_dir %v is not a directory", cfg.DTDDir))
		}
	}
	return err
}

// CLDRVersionNumber returns the CLDR version as major and minor number, eg. 1.4 is 104.
func (cfg Config) CLDRVersionNumber() (int, error) {
	major, minor, _ := strings.Cut(cfg.CLDRVersion, ".")
	n, ok := parseInt(major)
	if !ok || n < 0 {
		return 0, fmt.Errorf("ooldml: bad cldr_version %q", cfg.CLDRVersion)
	}
	m := 0
	if minor != "" {
		if m, ok = parseInt(minor); !ok || m < 0 || 99 < m {
			return 0, fmt.Errorf("ooldml: bad cldr_version %q", cfg.CLDRVersion)
		}
	}
	return 100*n + m, nil
}
