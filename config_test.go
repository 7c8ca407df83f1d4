package ooldml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tdewolff/test"
	"go.uber.org/multierr"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "ooldml.yaml")
	yaml := `dest_dir: out
cldr_version: "1.4"
date_time: true
res_refs: true
workers: 8
`
	test.Error(t, os.WriteFile(filename, []byte(yaml), 0o644))

	cfg, err := LoadConfig(filename)
	test.Error(t, err)
	test.T(t, cfg, Config{
		DestDir:     "out",
		CLDRVersion: "1.4",
		DateTime:    true,
		ResolveRefs: true,
		Workers:     8,
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "empty.yaml")
	test.Error(t, os.WriteFile(filename, []byte("\n"), 0o644))

	cfg, err := LoadConfig(filename)
	test.Error(t, err)
	test.T(t, cfg, DefaultConfig())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err != nil)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []string{
		"workers: [",
		"workers: 0",
		"cldr_version: x",
		"dest_dir: ''",
		"dtd_dir: /does/not/exist",
	}
	for _, yaml := range tests {
		t.Run(yaml, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "ooldml.yaml")
			test.Error(t, os.WriteFile(filename, []byte(yaml), 0o644))
			_, err := LoadConfig(filename)
			test.That(t, err != nil)
		})
	}
}

func TestCLDRVersionNumber(t *testing.T) {
	tests := []struct {
		version string
		n       int
	}{
		{"1.3", 103},
		{"1.4", 104},
		{"1.10", 110},
		{"2", 200},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			n, err := Config{CLDRVersion: tt.version}.CLDRVersionNumber()
			test.Error(t, err)
			test.T(t, n, tt.n)
		})
	}

	_, err := Config{CLDRVersion: "1.x"}.CLDRVersionNumber()
	test.That(t, err != nil)
}

func TestValidate(t *testing.T) {
	cfg := Config{CLDRVersion: "x", Workers: 0}
	test.T(t, len(multierr.Errors(cfg.Validate())), 3)
	test.Error(t, DefaultConfig().Validate())
}
