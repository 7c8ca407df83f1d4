package ooldml

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tdewolff/test"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeLocales(t *testing.T, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, doc := range docs {
		test.Error(t, os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644))
	}
	return dir
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.DestDir = filepath.Join(t.TempDir(), "main")
	cfg.DateTime = true
	return cfg
}

func TestConvertFile(t *testing.T) {
	src := writeLocales(t, map[string]string{"de_DE.xml": deDE})
	cfg := testConfig(t)

	core, logs := observer.New(zapcore.InfoLevel)
	c, err := NewConverter(cfg, zap.New(core))
	test.Error(t, err)

	dst, err := c.ConvertFile(context.Background(), filepath.Join(src, "de_DE.xml"))
	test.Error(t, err)
	test.T(t, dst, filepath.Join(cfg.DestDir, "de_DE.xml"))

	b, err := os.ReadFile(dst)
	test.Error(t, err)
	out := string(b)
	test.That(t, strings.Contains(out, `<pattern>dd.MM.yy</pattern>`), out)
	test.That(t, strings.Contains(out, `<pattern>EEEE, d. MMMM yyyy</pattern>`), out)
	test.That(t, strings.Contains(out, `<openOffice:formatCode>TT.MM.JJ</openOffice:formatCode>`), out)
	test.That(t, strings.Contains(out, `xmlns:openOffice="http://www.openoffice.org"`), out)

	test.T(t, logs.FilterMessage("converted").Len(), 1)
}

func TestConvertFileRefs(t *testing.T) {
	src := writeLocales(t, map[string]string{"de_DE.xml": deDE, "de_AT.xml": deAT})

	cfg := testConfig(t)
	c, err := NewConverter(cfg, nil)
	test.Error(t, err)
	dst, err := c.ConvertFile(context.Background(), filepath.Join(src, "de_AT.xml"))
	test.Error(t, err)
	b, err := os.ReadFile(dst)
	test.Error(t, err)
	test.That(t, strings.Contains(string(b), `<alias source="de_DE"></alias>`), "references are written as aliases")

	cfg.ResolveRefs = true
	c, err = NewConverter(cfg, nil)
	test.Error(t, err)
	dst, err = c.ConvertFile(context.Background(), filepath.Join(src, "de_AT.xml"))
	test.Error(t, err)
	b, err = os.ReadFile(dst)
	test.Error(t, err)
	out := string(b)
	test.That(t, !strings.Contains(out, "<alias"), out)
	test.That(t, strings.Contains(out, `<pattern>dd.MM.yy</pattern>`), out)
	test.That(t, strings.Contains(out, `#.##0 [$€-C07]`), out)
	test.That(t, strings.Contains(out, `<month type="1">Jänner</month>`), out)
}

func TestConvertFileUnresolvedRefs(t *testing.T) {
	src := writeLocales(t, map[string]string{"de_AT.xml": deAT})
	cfg := testConfig(t)
	cfg.ResolveRefs = true

	core, logs := observer.New(zapcore.WarnLevel)
	c, err := NewConverter(cfg, zap.New(core))
	test.Error(t, err)
	dst, err := c.ConvertFile(context.Background(), filepath.Join(src, "de_AT.xml"))
	test.Error(t, err)
	test.T(t, logs.FilterMessage("unresolved references are written as aliases").Len(), 1)

	b, err := os.ReadFile(dst)
	test.Error(t, err)
	test.That(t, strings.Contains(string(b), `<alias source="de_DE"></alias>`))
}

func TestConvertFileErrors(t *testing.T) {
	src := writeLocales(t, map[string]string{"xx_XX.xml": "<Locale><LC_INFO>"})
	c, err := NewConverter(testConfig(t), nil)
	test.Error(t, err)

	_, err = c.ConvertFile(context.Background(), filepath.Join(src, "xx_XX.xml"))
	test.That(t, err != nil)
	_, err = c.ConvertFile(context.Background(), filepath.Join(src, "yy_YY.xml"))
	test.That(t, errors.Is(err, os.ErrNotExist))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.ConvertFile(ctx, filepath.Join(src, "xx_XX.xml"))
	test.That(t, errors.Is(err, context.Canceled))
}

func TestConvertDir(t *testing.T) {
	src := writeLocales(t, map[string]string{
		"de_DE.xml":  deDE,
		"de_AT.xml":  deAT,
		"xx_XX.xml":  "<Locale><LC_INFO>",
		"README.txt": "not a locale",
	})
	cfg := testConfig(t)
	cfg.ResolveRefs = true
	cfg.Workers = 2

	core, logs := observer.New(zapcore.InfoLevel)
	c, err := NewConverter(cfg, zap.New(core))
	test.Error(t, err)

	stats, err := c.ConvertDir(context.Background(), src)
	test.T(t, stats.Converted, 2)
	test.T(t, stats.Failed, 1)
	test.T(t, stats.Warnings, 0)
	test.T(t, len(multierr.Errors(err)), 1)

	entries, err := os.ReadDir(cfg.DestDir)
	test.Error(t, err)
	test.T(t, len(entries), 2)

	test.T(t, logs.FilterMessage("conversion failed").Len(), 1)
	done := logs.FilterMessage("bulk conversion done").All()
	test.T(t, len(done), 1)
	test.T(t, done[0].ContextMap()["converted"], int64(2))
}

func TestConvertDirCancelled(t *testing.T) {
	src := writeLocales(t, map[string]string{"de_DE.xml": deDE})
	c, err := NewConverter(testConfig(t), nil)
	test.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := c.ConvertDir(ctx, src)
	test.That(t, errors.Is(err, context.Canceled))
	test.T(t, stats, Stats{})
}

func TestNewConverter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workers = 0
	_, err := NewConverter(cfg, nil)
	test.That(t, err != nil)

	cfg = testConfig(t)
	cfg.Supplemental = t.TempDir()
	_, err = NewConverter(cfg, nil)
	test.That(t, err != nil, "supplementalData.xml is missing")

	test.Error(t, os.WriteFile(filepath.Join(cfg.Supplemental, "supplementalData.xml"), []byte(supplementalData), 0o644))
	_, err = NewConverter(cfg, nil)
	test.Error(t, err)
}

func TestWriteFileRemovesPartial(t *testing.T) {
	dir := t.TempDir()
	errWrite := errors.New("disk full")
	_, err := writeFile(dir, "de_DE", func(w io.Writer) error {
		if _, err := io.WriteString(w, "<?xml"); err != nil {
			return err
		}
		return errWrite
	})
	test.That(t, errors.Is(err, errWrite))
	_, err = os.Stat(filepath.Join(dir, "de_DE.xml"))
	test.That(t, errors.Is(err, os.ErrNotExist), "partial file is removed")

	dst, err := writeFile(dir, "de_DE", func(w io.Writer) error {
		_, err := io.WriteString(w, "<ldml/>")
		return err
	})
	test.Error(t, err)
	test.T(t, dst, filepath.Join(dir, "de_DE.xml"))
}
