package ooldml

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stats counts the outcome of a bulk conversion.
type Stats struct {
	Converted int
	Failed    int
	Warnings  int // pattern warnings over all converted documents
}

// Converter converts OpenOffice.org locale documents into LDML files in the destination directory.
type Converter struct {
	cfg    Config
	mapper *Mapper
	log    *zap.Logger
}

func NewConverter(cfg Config, log *zap.Logger) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	var supplemental *Supplemental
	if cfg.Supplemental != "" {
		var err error
		if supplemental, err = ReadSupplemental(cfg.Supplemental); err != nil {
			return nil, fmt.Errorf("ooldml: supplemental data: %w", err)
		}
		log.Debug("read supplemental data", zap.String("dir", cfg.Supplemental), zap.Int("currencies", len(supplemental.CurrencyDigits)))
	}

	mapper, err := NewMapper(MapOptions{
		ConvertDateTime: cfg.DateTime,
		CLDROnly:        cfg.CLDROnly,
		CLDRVersion:     cfg.CLDRVersion,
		Supplemental:    supplemental,
		Logger:          log,
	})
	if err != nil {
		return nil, err
	}
	return &Converter{
		cfg:    cfg,
		mapper: mapper,
		log:    log,
	}, nil
}

// ConvertFile converts a single document and returns the path of the written LDML file. Pattern warnings are logged and do not fail the conversion.
func (c *Converter) ConvertFile(ctx context.Context, filename string) (string, error) {
	dst, _, err := c.convertFile(ctx, filename)
	return dst, err
}

func (c *Converter) convertFile(ctx context.Context, filename string) (dst string, warnings int, err error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	locale := LocaleFromFilename(filename)
	log := c.log.With(zap.String("file", filename))

	loc, err := ReadOOLocaleFile(filename)
	if err != nil {
		return "", 0, err
	}
	if c.cfg.ResolveRefs && 0 < len(loc.Refs) {
		if err := ResolveRefs(loc, dirLookup(filepath.Dir(filename))); err != nil {
			log.Warn("unresolved references are written as aliases", zap.Error(err))
		}
	}

	doc, patternWarnings := c.mapper.Map(loc)
	warnings = len(multierr.Errors(patternWarnings))

	opts := WriteOptions{
		DTDDir:      c.cfg.DTDDir,
		CLDRVersion: c.cfg.CLDRVersion,
	}
	dst, err = writeFile(c.cfg.DestDir, locale, func(w io.Writer) error {
		return WriteLDML(w, doc, opts)
	})
	if err != nil {
		return "", warnings, err
	}
	log.Info("converted", zap.String("locale", locale), zap.String("dst", dst), zap.Int("warnings", warnings))
	return dst, warnings, nil
}

// writeFile creates <dir>/<locale>.xml and fills it with write. A partially written file is removed.
func writeFile(dir, locale string, write func(io.Writer) error) (string, error) {
	f, err := CreateLDMLFile(dir, locale)
	if err != nil {
		return "", err
	}
	dst := f.Name()
	err = write(f)
	err = multierr.Append(err, f.Close())
	if err != nil {
		if errRemove := os.Remove(dst); errRemove != nil {
			err = multierr.Append(err, errRemove)
		}
		return "", fmt.Errorf("ooldml: %v: %w", dst, err)
	}
	return dst, nil
}

// dirLookup reads referenced locales from dir, each at most once.
func dirLookup(dir string) LookupFunc {
	cache := map[string]*OOLocale{}
	return func(locale string) (*OOLocale, error) {
		if loc, ok := cache[locale]; ok {
			return loc, nil
		}
		loc, err := ReadOOLocaleFile(filepath.Join(dir, locale+".xml"))
		if err != nil {
			return nil, err
		}
		cache[locale] = loc
		return loc, nil
	}
}

// ConvertDir converts every XML document in dir with at most Workers documents at a time. A failing document does not stop the others; all failures are returned combined. Cancelling ctx stops converting further documents.
func (c *Converter) ConvertDir(ctx context.Context, dir string) (Stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Stats{}, err
	}

	var mu sync.Mutex
	var stats Stats
	var errs error

	eg := errgroup.Group{}
	eg.SetLimit(c.cfg.Workers)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xml") {
			continue
		} else if ctx.Err() != nil {
			break
		}

		filename := filepath.Join(dir, entry.Name())
		eg.Go(func() error {
			_, warnings, err := c.convertFile(ctx, filename)
			if err != nil && err == ctx.Err() {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.log.Error("conversion failed", zap.String("file", filename), zap.Error(err))
				stats.Failed++
				errs = multierr.Append(errs, err)
				return nil
			}
			stats.Converted++
			stats.Warnings += warnings
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}
	c.log.Info("bulk conversion done",
		zap.String("dir", dir),
		zap.Int("converted", stats.Converted),
		zap.Int("failed", stats.Failed),
		zap.Int("warnings", stats.Warnings))
	return stats, errs
}
