package ooldml

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Supplemental holds the territory and currency tables of the CLDR supplemental data.
type Supplemental struct {
	CurrencyDigits map[string]int    // ISO 4217 code to fraction digits, with DEFAULT
	FirstDay       map[string]string // territory to day, with 001 as world
	MinDays        map[string]int
	Measurement    map[string]string // territory to metric, US or UK
	TerritoryAlias map[string]string // deprecated territory to replacement
}

func NewSupplemental() *Supplemental {
	return &Supplemental{
		CurrencyDigits: map[string]int{},
		FirstDay:       map[string]string{},
		MinDays:        map[string]int{},
		Measurement:    map[string]string{},
		TerritoryAlias: map[string]string{},
	}
}

// ReadSupplemental reads supplementalData.xml and, if present, supplementalMetadata.xml from dir.
func ReadSupplemental(dir string) (*Supplemental, error) {
	s := NewSupplemental()
	for _, name := range []string{"supplementalData.xml", "supplementalMetadata.xml"} {
		f, err := os.Open(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) && name != "supplementalData.xml" {
			continue
		} else if err != nil {
			return nil, err
		}
		err = s.Read(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("ooldml: %v: %w", name, err)
		}
	}
	return s, nil
}

// Read adds the tables found in a supplemental document.
func (s *Supplemental) Read(r io.Reader) error {
	return readXMLLeafs(r, func(tags []string, attrs []map[string]string, content string) {
		if isTag(tags, attrs, "supplementalData/currencyData/fractions/info[iso4217][digits]") {
			if digits, ok := parseInt(attr(attrs, 0, "digits")); ok {
				s.CurrencyDigits[attr(attrs, 0, "iso4217")] = digits
			}
		} else if isTag(tags, attrs, "supplementalData/weekData/firstDay[day][territories]") {
			if attr(attrs, 0, "alt") != "" {
				return
			}
			for _, territory := range strings.Fields(attr(attrs, 0, "territories")) {
				s.FirstDay[territory] = attr(attrs, 0, "day")
			}
		} else if isTag(tags, attrs, "supplementalData/weekData/minDays[count][territories]") {
			count, ok := parseInt(attr(attrs, 0, "count"))
			if !ok {
				return
			}
			for _, territory := range strings.Fields(attr(attrs, 0, "territories")) {
				s.MinDays[territory] = count
			}
		} else if isTag(tags, attrs, "supplementalData/measurementData/measurementSystem[type][territories]") {
			if attr(attrs, 0, "alt") != "" {
				return
			}
			for _, territory := range strings.Fields(attr(attrs, 0, "territories")) {
				s.Measurement[territory] = attr(attrs, 0, "type")
			}
		} else if isTag(tags, attrs, "supplementalData/metadata/alias/territoryAlias[type][replacement]") {
			// replacements may list several territories, the first is the most likely one
			replacement := strings.Fields(attr(attrs, 0, "replacement"))
			if 0 < len(replacement) {
				s.TerritoryAlias[attr(attrs, 0, "type")] = replacement[0]
			}
		}
	})
}

// Digits returns the fraction digits of a currency, falling back to DEFAULT.
func (s *Supplemental) Digits(currency string) int {
	d, ok := s.CurrencyDigits[currency]
	if !ok {
		if d, ok = s.CurrencyDigits["DEFAULT"]; !ok {
			d = 2
		}
	}
	return d
}

// WeekData returns the first day of the week and the minimal days in the first week of a territory, falling back to the world.
func (s *Supplemental) WeekData(territory string) (string, int) {
	firstDay, ok := s.FirstDay[territory]
	if !ok {
		firstDay = s.FirstDay["001"]
	}
	minDays, ok := s.MinDays[territory]
	if !ok {
		minDays = s.MinDays["001"]
	}
	return firstDay, minDays
}

// MeasurementSystem returns the measurement system of a territory, metric unless listed otherwise.
func (s *Supplemental) MeasurementSystem(territory string) string {
	if sys, ok := s.Measurement[territory]; ok {
		return sys
	}
	return "metric"
}

// Territory returns the replacement of a deprecated territory code, or the code itself.
func (s *Supplemental) Territory(territory string) string {
	if replacement, ok := s.TerritoryAlias[territory]; ok {
		return replacement
	}
	return territory
}
