package ooldml

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// LocaleID is a locale identifier in the underscore form used by file names, eg. de_DE or ca_ES_valencia.
type LocaleID struct {
	Language  string
	Territory string
	Variant   string
	Tag       language.Tag
}

func (id LocaleID) String() string {
	s := id.Language
	if id.Territory != "" {
		s += "_" + id.Territory
	}
	if id.Variant != "" {
		s += "_" + id.Variant
	}
	return s
}

// ParseLocaleID parses ll, ll_CC or ll_CC_variant and validates the language subtag.
func ParseLocaleID(s string) (LocaleID, error) {
	parts := strings.SplitN(s, "_", 3)
	id := LocaleID{Language: parts[0]}
	if 1 < len(parts) {
		id.Territory = parts[1]
	}
	if 2 < len(parts) {
		id.Variant = parts[2]
	}

	base, err := language.ParseBase(id.Language)
	if err != nil {
		return LocaleID{}, fmt.Errorf("ooldml: locale %q: %w", s, err)
	}
	conf := []interface{}{base}
	if id.Territory != "" {
		if region, err := language.ParseRegion(id.Territory); err == nil {
			conf = append(conf, region)
		}
	}
	if id.Tag, err = language.Compose(conf...); err != nil {
		id.Tag = language.Make(id.Language)
	}
	return id, nil
}

// LocaleFromFilename returns the locale of a source document, eg. de_DE for /data/de_DE.xml.
func LocaleFromFilename(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func toLocaleName(tag language.Tag) string {
	if tag == language.Und || tag.IsRoot() {
		return "root"
	}
	return strings.ReplaceAll(tag.String(), "-", "_")
}

// auxCalendars lists the calendars besides gregorian that a locale is expected to define.
var auxCalendars = map[string][]string{
	"ja_JP": {"gengou"},
	"zh_TW": {"ROC"},
	"ko_KR": {"hanja"},
	"th_TH": {"buddhist"},
	"he_IL": {"jewish"},
	"ar":    {"hijri"},
	"root":  {},
}

// ExpectedCalendars returns the auxiliary calendars of a locale, falling back to its parents.
func ExpectedCalendars(id LocaleID) []string {
	loc := id.Language
	if id.Territory != "" {
		loc += "_" + id.Territory
	}
	tag := id.Tag
	cals, ok := auxCalendars[loc]
	for !ok && loc != "root" {
		tag = tag.Parent()
		loc = toLocaleName(tag)
		cals, ok = auxCalendars[loc]
	}
	return cals
}

// ldmlCalendars maps calendar unoids onto LDML calendar types.
var ldmlCalendars = map[string]string{
	"gregorian": "gregorian",
	"gengou":    "japanese",
	"ROC":       "roc",
	"buddhist":  "buddhist",
	"jewish":    "hebrew",
	"hijri":     "islamic",
	"hanja":     "dangi",
}

// CalendarType returns the LDML calendar type of a calendar unoid.
func CalendarType(unoid string) (string, bool) {
	typ, ok := ldmlCalendars[unoid]
	return typ, ok
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
