package ooldml

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

// OOLocale is the in-memory form of an OpenOffice.org locale data document (i18npool locale XML).
type OOLocale struct {
	VersionDTD string
	Version    string

	LangID      string
	LangName    string
	CountryID   string
	CountryName string
	Variant     string
	PlatformID  string

	Separators        map[string]string // element name to value, eg. DateSeparator
	Markers           map[string]string
	TimeAM            string
	TimePM            string
	MeasurementSystem string

	ReplaceFrom    string
	ReplaceTo      string
	FormatElements []FormatElement

	Calendars      []Calendar
	Currencies     []Currency
	ReservedWords  map[string]string // eg. trueWord, quarter1Abbreviation
	ForbiddenChars map[string]string // ForbiddenLineBeginCharacters and ForbiddenLineEndCharacters

	// Refs maps a section such as LC_FORMAT to the locale it is taken from.
	Refs map[string]string
}

type FormatElement struct {
	MsgID       string
	Default     bool
	Type        string // short, medium or long
	Usage       string // DATE, TIME, DATE_TIME, FIXED_NUMBER, ...
	FormatIndex int
	Code        string
	DefaultName string
}

type CalendarName struct {
	ID          string
	Abbreviated string
	Wide        string
}

type Calendar struct {
	ID      string // unoid
	Default bool

	Days                   []CalendarName
	Months                 []CalendarName
	Eras                   []CalendarName
	StartDayOfWeek         string
	MinimalDaysInFirstWeek int

	// Refs maps DaysOfWeek, MonthsOfYear or Eras to the locale and calendar they are taken from, eg. en_US_gregorian.
	Refs map[string]string
}

type Currency struct {
	ID                          string
	Symbol                      string
	BankSymbol                  string
	Name                        string
	DecimalPlaces               int
	Default                     bool
	UsedInCompatibleFormatCodes bool
	LegacyOnly                  bool
}

func NewOOLocale() *OOLocale {
	return &OOLocale{
		Separators:     map[string]string{},
		Markers:        map[string]string{},
		ReservedWords:  map[string]string{},
		ForbiddenChars: map[string]string{},
		Refs:           map[string]string{},
	}
}

// ID returns the locale identifier as used in file names, eg. de_DE.
func (loc *OOLocale) ID() string {
	id := loc.LangID
	if loc.CountryID != "" {
		id += "_" + loc.CountryID
	}
	if loc.Variant != "" {
		id += "_" + loc.Variant
	}
	return id
}

// DefaultCurrency returns the currency marked as default, or the first one.
func (loc *OOLocale) DefaultCurrency() (Currency, bool) {
	for _, cur := range loc.Currencies {
		if cur.Default {
			return cur, true
		}
	}
	if 0 < len(loc.Currencies) {
		return loc.Currencies[0], true
	}
	return Currency{}, false
}

// DefaultCalendar returns the calendar marked as default, or the first one.
func (loc *OOLocale) DefaultCalendar() (Calendar, bool) {
	for _, cal := range loc.Calendars {
		if cal.Default {
			return cal, true
		}
	}
	if 0 < len(loc.Calendars) {
		return loc.Calendars[0], true
	}
	return Calendar{}, false
}

func ReadOOLocaleFile(filename string) (*OOLocale, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	loc, err := ReadOOLocale(f)
	if err != nil {
		return nil, fmt.Errorf("ooldml: %v: %w", filename, err)
	}
	return loc, nil
}

func ReadOOLocale(r io.Reader) (*OOLocale, error) {
	loc := NewOOLocale()
	var calendar *Calendar
	var names *[]CalendarName
	start := func(tags []string, attrs []map[string]string) {
		switch {
		case isTag(tags, attrs, "Locale"):
			loc.VersionDTD = attr(attrs, 0, "versionDTD")
			loc.Version = attr(attrs, 0, "version")
		case len(tags) == 2 && strings.HasPrefix(tags[1], "LC_"):
			if ref := attr(attrs, 0, "ref"); ref != "" {
				loc.Refs[tags[1]] = ref
			}
			if tags[1] == "LC_FORMAT" {
				loc.ReplaceFrom = attr(attrs, 0, "replaceFrom")
				loc.ReplaceTo = attr(attrs, 0, "replaceTo")
			}
		case isTag(tags, attrs, "Locale/LC_FORMAT/FormatElement"):
			index, _ := parseInt(attr(attrs, 0, "formatindex"))
			loc.FormatElements = append(loc.FormatElements, FormatElement{
				MsgID:       attr(attrs, 0, "msgid"),
				Default:     attr(attrs, 0, "default") == "true",
				Type:        attr(attrs, 0, "type"),
				Usage:       attr(attrs, 0, "usage"),
				FormatIndex: index,
			})
		case isTag(tags, attrs, "Locale/LC_CALENDAR/Calendar"):
			loc.Calendars = append(loc.Calendars, Calendar{
				ID:      attr(attrs, 0, "unoid"),
				Default: attr(attrs, 0, "default") == "true",
				Refs:    map[string]string{},
			})
			calendar = &loc.Calendars[len(loc.Calendars)-1]
		case calendar != nil && isTag(tags, attrs, "Locale/LC_CALENDAR/Calendar/*"):
			if len(tags) == 4 {
				if ref := attr(attrs, 0, "ref"); ref != "" {
					calendar.Refs[tags[3]] = ref
				}
				switch tags[3] {
				case "DaysOfWeek":
					names = &calendar.Days
				case "MonthsOfYear":
					names = &calendar.Months
				case "Eras":
					names = &calendar.Eras
				default:
					names = nil
				}
			} else if len(tags) == 5 && names != nil {
				*names = append(*names, CalendarName{})
			}
		case isTag(tags, attrs, "Locale/LC_CURRENCY/Currency"):
			loc.Currencies = append(loc.Currencies, Currency{
				Default:                     attr(attrs, 0, "default") == "true",
				UsedInCompatibleFormatCodes: attr(attrs, 0, "usedInCompatibleFormatCodes") == "true",
				LegacyOnly:                  attr(attrs, 0, "legacyOnly") == "true",
			})
		}
	}

	leaf := func(tags []string, attrs []map[string]string, content string) {
		name := leafName(tags)
		switch {
		case isTag(tags, attrs, "Locale/LC_INFO/Language/LangID"):
			loc.LangID = content
		case isTag(tags, attrs, "Locale/LC_INFO/Language/DefaultName"):
			loc.LangName = content
		case isTag(tags, attrs, "Locale/LC_INFO/Country/CountryID"):
			loc.CountryID = content
		case isTag(tags, attrs, "Locale/LC_INFO/Country/DefaultName"):
			loc.CountryName = content
		case isTag(tags, attrs, "Locale/LC_INFO/Variant"):
			loc.Variant = content
		case isTag(tags, attrs, "Locale/LC_INFO/Platform/PlatformID"), isTag(tags, attrs, "Locale/LC_INFO/PlatformID"):
			loc.PlatformID = content

		case isTag(tags, attrs, "Locale/LC_CTYPE/Separators/*"):
			loc.Separators[name] = content
		case isTag(tags, attrs, "Locale/LC_CTYPE/Markers/*"):
			loc.Markers[name] = content
		case isTag(tags, attrs, "Locale/LC_CTYPE/TimeAM"):
			loc.TimeAM = content
		case isTag(tags, attrs, "Locale/LC_CTYPE/TimePM"):
			loc.TimePM = content
		case isTag(tags, attrs, "Locale/LC_CTYPE/MeasurementSystem"):
			loc.MeasurementSystem = content

		case isTag(tags, attrs, "Locale/LC_FORMAT/FormatElement/*"):
			if len(loc.FormatElements) == 0 {
				return
			}
			elem := &loc.FormatElements[len(loc.FormatElements)-1]
			if name == "FormatCode" {
				elem.Code = content
			} else if name == "DefaultName" {
				elem.DefaultName = content
			}

		case calendar != nil && isTag(tags, attrs, "Locale/LC_CALENDAR/Calendar/StartDayOfWeek/DayID"):
			calendar.StartDayOfWeek = content
		case calendar != nil && isTag(tags, attrs, "Locale/LC_CALENDAR/Calendar/MinimalDaysInFirstWeek"):
			calendar.MinimalDaysInFirstWeek, _ = parseInt(content)
		case calendar != nil && names != nil && len(tags) == 6 && isTag(tags, attrs, "Locale/LC_CALENDAR/Calendar/*"):
			if len(*names) == 0 {
				return
			}
			cn := &(*names)[len(*names)-1]
			switch name {
			case "DayID", "MonthID", "EraID":
				cn.ID = content
			case "DefaultAbbrvName":
				cn.Abbreviated = content
			case "DefaultFullName":
				cn.Wide = content
			}

		case isTag(tags, attrs, "Locale/LC_CURRENCY/Currency/*"):
			if len(loc.Currencies) == 0 {
				return
			}
			cur := &loc.Currencies[len(loc.Currencies)-1]
			switch name {
			case "CurrencyID":
				cur.ID = content
			case "CurrencySymbol":
				cur.Symbol = content
			case "BankSymbol":
				cur.BankSymbol = content
			case "CurrencyName":
				cur.Name = content
			case "DecimalPlaces":
				cur.DecimalPlaces, _ = parseInt(content)
			}

		case isTag(tags, attrs, "Locale/LC_MISC/ReservedWords/*"):
			loc.ReservedWords[name] = content
		case isTag(tags, attrs, "Locale/LC_FORBIDDEN_CHARACTERS/*"):
			loc.ForbiddenChars[name] = content
		}
	}

	if err := readXMLElements(r, start, leaf); err != nil {
		return nil, err
	}
	if loc.LangID == "" && len(loc.Refs) == 0 {
		return nil, ErrNoLocale
	}
	return loc, nil
}

func parseInt(s string) (int, bool) {
	b := []byte(strings.TrimSpace(s))
	i, n := strconv.ParseInt(b)
	if n == 0 || n != len(b) {
		return 0, false
	}
	return int(i), true
}
