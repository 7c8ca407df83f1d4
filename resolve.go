package ooldml

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoLocale  = errors.New("ooldml: document has no locale information")
	ErrRefCycle  = errors.New("ooldml: reference cycle")
	ErrBadRef    = errors.New("ooldml: bad reference")
	ErrNoSection = errors.New("ooldml: referenced section not found")
)

// LookupFunc returns the parsed document of a locale, eg. from <dir>/<locale>.xml.
type LookupFunc func(locale string) (*OOLocale, error)

// Sections that may be taken from another locale with ref="xx_YY".
const (
	SectionCType      = "LC_CTYPE"
	SectionFormat     = "LC_FORMAT"
	SectionCalendar   = "LC_CALENDAR"
	SectionCurrency   = "LC_CURRENCY"
	SectionMisc       = "LC_MISC"
	SectionForbidden  = "LC_FORBIDDEN_CHARACTERS"
	CalendarDays      = "DaysOfWeek"
	CalendarMonths    = "MonthsOfYear"
	CalendarEras      = "Eras"
	calendarRefSuffix = "_"
)

// ResolveRefs replaces every mapped section that refers to another locale by the contents of that section, following references transitively. Sections that cannot be resolved are left in Refs and the first error is returned.
func ResolveRefs(loc *OOLocale, lookup LookupFunc) error {
	r := resolver{lookup: lookup}
	var first error
	for _, section := range sortedKeys(loc.Refs) {
		if err := r.section(loc, section, nil); err != nil && first == nil {
			first = err
		}
	}
	for i := range loc.Calendars {
		for _, part := range sortedKeys(loc.Calendars[i].Refs) {
			if err := r.calendar(loc, &loc.Calendars[i], part, nil); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// resolvable are the sections that are mapped onto LDML or openOffice specials.
var resolvable = map[string]bool{
	SectionCType:     true,
	SectionFormat:    true,
	SectionCalendar:  true,
	SectionCurrency:  true,
	SectionMisc:      true,
	SectionForbidden: true,
}

type resolver struct {
	lookup LookupFunc
}

func (r resolver) section(loc *OOLocale, section string, path []string) error {
	ref, ok := loc.Refs[section]
	if !ok || !resolvable[section] {
		return nil
	}
	key := loc.ID() + "/" + section
	for _, p := range path {
		if p == key {
			return fmt.Errorf("%w: %s", ErrRefCycle, strings.Join(append(path, key), " -> "))
		}
	}
	path = append(path, key)

	src, err := r.lookup(ref)
	if err != nil {
		return fmt.Errorf("ooldml: %s of %s: %w", section, loc.ID(), err)
	}
	if err := r.section(src, section, path); err != nil {
		return err
	}
	if section == SectionCalendar {
		for i := range src.Calendars {
			for _, part := range sortedKeys(src.Calendars[i].Refs) {
				if err := r.calendar(src, &src.Calendars[i], part, path); err != nil {
					return err
				}
			}
		}
	}

	switch section {
	case SectionCType:
		loc.Separators = src.Separators
		loc.Markers = src.Markers
		loc.TimeAM, loc.TimePM = src.TimeAM, src.TimePM
		loc.MeasurementSystem = src.MeasurementSystem
	case SectionFormat:
		// replaceFrom and replaceTo belong to the referring locale
		loc.FormatElements = append([]FormatElement{}, src.FormatElements...)
	case SectionCalendar:
		loc.Calendars = append([]Calendar{}, src.Calendars...)
	case SectionCurrency:
		loc.Currencies = append([]Currency{}, src.Currencies...)
	case SectionMisc:
		loc.ReservedWords = src.ReservedWords
	case SectionForbidden:
		loc.ForbiddenChars = src.ForbiddenChars
	}
	delete(loc.Refs, section)
	return nil
}

func (r resolver) calendar(loc *OOLocale, cal *Calendar, part string, path []string) error {
	ref, ok := cal.Refs[part]
	if !ok {
		return nil
	}
	locale, calID, err := SplitCalendarRef(ref)
	if err != nil {
		return err
	}
	key := loc.ID() + "/" + cal.ID + "/" + part
	for _, p := range path {
		if p == key {
			return fmt.Errorf("%w: %s", ErrRefCycle, strings.Join(append(path, key), " -> "))
		}
	}
	path = append(path, key)

	src, err := r.lookup(locale)
	if err != nil {
		return fmt.Errorf("ooldml: %s of %s: %w", part, loc.ID(), err)
	}
	if err := r.section(src, SectionCalendar, path); err != nil {
		return err
	}
	var srcCal *Calendar
	for i := range src.Calendars {
		if src.Calendars[i].ID == calID {
			srcCal = &src.Calendars[i]
			break
		}
	}
	if srcCal == nil {
		return fmt.Errorf("%w: calendar %s in %s", ErrNoSection, calID, locale)
	}
	if err := r.calendar(src, srcCal, part, path); err != nil {
		return err
	}

	switch part {
	case CalendarDays:
		cal.Days = append([]CalendarName{}, srcCal.Days...)
	case CalendarMonths:
		cal.Months = append([]CalendarName{}, srcCal.Months...)
	case CalendarEras:
		cal.Eras = append([]CalendarName{}, srcCal.Eras...)
	}
	delete(cal.Refs, part)
	return nil
}

// SplitCalendarRef splits a calendar reference such as en_US_gregorian into its locale and calendar.
func SplitCalendarRef(ref string) (string, string, error) {
	i := strings.LastIndex(ref, calendarRefSuffix)
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	return ref[:i], ref[i+1:], nil
}
