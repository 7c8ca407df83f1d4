package ooldml

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/multierr"
)

// SampleTime has a distinct value for every field, 2006-01-02 15:04:05.123 is a Monday afternoon.
var SampleTime = time.Date(2006, time.January, 2, 15, 4, 5, 123000000, time.UTC)

var dayIDs = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

var quarterNames = [4]string{"1st quarter", "2nd quarter", "3rd quarter", "4th quarter"}

func quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// SampleFormatter formats a time with an LDML pattern using the names of a mapped calendar, eg. fmt.Sprint(SampleFormatter{SampleTime, "EEEE, d. MMMM yyyy", cal}). Names missing from the calendar are taken from the time package.
type SampleFormatter struct {
	time.Time
	Pattern  string
	Calendar *LDMLCalendar
}

func (f SampleFormatter) Format(state fmt.State, verb rune) {
	b, _ := formatPattern([]byte{}, f.Pattern, newSampleNames(f.Calendar), f.Time)
	state.Write(b)
}

// Sample formats t with pattern and returns an error listing the symbols that could not be formatted.
func Sample(pattern string, cal *LDMLCalendar, t time.Time) (string, error) {
	b, err := formatPattern([]byte{}, pattern, newSampleNames(cal), t)
	return string(b), err
}

type sampleNames struct {
	months, monthsAbbr map[string]string // by type 1-12
	days, daysAbbr     map[string]string // by sun-sat
	eras, erasAbbr     map[string]string // by type 0-1
	quarters           map[string]string // by type 1-4
	quartersAbbr       map[string]string
	am, pm             string
}

func newSampleNames(cal *LDMLCalendar) sampleNames {
	names := sampleNames{
		months: map[string]string{}, monthsAbbr: map[string]string{},
		days: map[string]string{}, daysAbbr: map[string]string{},
		eras: map[string]string{}, erasAbbr: map[string]string{},
		quarters: map[string]string{}, quartersAbbr: map[string]string{},
	}
	if cal == nil {
		return names
	}
	widths := func(ctx *NameContext, wide, abbr map[string]string) {
		if ctx == nil {
			return
		}
		for _, width := range ctx.Widths {
			dst := abbr
			if width.Type == "wide" {
				dst = wide
			}
			for _, name := range width.Names {
				dst[name.Type] = name.Value
			}
		}
	}
	if cal.Months != nil {
		widths(cal.Months.Context, names.months, names.monthsAbbr)
	}
	if cal.Days != nil {
		widths(cal.Days.Context, names.days, names.daysAbbr)
	}
	if cal.Quarters != nil {
		widths(cal.Quarters.Context, names.quarters, names.quartersAbbr)
	}
	if cal.Eras != nil {
		for _, era := range cal.Eras.Names {
			names.eras[era.Type] = era.Value
		}
		for _, era := range cal.Eras.Abbr {
			names.erasAbbr[era.Type] = era.Value
		}
	}
	names.am, names.pm = cal.AM, cal.PM
	return names
}

func lookupName(names map[string]string, key, fallback string) string {
	if name, ok := names[key]; ok && name != "" {
		return name
	}
	return fallback
}

func formatPattern(b []byte, pattern string, names sampleNames, t time.Time) ([]byte, error) {
	var err error
	for i := 0; i < len(pattern); {
		r, n := utf8.DecodeRuneInString(pattern[i:])
		if r == '\'' {
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				b = append(b, '\'')
				i += 2
				continue
			}
			j := i + 1
			for j < len(pattern) {
				if pattern[j] == '\'' {
					if j+1 < len(pattern) && pattern[j+1] == '\'' {
						b = append(b, '\'')
						j += 2
						continue
					}
					break
				}
				b = append(b, pattern[j])
				j++
			}
			i = j + 1
			continue
		} else if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z') {
			b = utf8.AppendRune(b, r)
			i += n
			continue
		}

		m := 1
		for i+m < len(pattern) && pattern[i+m] == pattern[i] {
			m++
		}
		var ok bool
		if b, ok = formatSymbol(b, pattern[i:i+m], names, t); !ok {
			err = multierr.Append(err, fmt.Errorf("ooldml: unsupported symbol %q in %q", pattern[i:i+m], pattern))
		}
		i += m
	}
	return b, err
}

func formatSymbol(b []byte, symbol string, names sampleNames, t time.Time) ([]byte, bool) {
	era, eraName := "1", "AD"
	if t.Year() <= 0 {
		era, eraName = "0", "BC"
	}
	switch symbol {
	case "G", "GG", "GGG":
		b = append(b, lookupName(names.erasAbbr, era, lookupName(names.eras, era, eraName))...)
	case "GGGG":
		b = append(b, lookupName(names.eras, era, eraName)...)
	case "GGGGG":
		// narrow era is the first letter of the abbreviation
		abbr := lookupName(names.erasAbbr, era, lookupName(names.eras, era, eraName))
		_, n := utf8.DecodeRuneInString(abbr)
		b = append(b, abbr[:n]...)
	case "y", "yyy":
		b = strconv.AppendInt(b, int64(t.Year()), 10)
	case "yy":
		b = t.AppendFormat(b, "06")
	case "yyyy":
		b = t.AppendFormat(b, "2006")
	case "Q":
		b = strconv.AppendInt(b, int64(quarter(t)), 10)
	case "QQ":
		b = append(b, '0')
		b = strconv.AppendInt(b, int64(quarter(t)), 10)
	case "QQQ":
		q := strconv.Itoa(quarter(t))
		b = append(b, lookupName(names.quartersAbbr, q, "Q"+q)...)
	case "QQQQ":
		q := quarter(t)
		b = append(b, lookupName(names.quarters, strconv.Itoa(q), quarterNames[q-1])...)
	case "w", "ww":
		// ISO 8601 week of the year
		_, week := t.ISOWeek()
		if symbol == "ww" && week < 10 {
			b = append(b, '0')
		}
		b = strconv.AppendInt(b, int64(week), 10)
	case "M":
		b = t.AppendFormat(b, "1")
	case "MM":
		b = t.AppendFormat(b, "01")
	case "MMM":
		month := strconv.Itoa(int(t.Month()))
		b = append(b, lookupName(names.monthsAbbr, month, lookupName(names.months, month, t.Format("Jan")))...)
	case "MMMM":
		b = append(b, lookupName(names.months, strconv.Itoa(int(t.Month())), t.Format("January"))...)
	case "d":
		b = t.AppendFormat(b, "2")
	case "dd":
		b = t.AppendFormat(b, "02")
	case "E", "EE", "EEE":
		day := dayIDs[t.Weekday()]
		b = append(b, lookupName(names.daysAbbr, day, lookupName(names.days, day, t.Format("Mon")))...)
	case "EEEE":
		b = append(b, lookupName(names.days, dayIDs[t.Weekday()], t.Format("Monday"))...)
	case "a":
		period, fallback := names.am, "AM"
		if 12 <= t.Hour() {
			period, fallback = names.pm, "PM"
		}
		if period == "" {
			period = fallback
		}
		b = append(b, period...)
	case "h":
		b = t.AppendFormat(b, "3")
	case "hh":
		b = t.AppendFormat(b, "03")
	case "K":
		b = strconv.AppendInt(b, int64(t.Hour()%12), 10)
	case "KK":
		b = append(b, fmt.Sprintf("%02d", t.Hour()%12)...)
	case "H":
		b = strconv.AppendInt(b, int64(t.Hour()), 10)
	case "HH":
		b = t.AppendFormat(b, "15")
	case "m":
		b = t.AppendFormat(b, "4")
	case "mm":
		b = t.AppendFormat(b, "04")
	case "s":
		b = t.AppendFormat(b, "5")
	case "ss":
		b = t.AppendFormat(b, "05")
	case "S", "SS", "SSS":
		// fraction of a second truncated to the number of digits
		frac := fmt.Sprintf("%09d", t.Nanosecond())
		b = append(b, frac[:len(symbol)]...)
	default:
		return b, false
	}
	return b, true
}
