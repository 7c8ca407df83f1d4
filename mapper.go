package ooldml

import (
	"encoding/xml"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// MapOptions control which data is mapped and how.
type MapOptions struct {
	ConvertDateTime bool // translate date and time format codes, otherwise they are written as is
	CLDROnly        bool // omit openOffice specials
	CLDRVersion     string
	Supplemental    *Supplemental // optional, used for fallbacks and checks
	Logger          *zap.Logger
}

// Mapper maps OpenOffice.org locale data onto LDML documents.
type Mapper struct {
	opts   MapOptions
	cldr14 bool
	log    *zap.Logger
}

func NewMapper(opts MapOptions) (*Mapper, error) {
	if opts.CLDRVersion == "" {
		opts.CLDRVersion = DefaultCLDRVersion
	}
	version, err := Config{CLDRVersion: opts.CLDRVersion}.CLDRVersionNumber()
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Mapper{
		opts:   opts,
		cldr14: 104 <= version, // quarters and flexible date and time formats are part of LDML since CLDR 1.4
		log:    log,
	}, nil
}

var quarterWords = [4]string{"quarter1Word", "quarter2Word", "quarter3Word", "quarter4Word"}
var quarterAbbrs = [4]string{"quarter1Abbreviation", "quarter2Abbreviation", "quarter3Abbreviation", "quarter4Abbreviation"}

var formatLengths = []string{"full", "long", "medium", "short"}

var numberKinds = []struct {
	usage, kind string
}{
	{"FIXED_NUMBER", "decimal"},
	{"SCIENTIFIC_NUMBER", "scientific"},
	{"PERCENT_NUMBER", "percent"},
	{"CURRENCY", "currency"},
}

// mapping is the state of a single Map call.
type mapping struct {
	*Mapper
	loc        *OOLocale
	log        *zap.Logger
	translator *Translator
	patterns   map[string]string // translated by kind and code
	warnings   error
}

// Map returns the LDML document for loc. The document is always returned; a non-nil error combines the pattern warnings of the date and time formats, see multierr.Errors.
func (m *Mapper) Map(loc *OOLocale) (*LDML, error) {
	mp := &mapping{
		Mapper:     m,
		loc:        loc,
		log:        m.log.With(zap.String("locale", loc.ID())),
		translator: NewTranslator(loc.ID()),
		patterns:   map[string]string{},
	}

	doc := &LDML{}
	doc.Identity = mp.identity()
	doc.LocaleDisplayNames = mp.displayNames()
	doc.Delimiters = mp.delimiters()
	doc.Measurement = mp.measurement()
	doc.Dates = mp.dates()
	doc.Numbers = mp.numbers()
	if !m.opts.CLDROnly {
		doc.Special = mp.special()
	}
	return doc, mp.warnings
}

func (mp *mapping) alias(section string) *Alias {
	if ref, ok := mp.loc.Refs[section]; ok {
		return &Alias{Source: ref}
	}
	return nil
}

func (mp *mapping) territory() string {
	if mp.opts.Supplemental != nil {
		return mp.opts.Supplemental.Territory(mp.loc.CountryID)
	}
	return mp.loc.CountryID
}

func (mp *mapping) identity() Identity {
	identity := Identity{
		Version:  Version{Number: "$Revision$"},
		Language: TypeAttr{mp.loc.LangID},
	}
	if territory := mp.territory(); territory != "" {
		if territory != mp.loc.CountryID {
			mp.log.Info("replaced deprecated territory", zap.String("territory", mp.loc.CountryID), zap.String("replacement", territory))
		}
		identity.Territory = &TypeAttr{territory}
	}
	if mp.loc.Variant != "" {
		identity.Variant = &TypeAttr{mp.loc.Variant}
	}
	if !mp.opts.CLDROnly && mp.loc.PlatformID != "" {
		identity.Special = &IdentitySpecial{Platform: &SpecialPlatform{ID: mp.loc.PlatformID}}
	}
	return identity
}

func (mp *mapping) displayNames() *LocaleDisplayNames {
	names := &LocaleDisplayNames{}
	if mp.loc.LangID != "" && mp.loc.LangName != "" {
		names.Languages = []TypeValue{{mp.loc.LangID, mp.loc.LangName}}
	}
	if mp.loc.CountryID != "" && mp.loc.CountryName != "" {
		names.Territories = []TypeValue{{mp.territory(), mp.loc.CountryName}}
	}
	if len(names.Languages) == 0 && len(names.Territories) == 0 {
		return nil
	}
	return names
}

func (mp *mapping) delimiters() *Delimiters {
	if alias := mp.alias(SectionCType); alias != nil {
		return &Delimiters{Alias: alias}
	}
	markers := mp.loc.Markers
	delimiters := &Delimiters{
		QuotationStart:          markers["DoubleQuotationStart"],
		QuotationEnd:            markers["DoubleQuotationEnd"],
		AlternateQuotationStart: markers["QuotationStart"],
		AlternateQuotationEnd:   markers["QuotationEnd"],
	}
	if *delimiters == (Delimiters{}) {
		return nil
	}
	return delimiters
}

func (mp *mapping) measurement() *Measurement {
	var system string
	switch mp.loc.MeasurementSystem {
	case "metric", "Metric":
		system = "metric"
	case "US":
		system = "US"
	default:
		if mp.opts.Supplemental == nil || mp.loc.CountryID == "" {
			return nil
		}
		system = mp.opts.Supplemental.MeasurementSystem(mp.territory())
		mp.log.Debug("measurement system from supplemental data", zap.String("system", system))
	}
	return &Measurement{TypeAttr{system}}
}

func (mp *mapping) dates() *Dates {
	calendars := []LDMLCalendar{}
	if ref, ok := mp.loc.Refs[SectionCalendar]; ok {
		// the referenced calendars are unknown, alias the gregorian one
		path := "//ldml/dates/calendars/calendar[@type='gregorian']"
		calendars = append(calendars, LDMLCalendar{
			Type:   "gregorian",
			Months: &Months{Alias: &Alias{Source: ref, Path: path + "/months"}},
			Days:   &Days{Alias: &Alias{Source: ref, Path: path + "/days"}},
			Eras:   &Eras{Alias: &Alias{Source: ref, Path: path + "/eras"}},
		})
	} else {
		mp.checkCalendars()
		for _, cal := range mp.loc.Calendars {
			typ, ok := CalendarType(cal.ID)
			if !ok {
				mp.log.Warn("skipped unknown calendar", zap.String("calendar", cal.ID))
				continue
			}
			calendars = append(calendars, mp.calendar(typ, cal))
		}
	}

	gregorian := -1
	for i, cal := range calendars {
		if cal.Type == "gregorian" {
			gregorian = i
			break
		}
	}
	dateFormats, timeFormats, dateTimeFormats := mp.dateTimeFormats()
	if dateFormats != nil || timeFormats != nil || dateTimeFormats != nil {
		if gregorian == -1 {
			calendars = append(calendars, LDMLCalendar{Type: "gregorian"})
			gregorian = len(calendars) - 1
		}
		calendars[gregorian].DateFormats = dateFormats
		calendars[gregorian].TimeFormats = timeFormats
		calendars[gregorian].DateTimeFormats = dateTimeFormats
		if mp.opts.ConvertDateTime {
			mp.logSamples(&calendars[gregorian])
		}
	}
	if len(calendars) == 0 {
		return nil
	}
	return &Dates{Calendars{calendars}}
}

// checkCalendars logs the auxiliary calendars expected for the locale that are missing.
func (mp *mapping) checkCalendars() {
	id, err := ParseLocaleID(mp.loc.ID())
	if err != nil {
		mp.log.Debug("no expected calendars", zap.Error(err))
		return
	}
Expected:
	for _, expected := range ExpectedCalendars(id) {
		for _, cal := range mp.loc.Calendars {
			if cal.ID == expected {
				continue Expected
			}
		}
		mp.log.Warn("missing calendar", zap.String("calendar", expected))
	}
}

func (mp *mapping) calendar(typ string, cal Calendar) LDMLCalendar {
	ldmlCal := LDMLCalendar{
		Type: typ,
		AM:   mp.loc.TimeAM,
		PM:   mp.loc.TimePM,
	}

	if alias := calendarAlias(cal, CalendarMonths, "months"); alias != nil {
		ldmlCal.Months = &Months{Alias: alias}
	} else if ctx := nameContext("month", cal.Months, func(i int, _ CalendarName) string { return fmt.Sprint(i + 1) }); ctx != nil {
		ldmlCal.Months = &Months{Context: ctx}
	}
	if alias := calendarAlias(cal, CalendarDays, "days"); alias != nil {
		ldmlCal.Days = &Days{Alias: alias}
	} else if ctx := nameContext("day", cal.Days, func(_ int, name CalendarName) string { return name.ID }); ctx != nil {
		ldmlCal.Days = &Days{Context: ctx}
	}
	if mp.cldr14 && typ == "gregorian" {
		ldmlCal.Quarters = mp.quarterNames()
	}
	if alias := calendarAlias(cal, CalendarEras, "eras"); alias != nil {
		ldmlCal.Eras = &Eras{Alias: alias}
	} else if 0 < len(cal.Eras) {
		eras := &Eras{}
		for i, era := range cal.Eras {
			typ := fmt.Sprint(i)
			if era.Abbreviated != "" {
				eras.Abbr = append(eras.Abbr, TypeValue{typ, era.Abbreviated})
			}
			if era.Wide != "" {
				eras.Names = append(eras.Names, TypeValue{typ, era.Wide})
			}
		}
		ldmlCal.Eras = eras
	}

	week := &Week{}
	firstDay, minDays := cal.StartDayOfWeek, cal.MinimalDaysInFirstWeek
	if mp.opts.Supplemental != nil && (firstDay == "" || minDays == 0) {
		suppFirstDay, suppMinDays := mp.opts.Supplemental.WeekData(mp.territory())
		if firstDay == "" {
			firstDay = suppFirstDay
		}
		if minDays == 0 {
			minDays = suppMinDays
		}
	}
	if 0 < minDays {
		week.MinDays = &WeekMinDays{minDays}
	}
	if firstDay != "" {
		week.FirstDay = &WeekFirstDay{firstDay}
	}
	if week.MinDays != nil || week.FirstDay != nil {
		ldmlCal.Week = week
	}
	return ldmlCal
}

func calendarAlias(cal Calendar, part, elem string) *Alias {
	ref, ok := cal.Refs[part]
	if !ok {
		return nil
	}
	locale, calID, err := SplitCalendarRef(ref)
	if err != nil {
		return nil
	}
	typ, ok := CalendarType(calID)
	if !ok {
		typ = calID
	}
	return &Alias{Source: locale, Path: fmt.Sprintf("//ldml/dates/calendars/calendar[@type='%s']/%s", typ, elem)}
}

// nameContext returns the abbreviated and wide names in the format context, elem is month, day or quarter.
func nameContext(elem string, names []CalendarName, typeOf func(int, CalendarName) string) *NameContext {
	abbr := NameWidth{Type: "abbreviated"}
	wide := NameWidth{Type: "wide"}
	for i, name := range names {
		typ := typeOf(i, name)
		if name.Abbreviated != "" {
			abbr.Names = append(abbr.Names, NameValue{Type: typ, Value: name.Abbreviated})
		}
		if name.Wide != "" {
			wide.Names = append(wide.Names, NameValue{Type: typ, Value: name.Wide})
		}
	}

	ctx := &NameContext{Type: "format"}
	for _, width := range []NameWidth{abbr, wide} {
		if len(width.Names) == 0 {
			continue
		}
		width.XMLName.Local = elem + "Width"
		for i := range width.Names {
			width.Names[i].XMLName.Local = elem
		}
		ctx.Widths = append(ctx.Widths, width)
	}
	if len(ctx.Widths) == 0 {
		return nil
	}
	return ctx
}

func (mp *mapping) quarterNames() *Quarters {
	words := mp.loc.ReservedWords
	names := make([]CalendarName, 4)
	for i := range names {
		names[i] = CalendarName{Abbreviated: words[quarterAbbrs[i]], Wide: words[quarterWords[i]]}
	}
	ctx := nameContext("quarter", names, func(i int, _ CalendarName) string { return fmt.Sprint(i + 1) })
	if ctx == nil {
		return nil
	}
	return &Quarters{Context: ctx}
}

// formatCodes returns per length the element of usage marked default, or else the first one.
func (mp *mapping) formatCodes(usage string) map[string]FormatElement {
	elems := map[string]FormatElement{}
	for _, elem := range mp.loc.FormatElements {
		if elem.Usage != usage {
			continue
		}
		length := elem.Type
		if prev, ok := elems[length]; !ok || elem.Default && !prev.Default {
			elems[length] = elem
		}
	}
	return elems
}

func (mp *mapping) pattern(elem FormatElement, kind Kind) string {
	if !mp.opts.ConvertDateTime {
		return elem.Code
	}
	key := kind.String() + " " + elem.Code
	if pattern, ok := mp.patterns[key]; ok {
		return pattern
	}
	pattern, err := mp.translator.Translate(elem.Code, kind)
	for _, warning := range multierr.Errors(err) {
		mp.log.Warn("pattern translation",
			zap.String("msgid", elem.MsgID),
			zap.String("pattern", elem.Code),
			zap.NamedError("warning", warning))
	}
	mp.warnings = multierr.Append(mp.warnings, err)
	mp.patterns[key] = pattern
	return pattern
}

func (mp *mapping) dateTimeFormats() (*DateFormats, *TimeFormats, *DateTimeFormats) {
	if alias := mp.alias(SectionFormat); alias != nil {
		path := "//ldml/dates/calendars/calendar[@type='gregorian']/"
		return &DateFormats{Alias: &Alias{Source: alias.Source, Path: path + "dateFormats"}},
			&TimeFormats{Alias: &Alias{Source: alias.Source, Path: path + "timeFormats"}},
			&DateTimeFormats{Alias: &Alias{Source: alias.Source, Path: path + "dateTimeFormats"}}
	}

	var dateFormats *DateFormats
	var timeFormats *TimeFormats
	var dateTimeFormats *DateTimeFormats
	dates, times, dateTimes := mp.formatCodes(Date.String()), mp.formatCodes(Time.String()), mp.formatCodes(DateTime.String())
	for _, length := range formatLengths {
		if elem, ok := dates[length]; ok {
			if dateFormats == nil {
				dateFormats = &DateFormats{}
			}
			dateFormats.Lengths = append(dateFormats.Lengths, DateFormatLength{length, mp.pattern(elem, Date)})
		}
		if elem, ok := times[length]; ok {
			if timeFormats == nil {
				timeFormats = &TimeFormats{}
			}
			timeFormats.Lengths = append(timeFormats.Lengths, TimeFormatLength{length, mp.pattern(elem, Time)})
		}
		if elem, ok := dateTimes[length]; ok {
			if dateTimeFormats == nil {
				dateTimeFormats = &DateTimeFormats{}
			}
			dateTimeFormats.Lengths = append(dateTimeFormats.Lengths, DateTimeFormatLength{length, mp.pattern(elem, DateTime)})
		}
	}
	if mp.cldr14 && mp.opts.ConvertDateTime {
		if available := mp.availableFormats(); available != nil {
			if dateTimeFormats == nil {
				dateTimeFormats = &DateTimeFormats{}
			}
			dateTimeFormats.AvailableFormats = available
		}
	}
	return dateFormats, timeFormats, dateTimeFormats
}

// availableFormats returns every translated date and time pattern in document order. Duplicates are dropped, as are patterns of other calendars such as [~buddhist]DD.MM.YYYY.
func (mp *mapping) availableFormats() *AvailableFormats {
	available := &AvailableFormats{}
	seen := map[string]bool{}
	for _, elem := range mp.loc.FormatElements {
		kind, ok := ParseKind(elem.Usage)
		if !ok {
			continue
		}
		pattern := mp.pattern(elem, kind)
		if pattern == "" || strings.Contains(pattern, "[") {
			continue
		} else if seen[pattern] {
			mp.log.Debug("skipped duplicate available format", zap.String("msgid", elem.MsgID), zap.String("pattern", pattern))
			continue
		}
		seen[pattern] = true
		available.Items = append(available.Items, DateFormatItem{ID: fmt.Sprint(len(available.Items) + 1), Pattern: pattern})
	}
	if len(available.Items) == 0 {
		return nil
	}
	return available
}

// logSamples logs every translated pattern formatted at SampleTime with the names of cal.
func (mp *mapping) logSamples(cal *LDMLCalendar) {
	if ce := mp.log.Check(zap.DebugLevel, "pattern sample"); ce == nil {
		return
	}
	patterns := []string{}
	if cal.DateFormats != nil {
		for _, length := range cal.DateFormats.Lengths {
			patterns = append(patterns, length.Pattern)
		}
	}
	if cal.TimeFormats != nil {
		for _, length := range cal.TimeFormats.Lengths {
			patterns = append(patterns, length.Pattern)
		}
	}
	if cal.DateTimeFormats != nil {
		for _, length := range cal.DateTimeFormats.Lengths {
			patterns = append(patterns, length.Pattern)
		}
	}
	for _, pattern := range patterns {
		sample, err := Sample(pattern, cal, SampleTime)
		mp.log.Debug("pattern sample", zap.String("pattern", pattern), zap.String("sample", sample), zap.Error(err))
	}
}

func (mp *mapping) numbers() *Numbers {
	numbers := &Numbers{}
	if alias := mp.alias(SectionCType); alias != nil {
		numbers.Symbols = &Symbols{Alias: alias}
	} else {
		symbols := &Symbols{
			Decimal: mp.loc.Separators["DecimalSeparator"],
			Group:   mp.loc.Separators["ThousandSeparator"],
			List:    mp.loc.Separators["ListSeparator"],
		}
		if *symbols != (Symbols{}) {
			numbers.Symbols = symbols
		}
	}

	formatAlias := mp.alias(SectionFormat)
	for _, nk := range numberKinds {
		var formats *NumberFormats
		if formatAlias != nil {
			formats = &NumberFormats{Alias: formatAlias}
		} else {
			elem, ok := mp.defaultElement(nk.usage)
			if !ok {
				continue
			}
			code := elem.Code
			if mp.loc.ReplaceFrom != "" {
				code = strings.ReplaceAll(code, mp.loc.ReplaceFrom, mp.loc.ReplaceTo)
			}
			formats = NewNumberFormats(nk.kind, []string{code})
		}
		switch nk.kind {
		case "decimal":
			numbers.DecimalFormats = formats
		case "scientific":
			numbers.ScientificFormats = formats
		case "percent":
			numbers.PercentFormats = formats
		case "currency":
			numbers.CurrencyFormats = formats
		}
	}

	if alias := mp.alias(SectionCurrency); alias != nil {
		numbers.Currencies = &Currencies{Alias: alias}
	} else if 0 < len(mp.loc.Currencies) {
		mp.checkDefaultCurrency()
		currencies := &Currencies{}
		for _, cur := range mp.loc.Currencies {
			if digits, ok := mp.currencyDigits(cur.ID); !ok {
				mp.log.Warn("unknown currency code", zap.String("currency", cur.ID))
			} else if digits != cur.DecimalPlaces {
				mp.log.Warn("currency decimal places differ from CLDR",
					zap.String("currency", cur.ID),
					zap.Int("decimalPlaces", cur.DecimalPlaces),
					zap.Int("digits", digits))
			}
			currencies.Currencies = append(currencies.Currencies, LDMLCurrency{
				Type:        cur.ID,
				DisplayName: cur.Name,
				Symbol:      cur.Symbol,
			})
		}
		numbers.Currencies = currencies
	}

	if *numbers == (Numbers{}) {
		return nil
	}
	return numbers
}

// currencyDigits returns the fraction digits of a currency from the supplemental data, or else from the CLDR tables of x/text.
func (mp *mapping) currencyDigits(id string) (int, bool) {
	unit, err := currency.ParseISO(id)
	if mp.opts.Supplemental != nil {
		if _, ok := mp.opts.Supplemental.CurrencyDigits[id]; ok || err != nil {
			return mp.opts.Supplemental.Digits(id), true
		}
	}
	if err != nil {
		return 0, false
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale, true
}

// checkDefaultCurrency logs when the default currency is not the current tender of the territory.
func (mp *mapping) checkDefaultCurrency() {
	cur, ok := mp.loc.DefaultCurrency()
	if !ok || mp.territory() == "" {
		return
	}
	region, err := language.ParseRegion(mp.territory())
	if err != nil {
		return
	}
	if tender, ok := currency.FromRegion(region); ok && tender.String() != cur.ID {
		mp.log.Info("default currency is not the tender of the territory", zap.String("currency", cur.ID), zap.String("tender", tender.String()))
	}
}

// defaultElement returns the element of usage marked default, or else the first one.
func (mp *mapping) defaultElement(usage string) (FormatElement, bool) {
	var found FormatElement
	ok := false
	for _, elem := range mp.loc.FormatElements {
		if elem.Usage == usage && (!ok || elem.Default && !found.Default) {
			found, ok = elem, true
		}
	}
	return found, ok
}

func (mp *mapping) special() *Special {
	special := &Special{}

	mapped := map[string]bool{"DecimalSeparator": true, "ThousandSeparator": true, "ListSeparator": true}
	if ref, ok := mp.loc.Refs[SectionCType]; ok {
		special.Symbols = &SpecialValues{Ref: ref}
	} else if values := specialValues(mp.loc.Separators, mapped); values != nil {
		special.Symbols = values
	}

	for _, elem := range mp.loc.FormatElements {
		special.FormatElements = append(special.FormatElements, SpecialFormatElement{
			MsgID:       elem.MsgID,
			Usage:       elem.Usage,
			Type:        elem.Type,
			Default:     elem.Default,
			FormatIndex: elem.FormatIndex,
			Code:        elem.Code,
			DefaultName: elem.DefaultName,
		})
	}

	mapped = map[string]bool{}
	if mp.cldr14 {
		for i := range quarterWords {
			mapped[quarterWords[i]] = true
			mapped[quarterAbbrs[i]] = true
		}
	}
	if ref, ok := mp.loc.Refs[SectionMisc]; ok {
		special.ReservedWords = &SpecialValues{Ref: ref}
	} else {
		special.ReservedWords = specialValues(mp.loc.ReservedWords, mapped)
	}
	if ref, ok := mp.loc.Refs[SectionForbidden]; ok {
		special.ForbiddenChars = &SpecialValues{Ref: ref}
	} else {
		special.ForbiddenChars = specialValues(mp.loc.ForbiddenChars, nil)
	}
	return special
}

// specialValues returns the openOffice elements for values that are not mapped elsewhere, eg. DateSeparator becomes <openOffice:dateSeparator>.
func specialValues(values map[string]string, mapped map[string]bool) *SpecialValues {
	special := &SpecialValues{}
	for _, name := range sortedKeys(values) {
		if mapped[name] {
			continue
		}
		special.Values = append(special.Values, SpecialValue{
			XMLName: xml.Name{Local: "openOffice:" + lowerFirst(name)},
			Value:   values[name],
		})
	}
	if len(special.Values) == 0 {
		return nil
	}
	return special
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
