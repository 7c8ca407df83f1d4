package ooldml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// OpenOfficeNamespace is the namespace of the openOffice:* special elements.
const OpenOfficeNamespace = "http://www.openoffice.org"

// LDML is a CLDR locale document.
type LDML struct {
	XMLName            xml.Name            `xml:"ldml"`
	Namespace          string              `xml:"xmlns:openOffice,attr,omitempty"`
	Identity           Identity            `xml:"identity"`
	LocaleDisplayNames *LocaleDisplayNames `xml:"localeDisplayNames,omitempty"`
	Delimiters         *Delimiters         `xml:"delimiters,omitempty"`
	Measurement        *Measurement        `xml:"measurement,omitempty"`
	Dates              *Dates              `xml:"dates,omitempty"`
	Numbers            *Numbers            `xml:"numbers,omitempty"`
	Special            *Special            `xml:"special,omitempty"`
}

// Alias points to the same element, or to path, in another locale.
type Alias struct {
	Source string `xml:"source,attr"`
	Path   string `xml:"path,attr,omitempty"`
}

type TypeAttr struct {
	Type string `xml:"type,attr"`
}

type TypeValue struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type Identity struct {
	Version   Version          `xml:"version"`
	Language  TypeAttr         `xml:"language"`
	Territory *TypeAttr        `xml:"territory,omitempty"`
	Variant   *TypeAttr        `xml:"variant,omitempty"`
	Special   *IdentitySpecial `xml:"special,omitempty"`
}

type Version struct {
	Number string `xml:"number,attr"`
}

type LocaleDisplayNames struct {
	Languages   []TypeValue `xml:"languages>language,omitempty"`
	Territories []TypeValue `xml:"territories>territory,omitempty"`
}

type Delimiters struct {
	Alias                   *Alias `xml:"alias,omitempty"`
	QuotationStart          string `xml:"quotationStart,omitempty"`
	QuotationEnd            string `xml:"quotationEnd,omitempty"`
	AlternateQuotationStart string `xml:"alternateQuotationStart,omitempty"`
	AlternateQuotationEnd   string `xml:"alternateQuotationEnd,omitempty"`
}

type Measurement struct {
	System TypeAttr `xml:"measurementSystem"`
}

type Dates struct {
	Calendars Calendars `xml:"calendars"`
}

type Calendars struct {
	Calendars []LDMLCalendar `xml:"calendar"`
}

type LDMLCalendar struct {
	Type            string           `xml:"type,attr"`
	Months          *Months          `xml:"months,omitempty"`
	Days            *Days            `xml:"days,omitempty"`
	Quarters        *Quarters        `xml:"quarters,omitempty"`
	Week            *Week            `xml:"week,omitempty"`
	AM              string           `xml:"am,omitempty"`
	PM              string           `xml:"pm,omitempty"`
	Eras            *Eras            `xml:"eras,omitempty"`
	DateFormats     *DateFormats     `xml:"dateFormats,omitempty"`
	TimeFormats     *TimeFormats     `xml:"timeFormats,omitempty"`
	DateTimeFormats *DateTimeFormats `xml:"dateTimeFormats,omitempty"`
}

type Months struct {
	Alias   *Alias       `xml:"alias,omitempty"`
	Context *NameContext `xml:"monthContext,omitempty"`
}

type Days struct {
	Alias   *Alias       `xml:"alias,omitempty"`
	Context *NameContext `xml:"dayContext,omitempty"`
}

type Quarters struct {
	Context *NameContext `xml:"quarterContext,omitempty"`
}

// NameContext holds the month, day or quarter names of the format context, per width.
type NameContext struct {
	Type   string      `xml:"type,attr"`
	Widths []NameWidth `xml:",any"`
}

type NameWidth struct {
	XMLName xml.Name
	Type    string      `xml:"type,attr"`
	Names   []NameValue `xml:",any"`
}

type NameValue struct {
	XMLName xml.Name
	Type    string `xml:"type,attr"`
	Value   string `xml:",chardata"`
}

type Week struct {
	MinDays  *WeekMinDays  `xml:"minDays,omitempty"`
	FirstDay *WeekFirstDay `xml:"firstDay,omitempty"`
}

type WeekMinDays struct {
	Count int `xml:"count,attr"`
}

type WeekFirstDay struct {
	Day string `xml:"day,attr"`
}

type Eras struct {
	Alias *Alias      `xml:"alias,omitempty"`
	Abbr  []TypeValue `xml:"eraAbbr>era,omitempty"`
	Names []TypeValue `xml:"eraNames>era,omitempty"`
}

type DateFormats struct {
	Alias   *Alias             `xml:"alias,omitempty"`
	Lengths []DateFormatLength `xml:"dateFormatLength"`
}

type DateFormatLength struct {
	Type    string `xml:"type,attr"`
	Pattern string `xml:"dateFormat>pattern"`
}

type TimeFormats struct {
	Alias   *Alias             `xml:"alias,omitempty"`
	Lengths []TimeFormatLength `xml:"timeFormatLength"`
}

type TimeFormatLength struct {
	Type    string `xml:"type,attr"`
	Pattern string `xml:"timeFormat>pattern"`
}

type DateTimeFormats struct {
	Alias            *Alias                 `xml:"alias,omitempty"`
	Lengths          []DateTimeFormatLength `xml:"dateTimeFormatLength"`
	AvailableFormats *AvailableFormats      `xml:"availableFormats,omitempty"`
}

type DateTimeFormatLength struct {
	Type    string `xml:"type,attr,omitempty"`
	Pattern string `xml:"dateTimeFormat>pattern"`
}

// AvailableFormats lists the patterns of the flexible date and time formats, ids count from 1.
type AvailableFormats struct {
	Items []DateFormatItem `xml:"dateFormatItem"`
}

type DateFormatItem struct {
	ID      string `xml:"id,attr"`
	Pattern string `xml:",chardata"`
}

type Numbers struct {
	Symbols           *Symbols       `xml:"symbols,omitempty"`
	DecimalFormats    *NumberFormats `xml:"decimalFormats,omitempty"`
	ScientificFormats *NumberFormats `xml:"scientificFormats,omitempty"`
	PercentFormats    *NumberFormats `xml:"percentFormats,omitempty"`
	CurrencyFormats   *NumberFormats `xml:"currencyFormats,omitempty"`
	Currencies        *Currencies    `xml:"currencies,omitempty"`
}

type Symbols struct {
	Alias   *Alias `xml:"alias,omitempty"`
	Decimal string `xml:"decimal,omitempty"`
	Group   string `xml:"group,omitempty"`
	List    string `xml:"list,omitempty"`
}

// NumberFormats holds decimal, scientific, percent or currency formats. The element names depend on the kind and are set by NewNumberFormats.
type NumberFormats struct {
	Alias   *Alias               `xml:"alias,omitempty"`
	Lengths []NumberFormatLength `xml:",any"`
}

type NumberFormatLength struct {
	XMLName xml.Name
	Type    string       `xml:"type,attr,omitempty"`
	Format  NumberFormat `xml:",any"`
}

type NumberFormat struct {
	XMLName xml.Name
	Pattern string `xml:"pattern"`
}

// NewNumberFormats returns formats with elements named after kind, eg. decimal for <decimalFormatLength><decimalFormat>.
func NewNumberFormats(kind string, patterns []string) *NumberFormats {
	formats := &NumberFormats{}
	for _, pattern := range patterns {
		formats.Lengths = append(formats.Lengths, NumberFormatLength{
			XMLName: xml.Name{Local: kind + "FormatLength"},
			Format: NumberFormat{
				XMLName: xml.Name{Local: kind + "Format"},
				Pattern: pattern,
			},
		})
	}
	return formats
}

type Currencies struct {
	Alias      *Alias         `xml:"alias,omitempty"`
	Currencies []LDMLCurrency `xml:"currency"`
}

type LDMLCurrency struct {
	Type        string `xml:"type,attr"`
	DisplayName string `xml:"displayName,omitempty"`
	Symbol      string `xml:"symbol,omitempty"`
}

type IdentitySpecial struct {
	Platform *SpecialPlatform `xml:"openOffice:platform,omitempty"`
}

type SpecialPlatform struct {
	ID string `xml:"id,attr"`
}

// Special holds the OpenOffice.org data that has no LDML counterpart.
type Special struct {
	Symbols        *SpecialValues         `xml:"openOffice:symbols,omitempty"`
	FormatElements []SpecialFormatElement `xml:"openOffice:format>openOffice:formatElement,omitempty"`
	ReservedWords  *SpecialValues         `xml:"openOffice:reservedWords,omitempty"`
	ForbiddenChars *SpecialValues         `xml:"openOffice:forbiddenCharacters,omitempty"`
}

func (s *Special) empty() bool {
	return s.Symbols == nil && len(s.FormatElements) == 0 && s.ReservedWords == nil && s.ForbiddenChars == nil
}

type SpecialValue struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// SpecialValues is a list of elements, or a reference to the locale that holds them.
type SpecialValues struct {
	Ref    string         `xml:"ref,attr,omitempty"`
	Values []SpecialValue `xml:",any"`
}

type SpecialFormatElement struct {
	MsgID       string `xml:"msgid,attr"`
	Usage       string `xml:"usage,attr"`
	Type        string `xml:"type,attr,omitempty"`
	Default     bool   `xml:"default,attr"`
	FormatIndex int    `xml:"formatindex,attr"`
	Code        string `xml:"openOffice:formatCode"`
	DefaultName string `xml:"openOffice:defaultName,omitempty"`
}

// WriteOptions control the document type declaration.
type WriteOptions struct {
	DTDDir      string // directory of ldml.dtd and ldmlOpenOffice.dtd, if empty the CLDR URL is used
	CLDRVersion string
}

// DocType returns the system identifier of the document type.
func (opts WriteOptions) DocType(specials bool) string {
	if opts.DTDDir != "" {
		if specials {
			return path.Join(filepath.ToSlash(opts.DTDDir), "ldmlOpenOffice.dtd")
		}
		return path.Join(filepath.ToSlash(opts.DTDDir), "ldml.dtd")
	}
	version := opts.CLDRVersion
	if version == "" {
		version = DefaultCLDRVersion
	}
	return fmt.Sprintf("http://www.unicode.org/cldr/dtd/%s/ldml.dtd", version)
}

// WriteLDML writes doc as an indented XML document.
func WriteLDML(w io.Writer, doc *LDML, opts WriteOptions) error {
	if doc.Special != nil && doc.Special.empty() {
		doc.Special = nil
	}
	specials := doc.Special != nil || doc.Identity.Special != nil
	if specials {
		doc.Namespace = OpenOfficeNamespace
	} else {
		doc.Namespace = ""
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "<!DOCTYPE ldml SYSTEM %q>\n", opts.DocType(specials)); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// CreateLDMLFile creates <dir>/<locale>.xml, creating dir if it does not exist.
func CreateLDMLFile(dir, locale string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(dir, locale+".xml"))
}
