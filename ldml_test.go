package ooldml

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestWriteLDML(t *testing.T) {
	doc := &LDML{
		Identity: Identity{
			Version:   Version{"$Revision$"},
			Language:  TypeAttr{"de"},
			Territory: &TypeAttr{"DE"},
			Special:   &IdentitySpecial{Platform: &SpecialPlatform{ID: "generic"}},
		},
		Numbers: &Numbers{
			Symbols:        &Symbols{Decimal: ",", Group: "."},
			DecimalFormats: NewNumberFormats("decimal", []string{"#,##0.###"}),
		},
		Special: &Special{},
	}

	buf := &bytes.Buffer{}
	test.Error(t, WriteLDML(buf, doc, WriteOptions{CLDRVersion: "1.4"}))
	out := buf.String()

	test.That(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`), out)
	for _, s := range []string{
		`<!DOCTYPE ldml SYSTEM "http://www.unicode.org/cldr/dtd/1.4/ldml.dtd">`,
		`<ldml xmlns:openOffice="http://www.openoffice.org">`,
		`<language type="de"></language>`,
		`<territory type="DE"></territory>`,
		`<openOffice:platform id="generic"></openOffice:platform>`,
		`<decimal>,</decimal>`,
		`<decimalFormatLength>`,
		`<decimalFormat>`,
		`<pattern>#,##0.###</pattern>`,
	} {
		test.That(t, strings.Contains(out, s), "missing "+s)
	}
	test.That(t, !strings.Contains(out, "<special>\n  </special>"), "empty special is dropped")
	test.That(t, doc.Special == nil)
}

func TestWriteLDMLWithoutSpecials(t *testing.T) {
	doc := &LDML{
		Identity: Identity{Version: Version{"$Revision$"}, Language: TypeAttr{"en"}},
		Dates: &Dates{Calendars{[]LDMLCalendar{{
			Type: "gregorian",
			DateFormats: &DateFormats{Lengths: []DateFormatLength{
				{"short", "M/d/yy"},
			}},
			TimeFormats: &TimeFormats{Alias: &Alias{Source: "en_US", Path: "//ldml/dates/calendars/calendar[@type='gregorian']/timeFormats"}},
		}}}},
	}

	buf := &bytes.Buffer{}
	test.Error(t, WriteLDML(buf, doc, WriteOptions{}))
	out := buf.String()

	test.That(t, strings.Contains(out, `SYSTEM "http://www.unicode.org/cldr/dtd/1.3/ldml.dtd"`), out)
	test.That(t, strings.Contains(out, "<ldml>"), out)
	test.That(t, strings.Contains(out, `<calendar type="gregorian">`), out)
	test.That(t, strings.Contains(out, `<dateFormatLength type="short">`), out)
	test.That(t, strings.Contains(out, `<pattern>M/d/yy</pattern>`), out)
	test.That(t, strings.Contains(out, `<alias source="en_US" path="//ldml/dates/calendars/calendar[@type=&#39;gregorian&#39;]/timeFormats"></alias>`), out)
	test.That(t, !strings.Contains(out, "openOffice"), out)
}

func TestDocType(t *testing.T) {
	test.T(t, WriteOptions{}.DocType(false), "http://www.unicode.org/cldr/dtd/1.3/ldml.dtd")
	test.T(t, WriteOptions{CLDRVersion: "1.4"}.DocType(true), "http://www.unicode.org/cldr/dtd/1.4/ldml.dtd")
	test.T(t, WriteOptions{DTDDir: "dtd"}.DocType(false), "dtd/ldml.dtd")
	test.T(t, WriteOptions{DTDDir: "dtd"}.DocType(true), "dtd/ldmlOpenOffice.dtd")
}

func TestCreateLDMLFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "main")
	f, err := CreateLDMLFile(dir, "de_DE")
	test.Error(t, err)
	test.Error(t, f.Close())

	info, err := os.Stat(filepath.Join(dir, "de_DE.xml"))
	test.Error(t, err)
	test.That(t, !info.IsDir())
}
