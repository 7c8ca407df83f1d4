package ooldml

import (
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestReadXMLLeafs(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE Locale SYSTEM 'locale.dtd'>
<!-- comment -->
<a x="1">
  <b y='2'>text &amp; more</b>
  <c/>
  <d><![CDATA[<raw>]]></d>
</a>`

	var leafs []string
	err := readXMLLeafs(strings.NewReader(doc), func(tags []string, attrs []map[string]string, content string) {
		leafs = append(leafs, strings.Join(tags, "/")+"="+content)
		if leafName(tags) == "b" {
			test.T(t, attr(attrs, 0, "y"), "2")
			test.T(t, attr(attrs, 1, "x"), "1")
			test.T(t, attr(attrs, 2, "x"), "")
		}
	})
	test.Error(t, err)
	test.T(t, leafs, []string{"a/b=text & more", "a/c=", "a/d=<raw>"})
}

func TestReadXMLElements(t *testing.T) {
	doc := `<a><b n="1"><c>x</c></b><b n="2"/></a>`

	var starts []string
	err := readXMLElements(strings.NewReader(doc), func(tags []string, attrs []map[string]string) {
		starts = append(starts, strings.Join(tags, "/")+attr(attrs, 0, "n"))
	}, func([]string, []map[string]string, string) {})
	test.Error(t, err)
	test.T(t, starts, []string{"a", "a/b1", "a/b/c", "a/b2"})
}

func TestReadXMLLeafsErrors(t *testing.T) {
	docs := []string{
		`<a><b></a>`,
		`<a>`,
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			err := readXMLLeafs(strings.NewReader(doc), func([]string, []map[string]string, string) {})
			test.That(t, err != nil)
		})
	}
}

func TestIsTag(t *testing.T) {
	tags := []string{"Locale", "LC_FORMAT", "FormatElement", "FormatCode"}
	attrs := []map[string]string{{}, {"replaceFrom": "[CURRENCY]"}, {"usage": "DATE", "default": "true"}, {}}
	tests := []struct {
		selector string
		match    bool
	}{
		{"Locale/LC_FORMAT/FormatElement/FormatCode", true},
		{"Locale/LC_FORMAT/FormatElement", false},
		{"Locale/LC_FORMAT/*", true},
		{"Locale/LC_FORMAT/FormatElement/FormatCode/*", false},
		{"Locale/LC_FORMAT/FormatElement[usage]/FormatCode", true},
		{"Locale/LC_FORMAT/FormatElement[usage=DATE]/FormatCode", true},
		{"Locale/LC_FORMAT/FormatElement[usage=TIME]/FormatCode", false},
		{"Locale/LC_FORMAT/FormatElement[usage=DATE][default=true]/FormatCode", true},
		{"Locale/LC_FORMAT/FormatElement[!usage]/FormatCode", false},
		{"Locale/LC_FORMAT[!ref]/FormatElement/FormatCode", true},
		{"Locale/LC_CTYPE/*", false},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			test.T(t, isTag(tags, attrs, tt.selector), tt.match)
		})
	}
}
