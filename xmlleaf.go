package ooldml

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

// leafFunc receives the element path, the attributes of every element on the path and the text content for each element that has no child elements.
type leafFunc func(tags []string, attrs []map[string]string, content string)

// startFunc receives the element path and attributes once all attributes of the last element are known.
type startFunc func(tags []string, attrs []map[string]string)

// readXMLLeafs streams an XML document and calls cb for every leaf element. Empty elements such as <LC_CTYPE ref="en_US"/> are leafs with empty content.
func readXMLLeafs(r io.Reader, cb leafFunc) error {
	return readXMLElements(r, nil, cb)
}

// readXMLElements is readXMLLeafs that also calls start, if not nil, for every element.
func readXMLElements(r io.Reader, start startFunc, cb leafFunc) error {
	l := xml.NewLexer(parse.NewInput(r))

	tags := []string{}
	attrs := []map[string]string{}
	content := strings.Builder{}
	leaf, inPI := false, false
	pop := func() {
		tags = tags[:len(tags)-1]
		attrs = attrs[:len(attrs)-1]
		leaf = false
	}
	for {
		tt, data := l.Next()
		switch tt {
		case xml.ErrorToken:
			if l.Err() != io.EOF {
				return l.Err()
			} else if len(tags) != 0 {
				return fmt.Errorf("unexpected end of document in <%s>", tags[len(tags)-1])
			}
			return nil
		case xml.StartTagPIToken:
			inPI = true
		case xml.StartTagClosePIToken:
			inPI = false
		case xml.StartTagToken:
			tags = append(tags, string(l.Text()))
			attrs = append(attrs, map[string]string{})
			content.Reset()
			leaf = true
		case xml.AttributeToken:
			if !inPI && len(attrs) != 0 {
				attrs[len(attrs)-1][string(l.Text())] = unquoteAttrVal(l.AttrVal())
			}
		case xml.StartTagCloseToken:
			if start != nil && len(tags) != 0 {
				start(tags, attrs)
			}
		case xml.StartTagCloseVoidToken:
			if len(tags) != 0 {
				if start != nil {
					start(tags, attrs)
				}
				cb(tags, attrs, "")
				pop()
			}
		case xml.TextToken:
			if leaf {
				content.WriteString(html.UnescapeString(string(data)))
			}
		case xml.CDATAToken:
			if leaf {
				content.Write(l.Text())
			}
		case xml.EndTagToken:
			name := string(l.Text())
			if len(tags) == 0 || tags[len(tags)-1] != name {
				return fmt.Errorf("unexpected </%s>", name)
			}
			if leaf {
				cb(tags, attrs, content.String())
			}
			pop()
		}
	}
}

func unquoteAttrVal(b []byte) string {
	if 2 <= len(b) && (b[0] == '"' || b[0] == '\'') && b[len(b)-1] == b[0] {
		b = b[1 : len(b)-1]
	}
	return html.UnescapeString(string(b))
}

// isTag matches an element path against a selector such as "Locale/LC_FORMAT/FormatElement[usage=DATE]/FormatCode". An element may require an attribute to exist [attr], to be missing [!attr] or to have a value [attr=val]. A * matches one or more remaining elements.
func isTag(tags []string, attrs []map[string]string, selector string) bool {
	elems := strings.Split(selector, "/")
	if len(tags) != len(elems) && elems[len(elems)-1] != "*" {
		return false
	}
	for i, elem := range elems {
		if len(tags) <= i {
			return false
		} else if elem == "*" {
			return true
		}

		name, conds, _ := strings.Cut(elem, "[")
		if name != tags[i] {
			return false
		}
		for conds != "" {
			cond, rest, ok := strings.Cut(conds, "]")
			if !ok {
				panic("bad selector " + selector)
			}
			conds = strings.TrimPrefix(rest, "[")

			key, val, hasVal := strings.Cut(cond, "=")
			if strings.HasPrefix(key, "!") {
				if _, ok := attrs[i][key[1:]]; ok {
					return false
				}
			} else if attrVal, ok := attrs[i][key]; !ok || hasVal && attrVal != val {
				return false
			}
		}
	}
	return true
}

// attr returns attribute key of the element at depth i counted from the leaf, with 0 the leaf itself.
func attr(attrs []map[string]string, i int, key string) string {
	if i < 0 || len(attrs) <= i {
		return ""
	}
	return attrs[len(attrs)-1-i][key]
}

// leafName is the name of the leaf element.
func leafName(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return tags[len(tags)-1]
}
