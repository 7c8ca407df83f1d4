package ooldml

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
)

// Kind is the element kind of a format code, it selects the token rules that apply.
type Kind int

const (
	Date Kind = iota
	Time
	DateTime
)

func (k Kind) String() string {
	switch k {
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case DateTime:
		return "DATE_TIME"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps the usage attribute of a FormatElement onto a Kind.
func ParseKind(usage string) (Kind, bool) {
	switch usage {
	case "DATE":
		return Date, true
	case "TIME":
		return Time, true
	case "DATE_TIME":
		return DateTime, true
	}
	return 0, false
}

var ErrUnknownKind = errors.New("ooldml: unknown element kind")

// MalformedPatternWarning is returned when the pattern could only partially be translated, such as for unbalanced quotes or token runs longer than any known token.
type MalformedPatternWarning struct {
	Pattern string
	Pos     int
	Reason  string
	Err     error
}

func (w *MalformedPatternWarning) Error() string {
	if w.Pos < 0 {
		return fmt.Sprintf("ooldml: malformed pattern %q: %s", w.Pattern, w.Reason)
	}
	return fmt.Sprintf("ooldml: malformed pattern %q at %d: %s", w.Pattern, w.Pos, w.Reason)
}

func (w *MalformedPatternWarning) Unwrap() error {
	return w.Err
}

// AmbiguousContextWarning is returned when no date or time field surrounds a month/minute token. The token is kept as a month.
type AmbiguousContextWarning struct {
	Pattern string
	Pos     int
	Token   string
}

func (w *AmbiguousContextWarning) Error() string {
	return fmt.Sprintf("ooldml: ambiguous token %q at %d in %q, kept as month", w.Token, w.Pos, w.Pattern)
}

const amPmMarker = "AM/PM"

// legacy symbols of older locale data, the first matching prefix wins
var legacySymbols = []struct {
	prefixes []string
	replacer *strings.Replacer
}{
	{[]string{"de"}, strings.NewReplacer("J", "Y", "T", "D")},
	{[]string{"nl"}, strings.NewReplacer("J", "Y", "U", "H")},
	{[]string{"fr"}, strings.NewReplacer("A", "Y", "J", "D")},
	{[]string{"it"}, strings.NewReplacer("A", "Y", "G", "D")},
	{[]string{"pt", "es", "ja"}, strings.NewReplacer("A", "Y")},
	{[]string{"da", "nb", "nn", "no", "sv"}, strings.NewReplacer("T", "H")},
	{[]string{"fi"}, strings.NewReplacer("V", "Y", "K", "M", "P", "D", "T", "H")},
}

// Translator rewrites OpenOffice.org number format codes for dates and times into LDML date patterns. It holds no state between calls and may be shared.
type Translator struct {
	locale string
	legacy *strings.Replacer
}

func NewTranslator(locale string) *Translator {
	t := &Translator{locale: locale}
	for _, table := range legacySymbols {
		for _, prefix := range table.prefixes {
			if strings.HasPrefix(locale, prefix) {
				t.legacy = table.replacer
				return t
			}
		}
	}
	return t
}

func (t *Translator) Locale() string {
	return t.locale
}

// Translate returns the LDML pattern for an OpenOffice.org format code. The returned pattern is always usable; a non-nil error combines the *MalformedPatternWarning and *AmbiguousContextWarning values encountered, see multierr.Errors.
func (t *Translator) Translate(pattern string, kind Kind) (string, error) {
	if pattern == "" {
		return pattern, nil
	}
	if kind != Date && kind != Time && kind != DateTime {
		return pattern, &MalformedPatternWarning{pattern, -1, kind.String(), ErrUnknownKind}
	}

	tr := &translation{pattern: pattern, kind: kind}
	s := tr.extractAMPM(pattern)
	if t.legacy != nil {
		// not quote-aware, literal text of legacy locales is remapped as well
		s = t.legacy.Replace(s)
	}
	s, delims := tr.rewrite(s)
	s = normalizeQuotes(s)
	s = tr.quoteNonLatin1(s, delims)
	return s, tr.err
}

// translation is the scratch state of a single Translate call.
type translation struct {
	pattern string
	kind    Kind
	amPm    bool
	err     error
}

func (tr *translation) warn(err error) {
	tr.err = multierr.Append(tr.err, err)
}

func (tr *translation) malformed(pos int, format string, a ...any) {
	tr.warn(&MalformedPatternWarning{Pattern: tr.pattern, Pos: pos, Reason: fmt.Sprintf(format, a...)})
}

type charState uint8

const (
	active  charState = iota
	quoted            // literal span including its delimiters
	escaped           // backslash and the character it escapes
)

// literalSpans annotates every byte of a source pattern in one forward pass. Double quotes delimit literal spans and a backslash escapes the following character, also a double quote. It returns whether a literal span is left open.
func literalSpans(s string) ([]charState, bool) {
	states := make([]charState, len(s))
	open := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"':
			states[i] = quoted
			open = !open
		case open:
			states[i] = quoted
		case c == '\\' && i+1 < len(s):
			_, n := utf8.DecodeRuneInString(s[i+1:])
			for j := i; j <= i+n; j++ {
				states[j] = escaped
			}
			i += n
		}
	}
	return states, open
}

// indexActive returns the index of the first occurrence of substr in s at or after from that does not start inside a literal span, or -1.
func indexActive(s, substr string, states []charState, from int) int {
	for from <= len(s)-len(substr) {
		i := strings.Index(s[from:], substr)
		if i == -1 {
			return -1
		}
		i += from
		if states[i] == active {
			return i
		}
		from = i + 1
	}
	return -1
}

func (tr *translation) extractAMPM(s string) string {
	states, _ := literalSpans(s)
	i := indexActive(s, amPmMarker, states, 0)
	if i == -1 {
		return s
	}
	tr.amPm = true

	sb := strings.Builder{}
	prev := 0
	for i != -1 {
		sb.WriteString(s[prev:i])
		sb.WriteByte('a')
		prev = i + len(amPmMarker)
		i = indexActive(s, amPmMarker, states, prev)
	}
	sb.WriteString(s[prev:])
	return sb.String()
}

// segment is either a run of one repeated token character or literal text.
type segment struct {
	start, end int
	symbol     byte
}

func (seg segment) n() int {
	return seg.end - seg.start
}

func isSymbol(c byte) bool {
	return 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || c == '0'
}

func segments(s string, states []charState) []segment {
	segs := []segment{}
	for i := 0; i < len(s); {
		j := i + 1
		if states[i] == active && isSymbol(s[i]) {
			for j < len(s) && s[j] == s[i] && states[j] == active {
				j++
			}
			segs = append(segs, segment{i, j, s[i]})
		} else {
			for j < len(s) && (states[j] != active || !isSymbol(s[j])) {
				j++
			}
			segs = append(segs, segment{i, j, 0})
		}
		i = j
	}
	return segs
}

type fieldContext int

const (
	noContext fieldContext = iota
	dateContext
	timeContext
)

func contextOf(c byte) fieldContext {
	switch c {
	case 'G', 'g', 'E', 'e', 'R', 'r', 'N', 'n', 'D', 'd', 'Y', 'y', 'W', 'w', 'Q', 'q':
		return dateContext
	case 'H', 'h', 'S', 's':
		return timeContext
	}
	return noContext
}

func isMonthMinute(seg segment) bool {
	return (seg.symbol == 'M' || seg.symbol == 'm') && seg.n() <= 2
}

// minutes resolves which month/minute runs of a combined date-time pattern are minutes. Each run takes the context of the nearest date or time field before it, or else after it. Resolution stops at the first run found to be a minute.
func (tr *translation) minutes(segs []segment) map[int]bool {
	minutes := map[int]bool{}
	for i, seg := range segs {
		if !isMonthMinute(seg) {
			continue
		}
		ctx := noContext
		for j := i - 1; 0 <= j && ctx == noContext; j-- {
			ctx = contextOf(segs[j].symbol)
		}
		for j := i + 1; j < len(segs) && ctx == noContext; j++ {
			ctx = contextOf(segs[j].symbol)
		}
		if ctx == timeContext {
			minutes[i] = true
			break
		} else if ctx == noContext {
			tr.warn(&AmbiguousContextWarning{tr.pattern, seg.start, strings.Repeat(string(seg.symbol), seg.n())})
		}
	}
	return minutes
}

// clamp limits the run length n to max and reports longer runs.
func (tr *translation) clamp(seg segment, max int) int {
	if max < seg.n() {
		tr.malformed(seg.start, "%q longer than %d", strings.Repeat(string(seg.symbol), seg.n()), max)
		return max
	}
	return seg.n()
}

// patternBuilder builds a translated pattern and marks the bytes that delimit a literal span.
type patternBuilder struct {
	strings.Builder
	delims []bool
}

func (pb *patternBuilder) write(s string, delim bool) {
	pb.WriteString(s)
	for i := 0; i < len(s); i++ {
		pb.delims = append(pb.delims, delim)
	}
}

// rewrite translates all token runs and turns backslash escapes into literal spans. Literal spans keep the source quote. It also returns per byte of the result whether it delimits a literal span.
func (tr *translation) rewrite(s string) (string, []bool) {
	states, _ := literalSpans(s)
	segs := segments(s, states)

	var minutes map[int]bool
	if tr.kind == DateTime {
		minutes = tr.minutes(segs)
	}

	pb := &patternBuilder{delims: make([]bool, 0, len(s)+8)}
	pb.Grow(len(s) + 8)
	for i, seg := range segs {
		if seg.symbol == 0 {
			writeLiteral(pb, s[seg.start:seg.end], states[seg.start:seg.end])
			continue
		}

		sym := ""
		if tr.kind == Time || tr.kind == DateTime {
			sym = tr.timeSymbol(seg, minutes[i])
		}
		if sym == "" && (tr.kind == Date || tr.kind == DateTime) {
			sym = tr.dateSymbol(seg, s[seg.end:])
		}
		if sym == "" {
			sym = s[seg.start:seg.end]
		}
		pb.write(sym, false)
	}
	return pb.String(), pb.delims
}

func (tr *translation) timeSymbol(seg segment, minute bool) string {
	switch seg.symbol {
	case 'H', 'h':
		if tr.amPm {
			return strings.Repeat("K", tr.clamp(seg, 2))
		} else if seg.symbol == 'h' {
			return strings.Repeat("H", tr.clamp(seg, 2))
		}
		return strings.Repeat("H", seg.n())
	case 'M', 'm':
		if tr.kind == Time || minute {
			return strings.Repeat("m", tr.clamp(seg, 2))
		}
	case 'S', 's':
		return strings.Repeat("s", tr.clamp(seg, 2))
	case '0':
		return strings.Repeat("S", seg.n())
	}
	return ""
}

func (tr *translation) dateSymbol(seg segment, rest string) string {
	switch seg.symbol {
	case 'G':
		switch tr.clamp(seg, 3) {
		case 1:
			return "GGGGG"
		case 2:
			return "G"
		case 3:
			return "GGGG"
		}
	case 'E':
		return strings.Repeat("y", tr.clamp(seg, 2))
	case 'R':
		if tr.clamp(seg, 2) == 1 {
			return "Gy"
		}
		return "GGGGyy"
	case 'Y':
		if tr.clamp(seg, 4) < 3 {
			return "yy"
		}
		return "yyyy"
	case 'N':
		switch tr.clamp(seg, 4) {
		case 2:
			return "EEE"
		case 3:
			return "EEEE"
		case 4:
			// full day name followed by the day-of-week separator
			if strings.HasPrefix(rest, ",") {
				return "EEEE"
			}
			return "EEEE, "
		}
	case 'D':
		switch tr.clamp(seg, 4) {
		case 1:
			return "d"
		case 2:
			return "dd"
		case 3:
			return "EEE"
		case 4:
			return "EEEE"
		}
	case 'W':
		return strings.Repeat("w", tr.clamp(seg, 2))
	case 'Q':
		if tr.clamp(seg, 2) == 1 {
			return "QQQ"
		}
		return "QQQQ"
	}
	return ""
}

// writeLiteral copies literal text. Apostrophes are doubled as LDML requires and escaped letters are quoted, escaped double quotes and backslashes are kept until the final quoting.
func writeLiteral(pb *patternBuilder, s string, states []charState) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			pb.write("''", false)
			continue
		} else if states[i] != escaped || s[i] != '\\' || i+1 == len(s) {
			pb.write(s[i:i+1], s[i] == '"' && states[i] == quoted)
			continue
		}
		_, n := utf8.DecodeRuneInString(s[i+1:])
		switch c := s[i+1]; {
		case c == '"' || c == '\\':
			pb.write(s[i:i+2], false)
		case c == '\'':
			pb.write("''", false)
		case isSymbol(c):
			pb.write(`"`, true)
			pb.write(s[i+1:i+2], false)
			pb.write(`"`, true)
		default:
			pb.write(s[i+1:i+1+n], false)
		}
		i += n
	}
}

// normalizeQuotes converts the double quote literal delimiters into single quotes. Escaped double quotes are left alone, so that applying it twice has no effect.
func normalizeQuotes(s string) string {
	if strings.IndexByte(s, '"') == -1 {
		return s
	}
	b := []byte(s)
	open := false
	for i := 0; i < len(b); i++ {
		if b[i] == '"' {
			b[i] = '\''
			open = !open
		} else if b[i] == '\\' && !open {
			i++
		}
	}
	return string(b)
}

func needsQuote(r rune) bool {
	return 255 < r
}

// quoteNonLatin1 quotes runs of characters above U+00FF that are not part of a literal span, since LDML reserves unquoted letters. Adjacent literal spans are merged so that no doubled apostrophe is produced, and an unterminated literal span is closed. Remaining escapes lose their backslash. The delims mask tells the apostrophes that delimit a literal span from the doubled literal ones.
func (tr *translation) quoteNonLatin1(s string, delims []bool) string {
	sb := strings.Builder{}
	sb.Grow(len(s) + 4)
	open, auto := false, false
	for i := 0; i < len(s); {
		r, n := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '\'' && !delims[i]:
			sb.WriteString("''")
			n = 2
		case r == '\\' && !open && i+1 < len(s):
			if auto {
				sb.WriteByte('\'')
				auto = false
			}
			_, m := utf8.DecodeRuneInString(s[i+1:])
			sb.WriteString(s[i+1 : i+1+m])
			n += m
		case r == '\'':
			if auto {
				// continue the automatic span as the pattern's literal span
				auto, open = false, true
			} else if next, _ := utf8.DecodeRuneInString(s[i+1:]); open && i+1 < len(s) && needsQuote(next) {
				auto, open = true, false
			} else {
				open = !open
				sb.WriteByte('\'')
			}
		case !open && needsQuote(r):
			if !auto {
				sb.WriteByte('\'')
				auto = true
			}
			sb.WriteString(s[i : i+n])
		default:
			if auto {
				sb.WriteByte('\'')
				auto = false
			}
			sb.WriteString(s[i : i+n])
		}
		i += n
	}
	if auto || open {
		sb.WriteByte('\'')
	}
	if open {
		tr.malformed(len(s), "unterminated literal")
	}
	return sb.String()
}
