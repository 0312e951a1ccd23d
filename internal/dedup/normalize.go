package dedup

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Honorific tokens stripped from names before comparison. Korean
// honorifics are attached as suffixes, western ones stand alone.
var honorificTokens = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {},
}

var honorificSuffixes = []string{"님", "씨"}

// NormalizeName lowercases, NFKC-normalizes (composes decomposed
// Hangul jamo), strips honorifics and collapses whitespace.
func NormalizeName(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,")
		if _, ok := honorificTokens[f]; ok {
			continue
		}
		for _, suf := range honorificSuffixes {
			if len(f) > len(suf) && strings.HasSuffix(f, suf) {
				f = strings.TrimSuffix(f, suf)
				break
			}
		}
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

// NameTokens returns the sorted unique token set of a normalized name.
func NameTokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	seen := map[string]struct{}{}
	tokens := make([]string, 0, 4)
	for _, t := range strings.Fields(normalized) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// NormalizePhone reduces a phone number to digits and folds the Korean
// country code back onto the domestic trunk prefix, so "+82 10-1234-5678"
// and "010-1234-5678" normalize identically.
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	switch {
	case strings.HasPrefix(d, "0082"):
		d = "0" + d[4:]
	case strings.HasPrefix(d, "82") && len(d) >= 11:
		d = "0" + d[2:]
	}
	return d
}

// SplitEmail lowercases and splits an address into local part and
// domain. ok is false when the value is not usable for matching.
func SplitEmail(s string) (local, domain string, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return "", "", false
	}
	return s[:at], s[at+1:], true
}

// NormalizeHandle folds a messaging handle for case-insensitive
// exact matching.
func NormalizeHandle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var soundexCodes = map[rune]byte{
	'b': '1', 'f': '1', 'p': '1', 'v': '1',
	'c': '2', 'g': '2', 'j': '2', 'k': '2', 'q': '2', 's': '2', 'x': '2', 'z': '2',
	'd': '3', 't': '3',
	'l': '4',
	'm': '5', 'n': '5',
	'r': '6',
}

// Soundex computes the classic 4-character soundex code of an ASCII
// word. Returns "" when the input has no leading ASCII letter.
func Soundex(s string) string {
	s = strings.ToLower(s)
	runes := []rune(s)
	if len(runes) == 0 || runes[0] < 'a' || runes[0] > 'z' {
		return ""
	}
	code := []byte{byte(unicode.ToUpper(runes[0]))}
	prev, hasPrev := soundexCodes[runes[0]]
	for _, r := range runes[1:] {
		if len(code) == 4 {
			break
		}
		c, ok := soundexCodes[r]
		if !ok {
			// h and w do not reset the previous code; vowels do
			if r != 'h' && r != 'w' {
				hasPrev = false
			}
			continue
		}
		if hasPrev && c == prev {
			continue
		}
		code = append(code, c)
		prev, hasPrev = c, true
	}
	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}

// NameBlockKey derives the name block for a contact. ASCII names use
// soundex of the first name token; Hangul and other non-Latin names
// use the leading two runes of the squashed normalized name, which
// buckets by family name plus first given syllable.
func NameBlockKey(normalizedName string) string {
	if normalizedName == "" {
		return ""
	}
	squashed := strings.ReplaceAll(normalizedName, " ", "")
	runes := []rune(squashed)
	if len(runes) == 0 {
		return ""
	}
	if runes[0] >= 'a' && runes[0] <= 'z' {
		return Soundex(strings.Fields(normalizedName)[0])
	}
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return string(runes)
}

// PhoneBlockKey is the last 8 digits of the normalized phone, which
// absorbs country-code variance on the prefix side. Numbers too short
// to be real phones are excluded from blocking entirely.
func PhoneBlockKey(normalizedPhone string) string {
	if len(normalizedPhone) < 7 {
		return ""
	}
	if len(normalizedPhone) <= 8 {
		return normalizedPhone
	}
	return normalizedPhone[len(normalizedPhone)-8:]
}

// EmailBlockKey is domain plus the first 3 chars of the local part.
func EmailBlockKey(local, domain string) string {
	prefix := local
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return domain + ":" + prefix
}
