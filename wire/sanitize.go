package wire

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf16"
)

// EncodeOutbound prepares user-authored text for transport: the raw text is
// HTML-escaped so literal markup cannot inject when the result is later
// inserted into a page, then percent-escaped so the payload travels as a
// single plain scalar. DecodeInbound reverses only the percent escape;
// entity resolution is left to the renderer.
func EncodeOutbound(raw string) string {
	return escapeTransport(html.EscapeString(raw))
}

// DecodeInbound inverts the transport escape applied by EncodeOutbound.
// HTML entities are deliberately left escaped so the renderer shows them
// as text instead of interpreting them as markup. Input that is not valid
// percent-escaped text decodes byte-for-byte where it cannot be unescaped.
func DecodeInbound(payload string) string {
	return unescapeTransport(payload)
}

// transportSafe are the characters the escape passes through untouched,
// matching the legacy percent escape the wire format was built around.
func transportSafe(u uint16) bool {
	switch {
	case u >= 'A' && u <= 'Z', u >= 'a' && u <= 'z', u >= '0' && u <= '9':
		return true
	}
	switch u {
	case '@', '*', '_', '+', '-', '.', '/':
		return true
	}
	return false
}

// escapeTransport percent-escapes s over its UTF-16 code units: safe
// characters pass through, units below 256 become %XX and everything else
// %uXXXX. Surrogate halves are escaped individually, which keeps
// astral-plane characters round-trippable.
func escapeTransport(s string) string {
	var b strings.Builder
	for _, u := range utf16.Encode([]rune(s)) {
		switch {
		case transportSafe(u):
			b.WriteByte(byte(u))
		case u < 0x100:
			fmt.Fprintf(&b, "%%%02X", u)
		default:
			fmt.Fprintf(&b, "%%u%04X", u)
		}
	}
	return b.String()
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

func hexRun(s string, n int) (int, bool) {
	if len(s) < n {
		return 0, false
	}
	v := 0
	for i := 0; i < n; i++ {
		d, ok := hexVal(s[i])
		if !ok {
			return 0, false
		}
		v = v<<4 | d
	}
	return v, true
}

// unescapeTransport is the inverse of escapeTransport. Malformed escapes
// are passed through verbatim rather than rejected; the loops treat content
// as opaque text and must never fail on it.
func unescapeTransport(s string) string {
	units := make([]uint16, 0, len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '%' {
			units = append(units, uint16(c))
			i++
			continue
		}
		if i+1 < len(s) && (s[i+1] == 'u' || s[i+1] == 'U') {
			if v, ok := hexRun(s[i+2:], 4); ok {
				units = append(units, uint16(v))
				i += 6
				continue
			}
		}
		if v, ok := hexRun(s[i+1:], 2); ok {
			units = append(units, uint16(v))
			i += 3
			continue
		}
		units = append(units, uint16(c))
		i++
	}
	return string(utf16.Decode(units))
}
