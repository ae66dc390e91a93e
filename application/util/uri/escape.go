package uri

import (
	"strings"

	"github.com/pkg/errors"
)

type encodeMode uint

const (
	encodePath encodeMode = 1 + iota
	encodeHost
	encodeUserInfo
	encodeQuery
	encodeFragment
)

const upperHex = "0123456789ABCDEF"

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// escape percent-encodes the bytes of s not allowed in mode.
// Existing percent-encoded triplets are written as they are, so escaping
// an already encoded component does not change it.
func escape(s string, mode encodeMode) string {
	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		if c == '%' && idx+2 < len(s) && isPercentEncoded(s[idx:idx+3]) {
			b.WriteString(s[idx : idx+3])
			idx += 2
			continue
		}
		if !shouldEscape(c, mode) {
			b.WriteByte(c)
			continue
		}
		writeTriplet(b, c)
	}

	return b.String()
}

func writeTriplet(b *strings.Builder, c byte) {
	b.WriteByte('%')
	b.WriteByte(upperHex[c>>4])
	b.WriteByte(upperHex[c&0xF])
}

// normalizeEscapes decodes triplets of unreserved characters and uppercases
// every other triplet. Reserved characters stay encoded, since decoding
// them changes what the URI identifies.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-6.2.2
func normalizeEscapes(s string) (string, error) {
	return decodeTriplets(s, isUnreserved)
}

// unescape decodes every triplet of s.
// Only hosts are fully decoded, as they name a DNS label rather than a resource.
func unescape(s string) (string, error) {
	return decodeTriplets(s, func(byte) bool { return true })
}

// decodeTriplets decodes the triplets whose byte satisfies decode.
// Others are kept encoded with uppercase hex digits.
func decodeTriplets(s string, decode func(c byte) bool) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}

	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if idx+2 >= len(s) || !isPercentEncoded(s[idx:idx+3]) {
			bad := s[idx:min(len(s), idx+3)]
			return "", errors.Errorf("percent encoding not properly applied: %q", bad)
		}

		if c := unhex(s[idx+1])<<4 | unhex(s[idx+2]); decode(c) {
			b.WriteByte(c)
		} else {
			writeTriplet(b, c)
		}
		idx += 2
	}

	return b.String(), nil
}

func shouldEscape(c byte, mode encodeMode) bool {
	if isUnreserved(c) {
		return false
	}

	if !isReserved(c) {
		return true
	}

	switch mode {
	case encodeUserInfo:
		// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.1
		return !(isSubDelim(c) || c == ':')
	case encodeHost:
		// Brackets and colons are kept for IP Literal.
		// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.2
		return !(isSubDelim(c) || c == '[' || c == ']' || c == ':')
	case encodePath:
		// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.3
		return !(isSubDelim(c) || c == ':' || c == '@' || c == '/')
	case encodeFragment, encodeQuery:
		// Reference:
		// https://datatracker.ietf.org/doc/html/rfc3986#section-3.4
		// https://datatracker.ietf.org/doc/html/rfc3986#section-3.5
		return !(isSubDelim(c) || c == ':' || c == '@' || c == '/' || c == '?')
	}

	return true
}
