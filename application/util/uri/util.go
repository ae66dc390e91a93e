package uri

import (
	"net/netip"
	"strings"

	"http-client/application/util/rule"

	"github.com/pkg/errors"
	"golang.org/x/net/idna"
)

func containsCTL(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < ' ' || b == 0x7f {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.2
func isSubDelim(c byte) bool {
	switch c {
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=':
		return true
	}
	return false
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.3
func isUnreserved(c byte) bool {
	if rule.IsAlpha(rune(c)) || rule.IsDigit(rune(c)) {
		return true
	}
	switch c {
	case '-', '.', '_', '~':
		return true
	}
	return false
}

func isReserved(c byte) bool {
	switch c {
	case ':', '/', '?', '#', '[', ']', '@':
		// gen-delims
		return true
	}
	return isSubDelim(c)
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.1
func isPercentEncoded(s string) bool {
	if len(s) != 3 {
		return false
	}

	return s[0] == '%' &&
		rule.IsHex(rune(s[1])) &&
		rule.IsHex(rune(s[2]))
}

// allOf reports whether every byte of s satisfies allowed or is a part of pct-encoded.
func allOf(s string, allowed func(c byte) bool) bool {
	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		if allowed(c) {
			continue
		}
		if idx+2 < len(s) && isPercentEncoded(s[idx:idx+3]) {
			idx += 2
			continue
		}
		return false
	}
	return true
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.3
func isPchar(c byte) bool {
	return isUnreserved(c) || isSubDelim(c) || c == ':' || c == '@'
}

func assertValidScheme(scheme string) error {
	if len(scheme) == 0 {
		return errors.New("scheme is empty")
	}

	if !rule.IsAlpha(rune(scheme[0])) {
		return errors.New("scheme doesn't start with ALPHA")
	}

	for idx := 1; idx < len(scheme); idx++ {
		c := scheme[idx]
		switch {
		case rule.IsAlpha(rune(c)) || rule.IsDigit(rune(c)):
		case c == '+' || c == '-' || c == '.':
		default:
			return errors.Errorf("scheme contains invalid byte: %q", c)
		}
	}

	return nil
}

// normalizeHost validates host and returns it in lowercase ASCII form.
// Internationalized reg-names are converted with IDNA.
func normalizeHost(host string) (string, error) {
	if host == "" {
		// Empty value for reg-name is valid.
		// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.2
		return "", nil
	}
	if len(host) > 255 {
		return "", errors.Errorf("host length exceeds limit(255): %d", len(host))
	}

	first, last := 0, len(host)-1
	if host[first] == '[' && host[last] == ']' {
		// This is IP Literal.
		literal := host[first+1 : last]
		if addr, err := netip.ParseAddr(literal); err == nil && addr.Is6() && addr.Zone() == "" {
			return strings.ToLower(host), nil
		}
		if isIPvFuture(literal) {
			return host, nil
		}

		return "", errors.Errorf("host is expected to be IP Literal, but was malformed: %q", host)
	}

	if addr, err := netip.ParseAddr(host); err == nil && addr.Is4() {
		return host, nil
	}

	if !isASCII(host) {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", errors.Wrapf(err, "converting %q to ascii", host)
		}
		host = ascii
	}

	if !allOf(host, func(c byte) bool { return isUnreserved(c) || isSubDelim(c) }) {
		return "", errors.Errorf("host is neither ipv4 addr nor valid reg-name: %q", host)
	}

	host, err := unescape(host)
	if err != nil {
		return "", errors.Wrap(err, "unescaping host")
	}

	return strings.ToLower(host), nil
}

// IsDomainName reports whether host is an IP address or a reg-name that passes
// IDNA lookup validation. Hosts produced by [Parse] are already in ASCII form.
func IsDomainName(host string) bool {
	if host == "" {
		return false
	}
	if strings.HasPrefix(host, "[") {
		return strings.HasSuffix(host, "]")
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return true
	}
	_, err := idna.Lookup.ToASCII(host)
	return err == nil
}

func isValidUserInfo(s string) bool {
	return allOf(s, func(c byte) bool { return isUnreserved(c) || isSubDelim(c) || c == ':' })
}

func isIPvFuture(s string) bool {
	if len(s) < 4 {
		return false
	}

	// v8. vA. vF.
	if !(s[0] == 'v' && rule.IsHex(rune(s[1])) && s[2] == '.') {
		return false
	}

	for idx := 3; idx < len(s); idx++ {
		c := s[idx]
		if !(isUnreserved(c) || isSubDelim(c) || c == ':') {
			return false
		}
	}

	return true
}

func assertValidPath(path string, hasAuthority bool, isRelative bool) error {
	if hasAuthority {
		if !(path == "" || path[0] == '/') {
			return errors.New("URI with authority must either be empty or start with '/'")
		}
	} else if strings.HasPrefix(path, "//") {
		return errors.New("URI without authority should not start with '//'")
	}

	segments := strings.Split(path, "/")
	if isRelative && strings.ContainsRune(segments[0], ':') {
		return errors.New("relative URI reference's first segment should not contain ':'")
	}

	for _, segment := range segments {
		if !allOf(segment, isPchar) {
			return errors.Errorf("path segment should be pchar: %q", segment)
		}
	}

	return nil
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.4
func isQueryFragValid(s string) bool {
	return allOf(s, func(c byte) bool { return isPchar(c) || c == '/' || c == '?' })
}
