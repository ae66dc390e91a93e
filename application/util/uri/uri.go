package uri

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidScheme = errors.New("invalid scheme")
	ErrInvalidHost   = errors.New("invalid host")
	ErrInvalidPort   = errors.New("invalid port")
)

// URI holds user information, path, query and fragment in percent-encoded form.
// [Parse] only normalizes the encoding; reserved characters that arrived
// encoded stay encoded. Bytes not allowed in a component are escaped when
// the URI is written out, so a URI may also be built from plain text.
type URI struct {
	Scheme    string
	Authority *Authority
	Path      string
	Query     *string
	Fragment  *string
}

type Authority struct {
	UserInfo string
	Host     string

	// Port can be digits of any length by the RFC. It's limited to uint16 here.
	// Reference: datatracker.ietf.org/doc/html/rfc3986#section-3.2.3
	Port *uint16
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-4.2
func (u *URI) IsRelativeRef() bool {
	return u.Scheme == ""
}

// Host returns the host of the authority, or empty string if there's none.
func (u *URI) Host() string {
	if u.Authority == nil {
		return ""
	}
	return u.Authority.Host
}

// Port returns the explicit port of the authority.
func (u *URI) Port() (uint16, bool) {
	if u.Authority == nil || u.Authority.Port == nil {
		return 0, false
	}
	return *u.Authority.Port, true
}

// RequestTarget returns the origin-form of u: absolute path and the optional query.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2.1
func (u *URI) RequestTarget() string {
	b := new(strings.Builder)

	path := escape(u.Path, encodePath)
	if path == "" {
		path = "/"
	}
	b.WriteString(path)

	if u.Query != nil {
		b.WriteByte('?')
		b.WriteString(escape(*u.Query, encodeQuery))
	}

	return b.String()
}

// Clone returns a deep copy of u.
func (u URI) Clone() URI {
	if u.Authority != nil {
		a := *u.Authority
		if a.Port != nil {
			p := *a.Port
			a.Port = &p
		}
		u.Authority = &a
	}
	if u.Query != nil {
		q := *u.Query
		u.Query = &q
	}
	if u.Fragment != nil {
		f := *u.Fragment
		u.Fragment = &f
	}
	return u
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.3
func (u *URI) String() string {
	b := new(strings.Builder)
	if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteByte(':')
	}

	if u.Authority != nil {
		b.WriteString("//")
		if u.Authority.UserInfo != "" {
			b.WriteString(escape(u.Authority.UserInfo, encodeUserInfo))
			b.WriteByte('@')
		}
		b.WriteString(escape(u.Authority.Host, encodeHost))
		if u.Authority.Port != nil {
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(*u.Authority.Port), 10))
		}
	}

	b.WriteString(escape(u.Path, encodePath))

	if u.Query != nil {
		b.WriteByte('?')
		b.WriteString(escape(*u.Query, encodeQuery))
	}

	if u.Fragment != nil {
		b.WriteByte('#')
		b.WriteString(escape(*u.Fragment, encodeFragment))
	}

	return b.String()
}

// Parse parses a URI reference.
// Scheme and host are lowercased; internationalized hosts are converted to
// their ASCII form. Errors on host and port wrap [ErrInvalidHost] and [ErrInvalidPort].
func Parse(rawURL string) (URI, error) {
	if containsCTL(rawURL) {
		return URI{}, errors.New("URI should not contain CTL bytes")
	}

	var uri URI

	scheme, rest, err := cutScheme(rawURL)
	if err != nil {
		return URI{}, errors.Wrap(err, "getting scheme")
	}
	// Scheme is recommended to be lowercase.
	uri.Scheme = strings.ToLower(scheme)

	if strings.HasPrefix(rest, "//") {
		var authorityRaw string
		authorityRaw, rest = rest[2:], ""
		if i := strings.IndexAny(authorityRaw, "/?#"); i >= 0 {
			authorityRaw, rest = authorityRaw[:i], authorityRaw[i:]
		}

		authority, err := parseAuthority(authorityRaw)
		if err != nil {
			return URI{}, errors.Wrap(err, "parsing authority")
		}

		uri.Authority = &authority
	}

	path, query, frag := splitPathQueryFrag(rest)

	if err := assertValidPath(path, uri.Authority != nil, uri.IsRelativeRef()); err != nil {
		return URI{}, errors.Wrap(err, "path is not valid")
	}
	if uri.Path, err = normalizeEscapes(path); err != nil {
		return URI{}, errors.Wrap(err, "normalizing path")
	}

	if len(query) > 0 {
		// Strip '?' from query.
		query = query[1:]
		if !isQueryFragValid(query) {
			return URI{}, errors.New("query is not valid")
		}
		if query, err = normalizeEscapes(query); err != nil {
			return URI{}, errors.Wrap(err, "normalizing query")
		}
		uri.Query = &query
	}

	if len(frag) > 0 {
		// Strip '#' from fragment.
		frag = frag[1:]
		if !isQueryFragValid(frag) {
			return URI{}, errors.New("fragment is not valid")
		}
		if frag, err = normalizeEscapes(frag); err != nil {
			return URI{}, errors.Wrap(err, "normalizing fragment")
		}
		uri.Fragment = &frag
	}

	return uri, nil
}

// cutScheme cuts scheme from rawURL.
func cutScheme(rawURL string) (scheme, rest string, err error) {
	// A colon after the first '/', '?' or '#' belongs to the path, query or fragment.
	end := len(rawURL)
	if i := strings.IndexAny(rawURL, "/?#"); i >= 0 {
		end = i
	}

	i := strings.IndexByte(rawURL[:end], ':')
	if i < 0 {
		return "", rawURL, nil
	}

	scheme, rest = rawURL[:i], rawURL[i+1:]
	if err := assertValidScheme(scheme); err != nil {
		return "", "", errors.Wrap(ErrInvalidScheme, err.Error())
	}

	return scheme, rest, nil
}

func parseAuthority(raw string) (authority Authority, err error) {
	host := raw
	if i := strings.LastIndex(raw, "@"); i >= 0 {
		userInfo := raw[:i]
		host = raw[i+1:]

		if !isValidUserInfo(userInfo) {
			return Authority{}, errors.New("user information is not valid")
		}
		if authority.UserInfo, err = normalizeEscapes(userInfo); err != nil {
			return Authority{}, errors.Wrap(err, "normalizing user information")
		}
	}

	host, portPart, err := splitHostPort(host)
	if err != nil {
		return Authority{}, err
	}

	port, hasPort, err := parsePort(portPart)
	if err != nil {
		return Authority{}, errors.Wrap(ErrInvalidPort, err.Error())
	}
	if hasPort {
		authority.Port = &port
	}

	if authority.Host, err = normalizeHost(host); err != nil {
		return Authority{}, errors.Wrap(ErrInvalidHost, err.Error())
	}

	return authority, nil
}

func splitHostPort(raw string) (host string, portPart string, err error) {
	if strings.HasPrefix(raw, "[") {
		// This is IP Literal.
		idx := strings.LastIndex(raw, "]")
		if idx < 0 {
			return "", "", errors.Wrap(ErrInvalidHost, "missing ']' in IP Literal")
		}

		return raw[:idx+1], raw[idx+1:], nil
	}

	// ipv4 or reg-name.
	if idx := strings.LastIndex(raw, ":"); idx >= 0 {
		return raw[:idx], raw[idx:], nil
	}
	return raw, "", nil
}

// parsePort parses ":port". An empty port is same as no port.
func parsePort(s string) (port uint16, hasPort bool, err error) {
	if s == "" || s == ":" {
		return 0, false, nil
	}

	if s[0] != ':' {
		return 0, false, errors.Errorf("colon delimiter not found on port: %q", s)
	}

	s = s[1:]

	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, false, errors.Wrapf(err, "port %q", s)
	}

	return uint16(n), true, nil
}

func splitPathQueryFrag(raw string) (path, query, frag string) {
	if idx := strings.IndexByte(raw, '#'); idx >= 0 {
		frag = raw[idx:]
		raw = raw[:idx]
	}

	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		query = raw[idx:]
		raw = raw[:idx]
	}

	path = raw
	return
}
