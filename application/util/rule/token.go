package rule

import "golang.org/x/net/http/httpguts"

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.2-2
func IsValidToken(s string) bool {
	return httpguts.ValidHeaderFieldName(s)
}

// ListContainsToken reports whether any of the comma-separated lists in
// values holds token, compared case-insensitively.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.1
func ListContainsToken(values []string, token string) bool {
	return httpguts.HeaderValuesContainsToken(values, token)
}
