package semantic

import "strings"

type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodConnect Method = "CONNECT"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

// ParseMethod uppercases well-known methods. Others are kept as is,
// since method names are case-sensitive.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-9.1
func ParseMethod(s string) Method {
	switch m := Method(strings.ToUpper(s)); m {
	case MethodGet, MethodHead, MethodPost, MethodPut, MethodPatch,
		MethodDelete, MethodConnect, MethodOptions, MethodTrace:
		return m
	}
	return Method(s)
}

func DefaultPort(scheme string) (uint16, bool) {
	switch scheme {
	case "http":
		return 80, true
	case "https":
		return 443, true
	}
	return 0, false
}
