// Package uri implements Uniform Resource Identifier (URI) parsing and
// reference resolution.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc3986
//
// - https://datatracker.ietf.org/doc/html/rfc5891
package uri
