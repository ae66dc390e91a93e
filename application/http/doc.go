// Package http implements the HTTP/1.1 message syntax used by the client:
// start lines, field blocks and their wire encoding.
//
// Body framing lives in package transfer, content codings in package content.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
