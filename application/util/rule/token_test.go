package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidToken(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected bool
	}{
		{
			desc:     "valid token with alphabets",
			input:    "Token",
			expected: true,
		},
		{
			desc:     "valid token with digits",
			input:    "Token123",
			expected: true,
		},
		{
			desc:     "valid token with special characters",
			input:    "Token-._~",
			expected: true,
		},
		{
			desc:     "invalid token with space",
			input:    "Token 123",
			expected: false,
		},
		{
			desc:     "invalid token with special characters",
			input:    "Token@123",
			expected: false,
		},
		{
			desc:     "empty token",
			input:    "",
			expected: false,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsValidToken(tc.input))
		})
	}
}

func TestListContainsToken(t *testing.T) {
	testcases := []struct {
		desc     string
		values   []string
		token    string
		expected bool
	}{
		{
			desc:     "single value",
			values:   []string{"gzip"},
			token:    "gzip",
			expected: true,
		},
		{
			desc:     "comma separated with OWS",
			values:   []string{"identity , Deflate"},
			token:    "deflate",
			expected: true,
		},
		{
			desc:     "repeated header lines",
			values:   []string{"identity", "GZIP"},
			token:    "gzip",
			expected: true,
		},
		{
			desc:     "substring does not match",
			values:   []string{"x-gzip-ish"},
			token:    "gzip",
			expected: false,
		},
		{
			desc:     "no values",
			values:   nil,
			token:    "chunked",
			expected: false,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, ListContainsToken(tc.values, tc.token))
		})
	}
}

func TestIsHex(t *testing.T) {
	for _, c := range "0123456789abcdefABCDEF" {
		assert.True(t, IsHex(c), string(c))
	}
	for _, c := range "gG-x " {
		assert.False(t, IsHex(c), string(c))
	}
}
