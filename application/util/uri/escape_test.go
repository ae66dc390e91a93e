package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		mode     encodeMode
		expected string
	}{
		{
			desc:     "plain path is kept",
			input:    "/a/b;c=d@e:f",
			mode:     encodePath,
			expected: "/a/b;c=d@e:f",
		},
		{
			desc:     "space and hash in path",
			input:    "/a b/#1",
			mode:     encodePath,
			expected: "/a%20b/%231",
		},
		{
			desc:     "encoded slash in path survives",
			input:    "/a%2Fb",
			mode:     encodePath,
			expected: "/a%2Fb",
		},
		{
			desc:     "encoded delimiters in query survive",
			input:    "token=a%2Bb%26c",
			mode:     encodeQuery,
			expected: "token=a%2Bb%26c",
		},
		{
			desc:     "brackets in query",
			input:    "q=[1]",
			mode:     encodeQuery,
			expected: "q=%5B1%5D",
		},
		{
			desc:     "stray percent",
			input:    "100%",
			mode:     encodeQuery,
			expected: "100%25",
		},
		{
			desc:     "slash in user information",
			input:    "foo:pass/word",
			mode:     encodeUserInfo,
			expected: "foo:pass%2Fword",
		},
		{
			desc:     "non-ascii host",
			input:    "한.com",
			mode:     encodeHost,
			expected: "%ED%95%9C.com",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, escape(tc.input, tc.mode))
		})
	}
}

func TestNormalizeEscapes(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			desc:     "unreserved are decoded",
			input:    "%7Euser%2Dname%41",
			expected: "~user-nameA",
		},
		{
			desc:     "reserved stay encoded",
			input:    "k=%3D1&t=a%2Bb%26c%2F",
			expected: "k=%3D1&t=a%2Bb%26c%2F",
		},
		{
			desc:     "hex digits are uppercased",
			input:    "%2f%e2%82%ac",
			expected: "%2F%E2%82%AC",
		},
		{
			desc:    "truncated triplet",
			input:   "a%2",
			wantErr: true,
		},
		{
			desc:    "non-hex triplet",
			input:   "a%2Z",
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			s, err := normalizeEscapes(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, s)
		})
	}
}

func TestUnescapeHost(t *testing.T) {
	s, err := unescape("%65xample.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", s)

	_, err = unescape("example%")
	assert.Error(t, err)
}

func TestShouldEscape(t *testing.T) {
	testcases := []struct {
		desc     string
		input    byte
		mode     encodeMode
		expected bool
	}{
		{desc: "unreserved", input: '~', mode: encodePath, expected: false},
		{desc: "non-ascii", input: 0xE2, mode: encodeQuery, expected: true},
		{desc: "colon in user information", input: ':', mode: encodeUserInfo, expected: false},
		{desc: "at in user information", input: '@', mode: encodeUserInfo, expected: true},
		{desc: "bracket in host", input: '[', mode: encodeHost, expected: false},
		{desc: "slash in host", input: '/', mode: encodeHost, expected: true},
		{desc: "slash in path", input: '/', mode: encodePath, expected: false},
		{desc: "question mark in path", input: '?', mode: encodePath, expected: true},
		{desc: "question mark in query", input: '?', mode: encodeQuery, expected: false},
		{desc: "hash in fragment", input: '#', mode: encodeFragment, expected: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, shouldEscape(tc.input, tc.mode))
		})
	}
}
