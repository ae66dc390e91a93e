package http

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type MessageEncoderTestSuite struct {
	suite.Suite
}

func TestMessageEncoderTestSuite(t *testing.T) {
	suite.Run(t, new(MessageEncoderTestSuite))
}

func (s *MessageEncoderTestSuite) TestWriteLine() {
	testcases := []struct {
		desc     string
		input    []byte
		opts     EncodeOptions
		expected string
	}{
		{
			desc:     "simple line with CRLF",
			input:    []byte("Hello"),
			expected: "Hello\r\n",
		},
		{
			desc:     "simple line with LF",
			input:    []byte("Hello"),
			opts:     EncodeOptions{UseSoleLF: true},
			expected: "Hello\n",
		},
		{
			desc:     "empty line",
			input:    nil,
			expected: "\r\n",
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			var buf bytes.Buffer
			me := MessageEncoder{
				bw:   bufio.NewWriter(&buf),
				opts: tc.opts,
			}

			s.NoError(me.writeLine(tc.input))
			s.NoError(me.bw.Flush())

			s.Equal(tc.expected, buf.String())
		})
	}
}

func (s *MessageEncoderTestSuite) TestEncodeHeaders() {
	testcases := []struct {
		desc     string
		headers  []Field
		expected string
	}{
		{
			desc: "simple headers",
			headers: []Field{
				{[]byte("Host"), []byte("example.com")},
				{[]byte("Accept"), []byte("*/*")},
			},
			expected: "" +
				"Host: example.com\r\n" +
				"Accept: */*\r\n" +
				"\r\n",
		},
		{
			desc:     "empty headers",
			headers:  []Field{},
			expected: "\r\n",
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			var buf bytes.Buffer
			me := MessageEncoder{
				bw:   bufio.NewWriter(&buf),
				opts: DefaultEncodeOptions,
			}

			s.NoError(me.encodeHeaders(tc.headers))
			s.NoError(me.bw.Flush())

			s.Equal(tc.expected, buf.String())
		})
	}
}

type RequestEncoderTestSuite struct {
	suite.Suite
}

func TestRequestEncoderTestSuite(t *testing.T) {
	suite.Run(t, new(RequestEncoderTestSuite))
}

func (s *RequestEncoderTestSuite) TestEncode() {
	body := "field1=value1"

	input := Request{
		RequestLine: RequestLine{
			Method:  "POST",
			Target:  "/example",
			Version: Version{1, 1},
		},
		Headers: []Field{
			{[]byte("Host"), []byte("example.com")},
		},
		Body: strings.NewReader(body),
	}

	expected := "" +
		"POST /example HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"\r\n" +
		body

	buf := bytes.NewBuffer(nil)
	re := NewRequestEncoder(buf, DefaultEncodeOptions)

	s.NoError(re.Encode(input))

	s.Equal(expected, buf.String())
}

func (s *RequestEncoderTestSuite) TestEncodeWithoutBody() {
	input := Request{
		RequestLine: RequestLine{
			Method:  "GET",
			Target:  "/",
			Version: Version{1, 1},
		},
		Headers: []Field{
			{[]byte("Host"), []byte("example.com")},
		},
	}

	buf := bytes.NewBuffer(nil)
	re := NewRequestEncoder(buf, DefaultEncodeOptions)

	s.NoError(re.Encode(input))

	s.Equal("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n", buf.String())
}

type ResponseEncoderTestSuite struct {
	suite.Suite
}

func TestResponseEncoderTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseEncoderTestSuite))
}

func (s *ResponseEncoderTestSuite) TestEncode() {
	input := Response{
		StatusLine: StatusLine{
			Version:      Version{1, 1},
			StatusCode:   200,
			ReasonPhrase: "OK",
		},
		Headers: []Field{
			{[]byte("Content-Length"), []byte("5")},
		},
		Body: strings.NewReader("Hello"),
	}

	expected := "" +
		"HTTP/1.1 200 OK\r\n" +
		"Content-Length: 5\r\n" +
		"\r\n" +
		"Hello"

	buf := bytes.NewBuffer(nil)
	re := NewResponseEncoder(buf, DefaultEncodeOptions)

	s.NoError(re.Encode(input))

	s.Equal(expected, buf.String())
}

func (s *ResponseEncoderTestSuite) TestRoundTrip() {
	input := Response{
		StatusLine: StatusLine{
			Version:      Version{1, 1},
			StatusCode:   404,
			ReasonPhrase: "Not Found",
		},
		Headers: []Field{
			{[]byte("Content-Type"), []byte("text/plain")},
		},
	}

	buf := bytes.NewBuffer(nil)
	s.NoError(NewResponseEncoder(buf, DefaultEncodeOptions).Encode(input))

	var decoded Response
	s.NoError(NewResponseDecoder(buf, DefaultDecodeOptions).Decode(&decoded))

	s.Equal(input.StatusLine, decoded.StatusLine)
	s.Equal(input.Headers, decoded.Headers)
}
