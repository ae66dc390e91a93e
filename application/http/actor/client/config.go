package client

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the file form of [Options].
//
//	redirect:
//	  follow: true
//	  max: 5
//	timeout:
//	  connect: 10s
//	  read: 30s
//	  write: 30s
//	receive:
//	  allow_sole_lf: false
//	  strict_field_names: false
//	  max_status_line_length: 8192
//	  max_field_line_length: 65536
//	  max_fields: 256
type Config struct {
	Redirect struct {
		Follow bool `yaml:"follow"`
		Max    uint `yaml:"max"`
	} `yaml:"redirect"`

	Timeout struct {
		Connect time.Duration `yaml:"connect"`
		Read    time.Duration `yaml:"read"`
		Write   time.Duration `yaml:"write"`
	} `yaml:"timeout"`

	Receive struct {
		AllowSoleLF         bool `yaml:"allow_sole_lf"`
		StrictFieldNames    bool `yaml:"strict_field_names"`
		MaxStatusLineLength uint `yaml:"max_status_line_length"`
		MaxFieldLineLength  uint `yaml:"max_field_line_length"`
		MaxFields           uint `yaml:"max_fields"`
	} `yaml:"receive"`
}

// DefaultConfig mirrors [DefaultOptions].
func DefaultConfig() *Config {
	return ConfigFrom(DefaultOptions())
}

func ConfigFrom(opts Options) *Config {
	c := new(Config)
	c.Redirect.Follow = opts.Redirect.Follow
	c.Redirect.Max = opts.Redirect.Max

	c.Timeout.Connect = opts.Timeout.Connect
	c.Timeout.Read = opts.Timeout.Read
	c.Timeout.Write = opts.Timeout.Write

	dec := opts.Receive.Decode
	c.Receive.AllowSoleLF = dec.AllowSoleLF
	c.Receive.StrictFieldNames = dec.StrictFieldNames
	c.Receive.MaxStatusLineLength = dec.MaxStatusLineLength
	c.Receive.MaxFieldLineLength = dec.MaxFieldLineLength
	c.Receive.MaxFields = dec.MaxFields
	return c
}

// Options layers c over [DefaultOptions].
func (c *Config) Options() Options {
	opts := DefaultOptions()
	opts.Redirect.Follow = c.Redirect.Follow
	opts.Redirect.Max = c.Redirect.Max

	opts.Timeout.Connect = c.Timeout.Connect
	opts.Timeout.Read = c.Timeout.Read
	opts.Timeout.Write = c.Timeout.Write

	dec := &opts.Receive.Decode
	dec.AllowSoleLF = c.Receive.AllowSoleLF
	dec.StrictFieldNames = c.Receive.StrictFieldNames
	dec.MaxStatusLineLength = c.Receive.MaxStatusLineLength
	dec.MaxFieldLineLength = c.Receive.MaxFieldLineLength
	dec.MaxFields = c.Receive.MaxFields
	return opts
}

// ReadConfig reads a YAML configuration. Keys left out keep their default.
// Unknown keys are rejected.
func ReadConfig(r io.Reader) (*Config, error) {
	c := DefaultConfig()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty document.
			return c, nil
		}
		return nil, errors.Wrap(err, "decoding config")
	}
	return c, nil
}

// LoadConfig opens and reads the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening config")
	}
	defer f.Close()

	return ReadConfig(f)
}
