package watch

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/romdo/go-debounce/v2"
)

const defaultWait = 100 * time.Millisecond

// Config describes what to watch and what to run.
//
//	paths: [./src]
//	recursive: true
//	include: ["*.go"]
//	exclude: ["*_test.go"]
//	command: [go, build, ./...]
//	debounce:
//	  wait: 250ms
//	  max_wait: 2s
type Config struct {
	Paths       []string        `yaml:"paths"`
	Recursive   bool            `yaml:"recursive"`
	Include     []string        `yaml:"include"`
	Exclude     []string        `yaml:"exclude"`
	Command     []string        `yaml:"command"`
	Dir         string          `yaml:"dir"`
	Timeout     time.Duration   `yaml:"timeout"`
	Debounce    debounce.Config `yaml:"debounce"`
	MetricsAddr string          `yaml:"metrics_addr"`
	JSON        bool            `yaml:"json"`
	FlushOnExit bool            `yaml:"flush_on_exit"`
}

// NewConfig returns a Config holding the defaults that Decode and Read only
// override for fields present in the input.
func NewConfig() *Config {
	return &Config{
		Debounce: debounce.Config{Wait: defaultWait},
	}
}

// Read reads Config from an io.Reader strictly, returning any errors caused by
// invalid/missing values, required fields or extra fields.
func (c *Config) Read(r io.Reader) error {
	if err := c.Decode(r); err != nil {
		return err
	}
	c.Clean()

	return c.Validate()
}

// Decode decodes YAML from r into c, rejecting unknown fields. Unlike Read it
// neither fills in defaults nor validates.
func (c *Config) Decode(r io.Reader) error {
	d := yaml.NewDecoder(r)
	d.SetStrict(true)
	if err := d.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "error decoding yaml")
	}

	return nil
}

// Clean fills in defaults derived from other fields. A zero debounce wait is
// kept; see NewConfig.
func (c *Config) Clean() {
	if len(c.Paths) == 0 {
		c.Paths = []string{"."}
	}
	if c.Debounce.Name == "" && len(c.Command) > 0 {
		c.Debounce.Name = c.Command[0]
	}
}

// Validate returns an error if the configuration cannot be run.
func (c *Config) Validate() error {
	if len(c.Command) == 0 || c.Command[0] == "" {
		return errors.New("command is required")
	}
	if c.Timeout < 0 {
		return errors.Errorf("negative timeout %s", c.Timeout)
	}
	if _, err := NewFilter(c.Include, c.Exclude); err != nil {
		return err
	}
	if err := c.Debounce.Validate(); err != nil {
		return errors.Wrap(err, "error validating debounce")
	}

	return nil
}
