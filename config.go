package debounce

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config is a declarative Debouncer configuration, suitable for embedding in
// YAML configuration files:
//
//	name: reload
//	wait: 250ms
//	max_wait: 2s
//	leading: true
//
// Unset fields take the defaults of NewDebouncer, or of NewThrottler when
// Throttle is true.
type Config struct {
	Name     string         `yaml:"name"`
	Wait     time.Duration  `yaml:"wait"`
	MaxWait  *time.Duration `yaml:"max_wait"`
	Leading  *bool          `yaml:"leading"`
	Trailing *bool          `yaml:"trailing"`
	Throttle bool           `yaml:"throttle"`
}

// Read reads Config from an io.Reader strictly, returning any errors caused by
// invalid values or unknown fields. Empty input yields the zero Config.
func (c *Config) Read(r io.Reader) error {
	d := yaml.NewDecoder(r)
	d.SetStrict(true)
	if err := d.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "error decoding yaml")
	}

	return c.Validate()
}

// Validate returns an error wrapping ErrInvalidConfig if the durations are
// negative, or if max wait is smaller than wait.
func (c *Config) Validate() error {
	if c.Wait < 0 {
		return invalidConfig("negative wait %s", c.Wait)
	}

	if c.MaxWait != nil && !c.Throttle {
		if *c.MaxWait < 0 {
			return invalidConfig("negative max wait %s", *c.MaxWait)
		}
		if *c.MaxWait < c.Wait {
			return invalidConfig(
				"max wait %s is less than wait %s", *c.MaxWait, c.Wait,
			)
		}
	}

	return nil
}

// Options returns the options described by c. Wait and Throttle are not
// options; they are used by NewFromConfig.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Name != "" {
		opts = append(opts, WithName(c.Name))
	}
	if c.MaxWait != nil {
		opts = append(opts, WithMaxWait(*c.MaxWait))
	}
	if c.Leading != nil {
		opts = append(opts, WithLeading(*c.Leading))
	}
	if c.Trailing != nil {
		opts = append(opts, WithTrailing(*c.Trailing))
	}

	return opts
}

// NewFromConfig creates a Debouncer, or a throttling one if conf.Throttle is
// set, from conf. Options given in opts are applied after those from conf.
func NewFromConfig[A, R any](
	conf Config,
	fn func(A) (R, error),
	opts ...Option,
) (*Debouncer[A, R], error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	all := append(conf.Options(), opts...)
	if conf.Throttle {
		return NewThrottler(conf.Wait, fn, all...)
	}

	return NewDebouncer(conf.Wait, fn, all...)
}
