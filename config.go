package tally

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is a declarative description of a root scope, suitable for
// embedding in an application's YAML configuration.
type Config struct {
	// Prefix is the root scope's name prefix.
	Prefix string `yaml:"prefix" json:"prefix"`

	// Separator joins prefixes and metric names. Empty selects
	// DefaultSeparator.
	Separator string `yaml:"separator" json:"separator"`

	// Tags are the root scope's tags.
	Tags map[string]string `yaml:"tags" json:"tags"`

	// ReportInterval is the report loop period as a Go duration string,
	// e.g. "10s". Empty disables the loop.
	ReportInterval string `yaml:"report_interval" json:"report_interval"`
}

// ParseConfig unmarshals a YAML document into a Config.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse metrics config")
	}
	if _, err := cfg.reportInterval(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) reportInterval() (time.Duration, error) {
	if c.ReportInterval == "" {
		return 0, nil
	}
	interval, err := time.ParseDuration(c.ReportInterval)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid report_interval %q", c.ReportInterval)
	}
	return interval, nil
}

// NewRootScope constructs a root scope from the config. Additional options
// (reporters, default buckets, logger) are applied after those derived from
// the config and may override them.
func (c Config) NewRootScope(opts ...ScopeOption) (*BasicScope, error) {
	interval, err := c.reportInterval()
	if err != nil {
		return nil, err
	}

	separator := c.Separator
	if separator == "" {
		separator = DefaultSeparator
	}

	all := append([]ScopeOption{
		WithPrefix(c.Prefix),
		WithSeparator(separator),
		WithTags(c.Tags),
		WithReportInterval(interval),
	}, opts...)

	return NewRootScope(all...), nil
}
