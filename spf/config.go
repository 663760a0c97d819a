package spf

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig is the environment form of the checker configuration.
// With prefix "SPF" the variables are SPF_NAMESERVERS, SPF_DNSSEC,
// SPF_QUERY_TIMEOUT, SPF_RETRIES, SPF_MAX_HOPS, SPF_TIMEOUT and
// SPF_SCOPED_FLAGS.
type EnvConfig struct {
	Nameservers  []string      `desc:"DNS servers as host:port, empty uses /etc/resolv.conf"`
	DNSSEC       bool          `default:"false" desc:"Request DNSSEC validation"`
	QueryTimeout time.Duration `split_words:"true" default:"5s" desc:"Timeout of a single DNS query"`
	Retries      int           `default:"2" desc:"Extra passes over the nameserver list"`
	MaxHops      int           `split_words:"true" default:"10" desc:"Maximum policy fetches per evaluation"`
	Timeout      time.Duration `default:"20s" desc:"Timeout of one evaluation"`
	ScopedFlags  bool          `split_words:"true" default:"false" desc:"Derive +all and mx flags from parsed terms"`
}

// LoadConfig reads an EnvConfig from environment variables named
// PREFIX_FIELD.
func LoadConfig(prefix string) (*EnvConfig, error) {
	c := &EnvConfig{}
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigInit, err)
	}
	return c, nil
}

// Checker builds a Checker that queries the configured nameservers.
// logger and metrics may be nil.
func (c *EnvConfig) Checker(logger *slog.Logger, metrics *Metrics) (*Checker, error) {
	resolver, err := NewResolver(ResolverConfig{
		Nameservers: c.Nameservers,
		DNSSEC:      c.DNSSEC,
		Timeout:     c.QueryTimeout,
		Retries:     c.Retries,
	})
	if err != nil {
		return nil, err
	}

	return NewChecker(Config{
		Resolver:    resolver,
		MaxHops:     c.MaxHops,
		Timeout:     c.Timeout,
		ScopedFlags: c.ScopedFlags,
		Logger:      logger,
		Metrics:     metrics,
	})
}
