package spf

import (
	"context"
	"fmt"
	"strings"

	"github.com/synqronlabs/spfcheck/dns"
)

// Resolver is the DNS capability needed to evaluate a policy chain.
//
// LookupTXT returns the TXT strings published at domain in answer order.
// LookupMX returns the MX host names of domain in answer order, without
// priorities and without the trailing dot. A domain without records yields
// an empty list and a nil error.
type Resolver interface {
	LookupTXT(ctx context.Context, domain string) ([]string, error)
	LookupMX(ctx context.Context, domain string) ([]string, error)
}

// ResolverConfig contains configuration for the DNS resolver.
// This is an alias to dns.ResolverConfig for convenience.
type ResolverConfig = dns.ResolverConfig

// NewResolver creates a resolver that queries nameservers directly.
func NewResolver(config ResolverConfig) (Resolver, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigInit, err)
	}
	return FromDNS(dns.NewResolver(config)), nil
}

// NewStdResolver creates a resolver backed by the standard library.
func NewStdResolver() Resolver {
	return FromDNS(dns.NewStdResolver())
}

// FromDNS adapts a dns package resolver to Resolver.
func FromDNS(r dns.Resolver) Resolver {
	return dnsAdapter{r: r}
}

type dnsAdapter struct {
	r dns.Resolver
}

func (a dnsAdapter) LookupTXT(ctx context.Context, domain string) ([]string, error) {
	result, err := a.r.LookupTXT(ctx, domain)
	if dns.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

func (a dnsAdapter) LookupMX(ctx context.Context, domain string) ([]string, error) {
	result, err := a.r.LookupMX(ctx, domain)
	if dns.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	hosts := make([]string, 0, len(result.Records))
	for _, mx := range result.Records {
		host := strings.TrimSuffix(mx.Host, ".")
		// Null MX (RFC 7505).
		if host == "" {
			continue
		}
		hosts = append(hosts, host)
	}
	return hosts, nil
}
