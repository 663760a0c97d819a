package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// ResolverConfig contains configuration for the DNS resolver.
type ResolverConfig struct {
	// Nameservers is a list of DNS servers to query (e.g., "8.8.8.8:53").
	// If empty, system resolvers from /etc/resolv.conf are used,
	// falling back to public DNS (8.8.8.8, 1.1.1.1).
	Nameservers []string

	// DNSSEC sets the DO bit on queries. Authentic in Result reports
	// whether the upstream resolver validated the answer.
	DNSSEC bool

	// Timeout is the timeout for individual DNS queries. Default is 5 seconds.
	Timeout time.Duration

	// Retries is the number of extra passes over the nameserver list after a
	// failed query. Default is 2.
	Retries int
}

// Validate checks that all nameservers are host:port pairs.
func (c ResolverConfig) Validate() error {
	for _, s := range c.Nameservers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			return fmt.Errorf("dns: invalid nameserver %q: %w", s, err)
		}
	}
	if c.Timeout < 0 {
		return errors.New("dns: negative timeout")
	}
	if c.Retries < 0 {
		return errors.New("dns: negative retries")
	}
	return nil
}

// DNSResolver implements Resolver using github.com/miekg/dns.
type DNSResolver struct {
	config ResolverConfig
	client *mdns.Client
}

// NewResolver creates a new DNS resolver. Zero values in config are replaced
// by defaults.
func NewResolver(config ResolverConfig) *DNSResolver {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Retries == 0 {
		config.Retries = 2
	}
	if len(config.Nameservers) == 0 {
		config.Nameservers = resolvConfServers("/etc/resolv.conf")
	}

	return &DNSResolver{
		config: config,
		client: &mdns.Client{Timeout: config.Timeout},
	}
}

// fallbackServers are used when resolv.conf is missing or empty.
var fallbackServers = []string{"8.8.8.8:53", "1.1.1.1:53"}

func resolvConfServers(path string) []string {
	cc, err := mdns.ClientConfigFromFile(path)
	if err != nil || len(cc.Servers) == 0 {
		return fallbackServers
	}

	servers := make([]string, len(cc.Servers))
	for i, host := range cc.Servers {
		servers[i] = net.JoinHostPort(host, cc.Port)
	}
	return servers
}

// query sends one question to the configured nameservers in turn, making
// Retries extra passes over the list, and returns the first conclusive answer.
// NXDOMAIN is conclusive; SERVFAIL, REFUSED and transport errors are not.
func (r *DNSResolver) query(ctx context.Context, name string, qtype uint16) (*mdns.Msg, bool, error) {
	qname, _ := ToASCII(FQDN(name))

	msg := new(mdns.Msg)
	msg.SetQuestion(qname, qtype)
	msg.RecursionDesired = true
	if r.config.DNSSEC {
		msg.SetEdns0(4096, true)
	}

	lastErr := ErrDNSServFail
	for pass := 0; pass <= r.config.Retries; pass++ {
		for _, server := range r.config.Nameservers {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}

			resp, _, err := r.client.ExchangeContext(ctx, msg, server)
			if err != nil {
				if ctx.Err() != nil {
					return nil, false, ctx.Err()
				}
				lastErr = exchangeError(server, err)
				continue
			}

			ad := r.config.DNSSEC && resp.AuthenticatedData
			switch resp.Rcode {
			case mdns.RcodeSuccess:
				return resp, ad, nil
			case mdns.RcodeNameError:
				return nil, ad, ErrDNSNotFound
			}
			lastErr = r.rcodeError(resp.Rcode)
		}
	}
	return nil, false, lastErr
}

func exchangeError(server string, err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %s: %w", ErrDNSTimeout, server, err)
	}
	return fmt.Errorf("dns: query to %s failed: %w", server, err)
}

func (r *DNSResolver) rcodeError(rcode int) error {
	switch rcode {
	case mdns.RcodeServerFailure:
		// Validating resolvers answer SERVFAIL for bogus data.
		if r.config.DNSSEC {
			return ErrDNSBogus
		}
		return ErrDNSServFail
	case mdns.RcodeRefused:
		return ErrDNSRefused
	default:
		return fmt.Errorf("dns: unexpected rcode %s", mdns.RcodeToString[rcode])
	}
}

// lookup runs a query and converts the answer section with conv, which
// reports false for records of other types. An answer without usable
// records is ErrDNSNotFound.
func lookup[T any](ctx context.Context, r *DNSResolver, name string, qtype uint16, conv func(mdns.RR) (T, bool)) (Result[T], error) {
	resp, ad, err := r.query(ctx, name, qtype)
	res := Result[T]{Authentic: ad}
	if err != nil {
		return res, err
	}

	for _, rr := range resp.Answer {
		if v, ok := conv(rr); ok {
			res.Records = append(res.Records, v)
		}
	}
	if len(res.Records) == 0 {
		return res, ErrDNSNotFound
	}
	return res, nil
}

// LookupTXT retrieves TXT records for the given domain. The character-strings
// of one record are joined into a single value.
func (r *DNSResolver) LookupTXT(ctx context.Context, name string) (Result[string], error) {
	return lookup(ctx, r, name, mdns.TypeTXT, func(rr mdns.RR) (string, bool) {
		txt, ok := rr.(*mdns.TXT)
		if !ok {
			return "", false
		}
		return strings.Join(txt.Txt, ""), true
	})
}

// LookupMX retrieves MX records for the given domain in answer order.
func (r *DNSResolver) LookupMX(ctx context.Context, name string) (Result[*net.MX], error) {
	return lookup(ctx, r, name, mdns.TypeMX, func(rr mdns.RR) (*net.MX, bool) {
		mx, ok := rr.(*mdns.MX)
		if !ok {
			return nil, false
		}
		return &net.MX{Host: mx.Mx, Pref: mx.Preference}, true
	})
}

// Config returns the resolver's effective configuration.
func (r *DNSResolver) Config() ResolverConfig {
	return r.config
}
