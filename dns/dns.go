// Package dns provides the DNS transports used by SPF evaluation.
//
// Two resolvers are provided: DNSResolver talks to nameservers directly using
// github.com/miekg/dns and can request DNSSEC validation, while StdResolver
// wraps a net.Resolver (or anything shaped like one). MockResolver serves
// records from maps and is meant for tests.
package dns

import (
	"context"
	"errors"
	"net"
	"strings"

	mdns "github.com/miekg/dns"
	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// DNS errors returned by all resolvers in this package.
var (
	ErrDNSNotFound = errors.New("dns: no such record")
	ErrDNSServFail = errors.New("dns: server failure")
	ErrDNSRefused  = errors.New("dns: query refused")
	ErrDNSTimeout  = errors.New("dns: query timed out")
	ErrDNSBogus    = errors.New("dns: DNSSEC validation failed")
)

// Result holds the records of a lookup together with the DNSSEC status
// of the answer.
type Result[T any] struct {
	Records []T

	// Authentic is true if the upstream resolver validated the answer.
	Authentic bool
}

// Resolver is implemented by every resolver in this package.
//
// Names may be given with or without the trailing dot.
type Resolver interface {
	LookupTXT(ctx context.Context, name string) (Result[string], error)
	LookupMX(ctx context.Context, name string) (Result[*net.MX], error)
}

// lookupProfile maps names the way IDNA lookup does, but allows the
// underscore labels used by SPF and DKIM ("_spf.example.com").
var lookupProfile = idna.New(idna.MapForLookup(), idna.StrictDomainName(false))

// IsNotFound reports whether err means the name or record type does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDNSNotFound)
}

// IsTimeout reports whether err is a query timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrDNSTimeout)
}

// IsServFail reports whether err is a SERVFAIL answer.
func IsServFail(err error) bool {
	return errors.Is(err, ErrDNSServFail)
}

// IsTemporary reports whether retrying the query later may succeed.
func IsTemporary(err error) bool {
	return IsTimeout(err) || IsServFail(err)
}

// FQDN returns name with a trailing dot.
func FQDN(name string) string {
	return mdns.Fqdn(name)
}

// ToASCII converts a domain to the lower-case A-label form used on the wire.
// The trailing dot, if any, is preserved.
//
// Names that are not valid IDNA are returned lower-cased together with the
// conversion error, so callers can still try the lookup.
func ToASCII(name string) (string, error) {
	abs := strings.HasSuffix(name, ".")
	trimmed := strings.TrimSuffix(name, ".")

	aName, err := lookupProfile.ToASCII(norm.NFC.String(trimmed))
	if err != nil {
		aName = strings.ToLower(trimmed)
	}
	if abs {
		aName += "."
	}
	return aName, err
}
