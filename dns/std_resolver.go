package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Backend is the subset of *net.Resolver used by StdResolver.
// github.com/foxcpp/go-mockdns's Resolver also satisfies it.
type Backend interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// StdResolver implements Resolver on top of the standard library resolver.
// It cannot report DNSSEC status; Authentic is always false.
type StdResolver struct {
	resolver Backend
}

// NewStdResolver creates a resolver using net.DefaultResolver.
func NewStdResolver() *StdResolver {
	return &StdResolver{
		resolver: net.DefaultResolver,
	}
}

// NewStdResolverWithDialer creates a resolver that sends queries through dial.
// This allows custom DNS servers while keeping the stdlib implementation.
func NewStdResolverWithDialer(dial func(ctx context.Context, network, address string) (net.Conn, error)) *StdResolver {
	return &StdResolver{
		resolver: &net.Resolver{
			PreferGo: true,
			Dial:     dial,
		},
	}
}

// NewStdResolverWithBackend creates a resolver that delegates to b.
func NewStdResolverWithBackend(b Backend) *StdResolver {
	return &StdResolver{resolver: b}
}

// LookupTXT retrieves TXT records using the backend.
func (r *StdResolver) LookupTXT(ctx context.Context, name string) (Result[string], error) {
	qname, _ := ToASCII(FQDN(name))

	records, err := r.resolver.LookupTXT(ctx, qname)
	if err != nil {
		return Result[string]{}, convertError(err)
	}
	if len(records) == 0 {
		return Result[string]{}, ErrDNSNotFound
	}

	return Result[string]{Records: records}, nil
}

// LookupMX retrieves MX records using the backend.
func (r *StdResolver) LookupMX(ctx context.Context, name string) (Result[*net.MX], error) {
	qname, _ := ToASCII(FQDN(name))

	records, err := r.resolver.LookupMX(ctx, qname)
	if err != nil {
		return Result[*net.MX]{}, convertError(err)
	}
	if len(records) == 0 {
		return Result[*net.MX]{}, ErrDNSNotFound
	}

	return Result[*net.MX]{Records: records}, nil
}

// convertError converts standard library DNS errors to package errors.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return ErrDNSNotFound
		}
		if dnsErr.IsTimeout {
			return fmt.Errorf("%w: %w", ErrDNSTimeout, err)
		}
		if dnsErr.IsTemporary {
			return fmt.Errorf("%w: %w", ErrDNSServFail, err)
		}
	}

	return fmt.Errorf("dns lookup failed: %w", err)
}
