package dns

import (
	"context"
	"net"
	"slices"
	"strings"
	"sync"
)

// MockResolver is a Resolver used for testing.
// Set DNS records in the fields, which map FQDNs (with trailing dot) to values.
type MockResolver struct {
	TXT map[string][]string
	MX  map[string][]*net.MX

	// Fail contains records that will return a temporary error (SERVFAIL).
	// Format: "type name", e.g. "txt example.com." where type is lowercase.
	Fail []string

	// AllAuthentic sets Authentic on every answer.
	AllAuthentic bool

	// Queries, if non-nil, records every query in "type name" form.
	Queries *QueryLog
}

var _ Resolver = MockResolver{}

// QueryLog collects the queries seen by a MockResolver. It is safe for
// concurrent use.
type QueryLog struct {
	mu      sync.Mutex
	queries []string
}

// Add records one query.
func (l *QueryLog) Add(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries = append(l.queries, q)
}

// All returns a copy of the recorded queries in order.
func (l *QueryLog) All() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.queries)
}

// mockReq represents a mock DNS request.
type mockReq struct {
	Type string // "txt" or "mx"
	Name string // FQDN with trailing dot
}

func (mr mockReq) String() string {
	return mr.Type + " " + mr.Name
}

// check records the query and reports configured failures.
func (r MockResolver) check(ctx context.Context, mr mockReq) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Queries != nil {
		r.Queries.Add(mr.String())
	}
	if slices.Contains(r.Fail, mr.String()) {
		return ErrDNSServFail
	}
	return nil
}

// LookupTXT returns TXT records for the given domain.
func (r MockResolver) LookupTXT(ctx context.Context, name string) (Result[string], error) {
	mr := mockReq{"txt", strings.ToLower(FQDN(name))}
	result := Result[string]{Authentic: r.AllAuthentic}

	if err := r.check(ctx, mr); err != nil {
		return result, err
	}

	records, ok := r.TXT[mr.Name]
	if !ok || len(records) == 0 {
		return result, ErrDNSNotFound
	}

	result.Records = records
	return result, nil
}

// LookupMX returns MX records for the given domain.
func (r MockResolver) LookupMX(ctx context.Context, name string) (Result[*net.MX], error) {
	mr := mockReq{"mx", strings.ToLower(FQDN(name))}
	result := Result[*net.MX]{Authentic: r.AllAuthentic}

	if err := r.check(ctx, mr); err != nil {
		return result, err
	}

	records, ok := r.MX[mr.Name]
	if !ok || len(records) == 0 {
		return result, ErrDNSNotFound
	}

	result.Records = records
	return result, nil
}
