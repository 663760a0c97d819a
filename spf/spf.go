package spf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Evaluation defaults.
const (
	// DefaultMaxHops bounds the number of policy fetches per evaluation.
	DefaultMaxHops = 10

	// DefaultTimeout bounds the duration of one evaluation.
	DefaultTimeout = 20 * time.Second
)

// Verdict is the outcome of a successful evaluation.
type Verdict string

const (
	// VerdictPass means the client address is authorized for the sender domain.
	VerdictPass Verdict = "pass"

	// VerdictFail means no term of the policy chain authorized the client.
	VerdictFail Verdict = "fail"

	// VerdictSoftfail means no term authorized the client but the last
	// record carried "+all".
	VerdictSoftfail Verdict = "softfail"
)

// Query holds the inputs of one evaluation.
type Query struct {
	// ClientIP is the address of the connecting server. IPv4-mapped IPv6
	// addresses are checked as IPv4 and zones are ignored.
	ClientIP netip.Addr

	// Hostname is the name the client presented in HELO/EHLO.
	Hostname string

	// Sender is the envelope sender domain. A full address is accepted and
	// reduced to its domain.
	Sender string
}

// Config configures a Checker.
type Config struct {
	// Resolver performs the DNS lookups. Required.
	Resolver Resolver

	// MaxHops is the maximum number of policy fetches per evaluation.
	// Default is DefaultMaxHops.
	MaxHops int

	// Timeout bounds each evaluation. Default is DefaultTimeout; a negative
	// value disables the bound so only the caller's context applies.
	Timeout time.Duration

	// ScopedFlags derives the "+all" and MX flags from parsed terms rather
	// than from substrings of the raw record. See ParseOptions.
	ScopedFlags bool

	// Logger for evaluation events. Default is slog.Default().
	Logger *slog.Logger

	// Metrics, if set, receives one observation per evaluation.
	Metrics *Metrics
}

// Checker evaluates sender policies. Its configuration is fixed at
// construction and it is safe for concurrent use.
type Checker struct {
	resolver  Resolver
	maxHops   int
	timeout   time.Duration
	parseOpts ParseOptions
	logger    *slog.Logger
	metrics   *Metrics
}

// NewChecker creates a Checker from config.
func NewChecker(config Config) (*Checker, error) {
	if config.Resolver == nil {
		return nil, fmt.Errorf("%w: resolver is required", ErrConfigInit)
	}
	if config.MaxHops < 0 {
		return nil, fmt.Errorf("%w: negative hop limit %d", ErrConfigInit, config.MaxHops)
	}
	if config.MaxHops == 0 {
		config.MaxHops = DefaultMaxHops
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Checker{
		resolver:  config.Resolver,
		maxHops:   config.MaxHops,
		timeout:   config.Timeout,
		parseOpts: ParseOptions{ScopedFlags: config.ScopedFlags},
		logger:    config.Logger,
		metrics:   config.Metrics,
	}, nil
}

// Outcome describes a finished evaluation. Exactly one of Verdict and Err
// is set.
type Outcome struct {
	// ID identifies the evaluation in logs.
	ID string

	Verdict Verdict
	Err     error

	// ErrorKind is KindOf(Err).
	ErrorKind ErrorKind

	// Problem is the text of Err. It survives encoding, Err does not.
	Problem string

	// Domain is the last domain whose policy was fetched.
	Domain string

	// Match is the term that decided the verdict: "ip4:<value>",
	// "ip6:<value>", "a:<host>", "mx", "+all" or "default".
	Match string

	// Hops is the number of policy fetches performed.
	Hops int
}

// Check evaluates q and returns the verdict, or an error if the evaluation
// could not be completed.
func (c *Checker) Check(ctx context.Context, q Query) (Verdict, error) {
	o := c.CheckOutcome(ctx, q)
	return o.Verdict, o.Err
}

// CheckOutcome is like Check but returns details of the evaluation.
func (c *Checker) CheckOutcome(ctx context.Context, q Query) Outcome {
	st := newEvalState(q)

	log := c.logger.With(
		slog.String("eval_id", st.id.String()),
		slog.String("sender", st.sender),
		slog.String("client_ip", st.client.String()),
	)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	verdict, err := c.walk(ctx, st, log)

	o := Outcome{
		ID:      st.id.String(),
		Verdict: verdict,
		Domain:  st.domain,
		Match:   st.match,
		Hops:    st.hops,
	}
	if err != nil {
		o.Verdict = ""
		o.Match = ""
		o.Err = err
		o.ErrorKind = KindOf(err)
		o.Problem = err.Error()
		log.Warn("spf evaluation aborted",
			slog.String("kind", string(o.ErrorKind)),
			slog.Int("hops", o.Hops),
			slog.Any("error", err))
	} else {
		log.Info("spf verdict",
			slog.String("verdict", string(o.Verdict)),
			slog.String("domain", o.Domain),
			slog.String("match", o.Match),
			slog.Int("hops", o.Hops))
	}

	c.metrics.observe(o)
	return o
}

// evalState is the mutable state of one evaluation.
type evalState struct {
	id       ulid.ULID
	client   netip.Addr
	hostname string
	sender   string

	// mxHosts are the MX hosts of the sender domain, fetched once.
	mxHosts []string

	// pending holds chain targets not yet visited.
	pending queue[string]

	hops   int
	domain string
	match  string
}

func newEvalState(q Query) *evalState {
	sender := q.Sender
	if i := strings.LastIndexByte(sender, '@'); i >= 0 {
		sender = sender[i+1:]
	}
	sender = strings.TrimSuffix(sender, ".")

	return &evalState{
		id:       ulid.Make(),
		client:   q.ClientIP.Unmap().WithZone(""),
		hostname: q.Hostname,
		sender:   sender,
	}
}

// walk follows the policy chain of the sender domain until a record decides.
func (c *Checker) walk(ctx context.Context, st *evalState, log *slog.Logger) (Verdict, error) {
	if !st.client.IsValid() {
		return "", fmt.Errorf("%w: client address is not set", ErrInvalidQuery)
	}
	if st.sender == "" {
		return "", fmt.Errorf("%w: sender domain is empty", ErrInvalidQuery)
	}

	mxHosts, err := c.resolver.LookupMX(ctx, st.sender)
	if err != nil {
		return "", lookupError(ctx, ErrMxLookup, st.sender, err)
	}
	st.mxHosts = mxHosts

	current := st.sender
	for {
		if next, ok := st.pending.Pop(); ok {
			current = next
		}
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: before %s: %w", ErrTimeout, current, err)
		}
		if st.hops >= c.maxHops {
			return "", fmt.Errorf("%w: %d policy fetches, next was %s", ErrLoopDetected, st.hops, current)
		}
		st.hops++
		st.domain = current

		log.Debug("spf fetching policy",
			slog.String("domain", current),
			slog.Int("hop", st.hops),
			slog.Int("pending", st.pending.Len()))

		txts, err := c.resolver.LookupTXT(ctx, current)
		if err != nil {
			return "", lookupError(ctx, ErrTxtLookup, current, err)
		}

		candidates := candidateRecords(txts)
		if len(candidates) == 0 && st.pending.Len() == 0 {
			return "", fmt.Errorf("%w: %s", ErrNoPolicy, current)
		}

		for _, txt := range candidates {
			record, err := ParseWithOptions(txt, c.parseOpts)
			if err != nil {
				return "", fmt.Errorf("%w: %s: %w", ErrParse, current, err)
			}
			if verdict, done := st.evaluate(record); done {
				return verdict, nil
			}
		}
	}
}

// evaluate tests one record. It returns done when the record decides the
// evaluation; otherwise the record's targets have been queued.
func (st *evalState) evaluate(r *Record) (Verdict, bool) {
	if st.client.Is4() {
		for _, t := range r.IP4 {
			if MatchIP4(t, st.client) {
				st.match = "ip4:" + t
				return VerdictPass, true
			}
		}
	}
	if st.client.Is6() {
		for _, t := range r.IP6 {
			if MatchIP6(t, st.client) {
				st.match = "ip6:" + t
				return VerdictPass, true
			}
		}
	}

	if slices.Contains(r.Domains, st.hostname) {
		st.match = "a:" + st.hostname
		return VerdictPass, true
	}

	if r.HasMX && slices.Contains(st.mxHosts, st.hostname) {
		st.match = "mx"
		return VerdictPass, true
	}

	if len(r.Targets) == 0 {
		if st.pending.Len() > 0 {
			return "", false
		}
		if r.AllowAll {
			st.match = "+all"
			return VerdictSoftfail, true
		}
		st.match = "default"
		return VerdictFail, true
	}

	for _, t := range r.Targets {
		st.pending.Push(t)
	}
	return "", false
}

// candidateRecords keeps the TXT strings that may hold a policy. The check
// is deliberately loose; Parse decides whether a candidate is valid.
func candidateRecords(txts []string) []string {
	var out []string
	for _, txt := range txts {
		if strings.Contains(txt, "spf") {
			out = append(out, txt)
		}
	}
	return out
}

// lookupError wraps a resolver error with kind, or with ErrTimeout if the
// evaluation context ended.
func lookupError(ctx context.Context, kind error, domain string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %w", ErrTimeout, domain, err)
	}
	return fmt.Errorf("%w: %s: %w", kind, domain, err)
}
