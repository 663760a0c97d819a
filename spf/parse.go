package spf

import (
	"fmt"
	"strings"
)

const versionPrefix = "v=spf1"

// TermKind identifies the mechanism or modifier a Term was parsed from.
type TermKind int

const (
	// TermOther is any term this package does not evaluate
	// (ptr, exists, exp=, unknown modifiers, terms with empty values).
	TermOther TermKind = iota
	TermIP4
	TermIP6
	TermA
	TermMX
	TermInclude
	TermRedirect
	TermAll
)

var termKindNames = [...]string{
	TermOther:    "other",
	TermIP4:      "ip4",
	TermIP6:      "ip6",
	TermA:        "a",
	TermMX:       "mx",
	TermInclude:  "include",
	TermRedirect: "redirect",
	TermAll:      "all",
}

func (k TermKind) String() string {
	if int(k) < len(termKindNames) {
		return termKindNames[k]
	}
	return fmt.Sprintf("TermKind(%d)", int(k))
}

// Qualifier is the prefix of a mechanism. It is recorded on every Term but
// only the "+all" form influences evaluation, through Record.AllowAll.
type Qualifier byte

const (
	QualifierPass     Qualifier = '+'
	QualifierFail     Qualifier = '-'
	QualifierSoftfail Qualifier = '~'
	QualifierNeutral  Qualifier = '?'
)

// Term is one whitespace-separated element of a policy body.
type Term struct {
	Kind      TermKind
	Qualifier Qualifier

	// Explicit is true if the qualifier was written out.
	Explicit bool

	// Value is the text after "ip4:", "a:", "include:", "redirect=" and so
	// on, stored verbatim. For a terms a trailing "/cidr" is removed.
	Value string

	// Raw is the term as it appeared in the record.
	Raw string
}

// Record is the structured form of one policy string.
//
// The lists keep the textual order of the terms they were taken from.
// Targets holds every redirect target followed by every include target;
// both kinds are walked the same way.
type Record struct {
	Raw   string
	Terms []Term

	IP4     []string
	IP6     []string
	Domains []string
	Targets []string

	// AllowAll is set when the record allows everything ("+all").
	AllowAll bool

	// HasMX is set when the record refers to MX hosts.
	HasMX bool
}

// ParseOptions changes how the record-level flags are computed.
type ParseOptions struct {
	// ScopedFlags derives AllowAll and HasMX from parsed terms. By default
	// they are plain substring checks over the whole raw string: "+all"
	// anywhere sets AllowAll and "mx" in any letter case sets HasMX, so a
	// target such as "include:mx.example.net" also sets HasMX.
	ScopedFlags bool
}

// Parse parses a policy string with default options.
func Parse(raw string) (*Record, error) {
	return ParseWithOptions(raw, ParseOptions{})
}

// ParseWithOptions parses a policy string.
//
// The "v=spf1" prefix may appear anywhere in raw; everything after it is the
// body. A string without the prefix, or with nothing after it, is rejected
// with ErrNotAPolicyRecord. Parsing never performs I/O and the same input
// always produces the same Record.
func ParseWithOptions(raw string, opts ParseOptions) (*Record, error) {
	i := strings.Index(raw, versionPrefix)
	if i < 0 {
		return nil, fmt.Errorf("%w: missing %q", ErrNotAPolicyRecord, versionPrefix)
	}
	body := raw[i+len(versionPrefix):]
	if body == "" {
		return nil, fmt.Errorf("%w: nothing after %q", ErrNotAPolicyRecord, versionPrefix)
	}

	r := &Record{Raw: raw}
	var redirects, includes []string

	for _, tok := range strings.Fields(body) {
		t := parseTerm(tok)
		r.Terms = append(r.Terms, t)

		switch t.Kind {
		case TermIP4:
			r.IP4 = append(r.IP4, t.Value)
		case TermIP6:
			r.IP6 = append(r.IP6, t.Value)
		case TermA:
			if t.Value != "" {
				r.Domains = append(r.Domains, t.Value)
			}
		case TermRedirect:
			redirects = append(redirects, t.Value)
		case TermInclude:
			includes = append(includes, t.Value)
		}
	}

	r.Targets = append(redirects, includes...)

	if opts.ScopedFlags {
		for _, t := range r.Terms {
			switch t.Kind {
			case TermAll:
				if t.Qualifier == QualifierPass {
					r.AllowAll = true
				}
			case TermMX:
				r.HasMX = true
			}
		}
	} else {
		r.AllowAll = strings.Contains(raw, "+all")
		r.HasMX = strings.Contains(strings.ToLower(raw), "mx")
	}

	return r, nil
}

// parseTerm classifies a single token. Mechanism names are matched without
// regard to case; values are kept as written.
func parseTerm(tok string) Term {
	t := Term{Qualifier: QualifierPass, Raw: tok}

	switch Qualifier(tok[0]) {
	case QualifierPass, QualifierFail, QualifierSoftfail, QualifierNeutral:
		t.Qualifier = Qualifier(tok[0])
		t.Explicit = true
		tok = tok[1:]
	}
	lower := strings.ToLower(tok)

	valueAfter := func(prefix string) (string, bool) {
		if !strings.HasPrefix(lower, prefix) {
			return "", false
		}
		return tok[len(prefix):], true
	}

	if v, ok := valueAfter("ip4:"); ok {
		t.Kind, t.Value = TermIP4, v
	} else if v, ok := valueAfter("ip6:"); ok {
		t.Kind, t.Value = TermIP6, v
	} else if v, ok := valueAfter("a:"); ok {
		v, _, _ = strings.Cut(v, "/")
		t.Kind, t.Value = TermA, v
	} else if lower == "a" || strings.HasPrefix(lower, "a/") {
		t.Kind = TermA
	} else if v, ok := valueAfter("mx:"); ok {
		v, _, _ = strings.Cut(v, "/")
		t.Kind, t.Value = TermMX, v
	} else if lower == "mx" || strings.HasPrefix(lower, "mx/") {
		t.Kind = TermMX
	} else if v, ok := valueAfter("include:"); ok {
		t.Kind, t.Value = TermInclude, v
	} else if v, ok := valueAfter("redirect="); ok {
		t.Kind, t.Value = TermRedirect, v
	} else if lower == "all" {
		t.Kind = TermAll
	}

	// A value-carrying mechanism with nothing after the separator is not usable.
	switch t.Kind {
	case TermIP4, TermIP6, TermInclude, TermRedirect:
		if t.Value == "" {
			t.Kind = TermOther
		}
	}

	return t
}
