// Package spf decides whether a client address may send mail for a domain by
// walking the domain's Sender Policy Framework records.
//
// Evaluation starts at the sender domain, fetches its TXT records and tests
// every policy string in answer order. Within a record the ip4 terms are
// tried first, then ip6, then a:<host> terms against the HELO name, then the
// MX hosts of the sender domain when the record mentions mx. The first match
// passes. A record with redirect= or include: targets queues them and the
// walk continues with the oldest queued domain; redirect and include are
// treated alike. A record with no targets ends the walk when nothing is
// queued, with softfail if it carried "+all" and fail otherwise.
//
// Macros, ptr, exists and per-term qualifiers are not evaluated.
//
// Basic usage:
//
//	resolver, err := spf.NewResolver(spf.ResolverConfig{
//	    Nameservers: []string{"8.8.8.8:53"},
//	})
//	if err != nil {
//	    // Handle error
//	}
//
//	checker, err := spf.NewChecker(spf.Config{Resolver: resolver})
//	if err != nil {
//	    // Handle error
//	}
//
//	verdict, err := checker.Check(ctx, spf.Query{
//	    ClientIP: netip.MustParseAddr("192.0.2.1"),
//	    Hostname: "mail.example.com",
//	    Sender:   "example.com",
//	})
//	if err != nil {
//	    // DNS, parse or hop-limit failure; see KindOf
//	}
//
//	switch verdict {
//	case spf.VerdictPass:
//	    // Accept the message
//	case spf.VerdictFail:
//	    // Reject the message
//	case spf.VerdictSoftfail:
//	    // Mark as suspicious
//	}
//
// References:
//   - RFC 7208: Sender Policy Framework (SPF)
package spf
