package spf

import (
	"net/netip"
	"strconv"
	"strings"
)

// MatchIP4 reports whether client is covered by an ip4 term value.
//
// A value without "/" matches only when it equals the textual form of client.
// A value with a prefix length matches when client lies inside the range.
// Malformed values never match, including ranges with host bits set
// ("203.0.113.77/24").
func MatchIP4(term string, client netip.Addr) bool {
	return matchTerm(term, client, 32)
}

// MatchIP6 is MatchIP4 for ip6 term values.
func MatchIP6(term string, client netip.Addr) bool {
	return matchTerm(term, client, 128)
}

func matchTerm(term string, client netip.Addr, bits int) bool {
	addrPart, lenPart, ranged := strings.Cut(term, "/")
	if !ranged {
		return term == client.String()
	}
	if strings.Contains(lenPart, "/") {
		return false
	}

	addr, err := netip.ParseAddr(addrPart)
	if err != nil || addr.BitLen() != bits || addr.Zone() != "" {
		return false
	}
	ones, err := strconv.ParseUint(lenPart, 10, 8)
	if err != nil || int(ones) > bits {
		return false
	}

	prefix := netip.PrefixFrom(addr, int(ones))
	if !prefix.IsValid() || prefix != prefix.Masked() {
		return false
	}
	return prefix.Contains(client)
}
