package spf

import (
	"fmt"
	"net"
	"net/netip"
)

// ClientAddr extracts the client address for a Query from a connection's
// remote address. IPv4-mapped addresses are unmapped and zones dropped.
func ClientAddr(addr net.Addr) (netip.Addr, error) {
	if addr == nil {
		return netip.Addr{}, fmt.Errorf("%w: address is nil", ErrInvalidQuery)
	}

	var ip netip.Addr
	switch a := addr.(type) {
	case *net.TCPAddr:
		ip, _ = netip.AddrFromSlice(a.IP)
	case *net.UDPAddr:
		ip, _ = netip.AddrFromSlice(a.IP)
	case *net.IPAddr:
		ip, _ = netip.AddrFromSlice(a.IP)
	default:
		// Fall back to the text form, with or without a port.
		if ap, err := netip.ParseAddrPort(addr.String()); err == nil {
			ip = ap.Addr()
		} else {
			ip, _ = netip.ParseAddr(addr.String())
		}
	}
	if !ip.IsValid() {
		return netip.Addr{}, fmt.Errorf("%w: no IP address in %q", ErrInvalidQuery, addr.String())
	}
	return ip.Unmap().WithZone(""), nil
}
