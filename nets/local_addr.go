package nets

import (
	"net"
	"net/netip"
)

// IsLocalAddr reports whether addr only accepts connections from this host or
// a private network.
type IsLocalAddr func(addr string) (bool, error)

func (Module) IsLocalAddr() IsLocalAddr {
	return func(addr string) (bool, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			// no port
			host = addr
		}
		if host == "" {
			// all interfaces
			return false, nil
		}

		if ip, err := netip.ParseAddr(host); err == nil {
			return isLocalIP(ip.AsSlice()), nil
		}

		ips, err := net.LookupIP(host)
		if err != nil {
			return false, nil
		}
		for _, ip := range ips {
			if !isLocalIP(ip) {
				return false, nil
			}
		}
		return len(ips) > 0, nil
	}
}

func isLocalIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate()
}
