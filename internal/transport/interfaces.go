package transport

import (
	"net"
	"net/netip"
	"sort"
)

// DefaultInterfaceFilter accepts interfaces that are up and multicast
// capable, excluding loopback.
func DefaultInterfaceFilter(iface net.Interface) bool {
	return iface.Flags&net.FlagUp != 0 &&
		iface.Flags&net.FlagMulticast != 0 &&
		iface.Flags&net.FlagLoopback == 0
}

// selectInterfaces applies the configured interface policy.
func (c *config) selectInterfaces() ([]net.Interface, error) {
	if len(c.interfaces) > 0 {
		return c.interfaces, nil
	}

	all, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	filter := c.interfaceFilter
	if filter == nil {
		filter = func(iface net.Interface) bool {
			if c.loopback && iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback != 0 {
				return true
			}
			return DefaultInterfaceFilter(iface)
		}
	}

	var selected []net.Interface
	for _, iface := range all {
		if filter(iface) {
			selected = append(selected, iface)
		}
	}
	return selected, nil
}

// adapterFor describes iface, reporting false when it has no usable
// address.
func adapterFor(iface net.Interface) (Adapter, bool) {
	addrs, err := iface.Addrs()
	if err != nil {
		return Adapter{}, false
	}

	adapter := Adapter{Index: iface.Index, Name: iface.Name}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip, ok := netip.AddrFromSlice(ipnet.IP)
		if !ok {
			continue
		}
		adapter.Addresses = append(adapter.Addresses, ip.Unmap())
	}

	// IPv4 first, keeping the OS order within each family.
	sort.SliceStable(adapter.Addresses, func(i, j int) bool {
		return adapter.Addresses[i].Is4() && !adapter.Addresses[j].Is4()
	})
	return adapter, len(adapter.Addresses) > 0
}
