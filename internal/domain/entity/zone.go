package entity

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/lite-lake/technisync/internal/domain"
)

// ZoneOwnership marks one server as the authority for a zone. When an
// owner is set, its records are the desired state every other server
// converges to.
type ZoneOwnership struct {
	Zone      string    `db:"zone"`
	Owner     string    `db:"owner"`
	CreatedAt time.Time `db:"created_at"`
}

const ipv6LoopbackReverseZone = "0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.ip6.arpa"

var internalZones = map[string]bool{
	"0.in-addr.arpa":   true,
	"127.in-addr.arpa": true,
	"255.in-addr.arpa": true,
	"localhost":        true,
}

func IsReverseZone(zone string) bool {
	return strings.HasSuffix(zone, ".in-addr.arpa") || strings.HasSuffix(zone, ".ip6.arpa")
}

// IsInternalZone reports whether a zone is one of the auto-created
// zones every Technitium server carries. These are never synchronized.
func IsInternalZone(zone string) bool {
	return internalZones[zone] || strings.HasSuffix(zone, ipv6LoopbackReverseZone)
}

// ReverseZoneFromNetwork derives the in-addr.arpa zone for an IPv4
// network given a DHCP scope's network address and dotted subnet mask.
// The full reverse pointer of the network address has its first label
// dropped, so 192.168.1.0/255.255.255.0 yields 1.168.192.in-addr.arpa.
func ReverseZoneFromNetwork(networkAddress, subnetMask string) (string, error) {
	ip := net.ParseIP(networkAddress)
	if ip == nil || ip.To4() == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidNetwork, networkAddress)
	}
	maskIP := net.ParseIP(subnetMask)
	if maskIP == nil || maskIP.To4() == nil {
		return "", fmt.Errorf("%w: bad subnet mask %s", domain.ErrInvalidNetwork, subnetMask)
	}

	network := ip.To4().Mask(net.IPMask(maskIP.To4()))
	labels := []string{
		fmt.Sprintf("%d", network[2]),
		fmt.Sprintf("%d", network[1]),
		fmt.Sprintf("%d", network[0]),
		"in-addr.arpa",
	}
	return strings.Join(labels, "."), nil
}
