package fetch

import (
	"context"
	"net"
	"net/url"
)

// IsSafeURL rejects URLs that resolve to private, loopback, link-local
// or unspecified addresses. Archival fetches follow links taken from
// third-party feeds, so they must not be allowed to reach internal
// infrastructure (SSRF).
func IsSafeURL(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil || len(addrs) == 0 {
		return false
	}
	for _, addr := range addrs {
		if !isPublicIP(addr.IP) {
			return false
		}
	}
	return true
}

func isPublicIP(ip net.IP) bool {
	return !(ip.IsPrivate() ||
		ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified())
}
