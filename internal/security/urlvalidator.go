// Package security validates image URLs before the downloader touches
// them. Generated assets are served from the LayoutCraft CDN; anything
// else is treated as suspect, and URLs that resolve to private address
// space are refused outright.
package security

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

var (
	cdnHosts = []string{
		"cdn.layoutcraft.io",
		"assets.layoutcraft.io",
		"layoutcraft-renders.s3.amazonaws.com",
	}

	ErrPrivateIP     = errors.New("URL resolves to a private IP address")
	ErrUntrustedHost = errors.New("URL host is not a LayoutCraft asset host")
	ErrInvalidScheme = errors.New("only HTTPS URLs are allowed")
)

// ValidateImageURL checks an image URL before download. In strict mode
// only the known CDN hosts pass; otherwise any public HTTPS host does.
func ValidateImageURL(rawURL string, strict bool) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.Join(errors.New("invalid URL"), err)
	}

	if parsed.Scheme != "https" {
		return ErrInvalidScheme
	}

	host := parsed.Hostname()
	if strict && !isCDNHost(host) {
		return ErrUntrustedHost
	}

	return checkHostIP(host)
}

func isCDNHost(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range cdnHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func checkHostIP(host string) error {
	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return ErrPrivateIP
		}
		return nil
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		// Unresolvable now may still resolve at download time; let the
		// download itself fail instead.
		return nil
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return ErrPrivateIP
		}
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsPrivate() || ip.IsUnspecified() {
		return true
	}

	if ip4 := ip.To4(); ip4 != nil {
		switch {
		case ip4[0] == 0:
			return true
		case ip4[0] == 100 && ip4[1] >= 64 && ip4[1] <= 127: // CGNAT
			return true
		case ip4[0] == 192 && ip4[1] == 0 && (ip4[2] == 0 || ip4[2] == 2):
			return true
		case ip4[0] == 198 && ip4[1] == 51 && ip4[2] == 100: // TEST-NET-2
			return true
		case ip4[0] == 203 && ip4[1] == 0 && ip4[2] == 113: // TEST-NET-3
			return true
		case ip4[0] >= 224: // multicast and reserved
			return true
		}
	}
	return false
}
