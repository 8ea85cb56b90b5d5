// Package fetchguard fetches owner-supplied URLs (calendar feeds)
// without letting the server be steered at internal infrastructure.
// Every candidate URL — the original and each redirect hop — passes
// literal-hostname checks, then DNS resolution, then re-validation of
// the resolved addresses before any connect. This is a security
// boundary: anything ambiguous, including DNS failure, is blocked.
package fetchguard

import (
	"context"
	"fmt"
	"net/netip"
	"net/url"
	"strings"

	"github.com/hostling/guestgate/internal/secerr"
)

// Failure modes of a guarded fetch.
var (
	ErrBlockedPrivateAddress = secerr.New(secerr.SecurityBlocked, "blocked_private_address")
	ErrBlockedProtocol       = secerr.New(secerr.SecurityBlocked, "blocked_protocol")
	ErrTooManyRedirects      = secerr.New(secerr.SecurityBlocked, "too_many_redirects")
	ErrTimeout               = secerr.New(secerr.InfrastructureFailure, "fetch_timeout")
	ErrSizeExceeded          = secerr.New(secerr.SecurityBlocked, "size_exceeded")
)

// Resolver looks up a hostname. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// blockedHostnames are literal names that never reach DNS.
var blockedHostnames = map[string]bool{
	"localhost":                true,
	"metadata.google.internal": true,
}

// blockedHostSuffixes cover site-local naming conventions.
var blockedHostSuffixes = []string{".local", ".internal"}

// validateURL parses and statically validates one candidate URL.
// It does not touch the network.
func validateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, secerr.Wrap(secerr.ValidationRejected, "invalid_url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scheme %q: %w", u.Scheme, ErrBlockedProtocol)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, secerr.New(secerr.ValidationRejected, "invalid_url")
	}
	if blockedHostnames[host] {
		return nil, fmt.Errorf("hostname %q: %w", host, ErrBlockedPrivateAddress)
	}
	for _, suffix := range blockedHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return nil, fmt.Errorf("hostname %q: %w", host, ErrBlockedPrivateAddress)
		}
	}

	// IP literals are judged directly; bracketed IPv6 forms arrive here
	// already unbracketed via Hostname().
	if addr, err := netip.ParseAddr(host); err == nil {
		if isBlockedAddr(addr) {
			return nil, fmt.Errorf("address %s: %w", addr, ErrBlockedPrivateAddress)
		}
	}

	return u, nil
}

// isBlockedAddr rejects loopback, RFC1918, link-local (including the
// cloud metadata address), unspecified, IPv6 unique-local, and any
// IPv4-mapped IPv6 form regardless of the embedded address.
func isBlockedAddr(addr netip.Addr) bool {
	if addr.Is4In6() {
		return true
	}
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified()
}

// resolveAndValidate re-validates the DNS answer for a hostname that
// passed literal checks. A name that resolves to a private address is a
// rebinding attempt and is blocked; so is a name that fails to resolve.
// Fail closed — this differs from the rate limiter's fail-open policy
// on purpose.
func resolveAndValidate(ctx context.Context, resolver Resolver, u *url.URL) error {
	host := strings.ToLower(u.Hostname())
	if _, err := netip.ParseAddr(host); err == nil {
		// Literal already validated; nothing to resolve.
		return nil
	}

	addrs, err := resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", host, ErrBlockedPrivateAddress)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("no addresses for %q: %w", host, ErrBlockedPrivateAddress)
	}
	for _, addr := range addrs {
		if isBlockedAddr(addr) {
			return fmt.Errorf("%q resolves to %s: %w", host, addr, ErrBlockedPrivateAddress)
		}
	}
	return nil
}
