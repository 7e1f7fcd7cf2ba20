package security

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// maxRedirects caps redirect chains on outbound downloads.
const maxRedirects = 10

// Client builds an *http.Client that follows redirects up to the cap
// and re-validates every redirect target with the URL validator.
//
// The client carries no global timeout; per-download deadlines are
// applied through the request context so a single slow download does
// not inherit another caller's budget.
func (v *URL) Client() *http.Client {
	return &http.Client{
		Transport: v.transport(),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if err := v.Validate(req.URL.String()); err != nil {
				return fmt.Errorf("redirect to unsafe URL: %w", err)
			}
			return nil
		},
	}
}

// transport returns the transport backing Client. With private-host
// blocking enabled, the dialer validates every resolved IP before
// connecting, which closes the DNS-rebinding gap that a parse-time
// check alone leaves open.
func (v *URL) transport() *http.Transport {
	t := &http.Transport{
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if v.blockPrivate {
		t.DialContext = v.safeDialContext
	}
	return t
}

// safeDialContext validates resolved IPs before connecting.
func (v *URL) safeDialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
		port = ""
	}

	if ip := net.ParseIP(host); ip != nil {
		if err := v.checkIP(ip); err != nil {
			return nil, fmt.Errorf("SSRF blocked: %w", err)
		}
		return (&net.Dialer{}).DialContext(ctx, network, addr)
	}

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
	if err != nil {
		return nil, fmt.Errorf("DNS lookup failed: %w", err)
	}
	for _, ip := range ips {
		if err := v.checkIP(ip); err != nil {
			return nil, fmt.Errorf("SSRF blocked (resolved %s -> %s): %w", host, ip, err)
		}
	}

	// Connect to the first validated IP to avoid TOCTOU between the
	// check above and a second resolver pass inside the dialer.
	if len(ips) > 0 {
		targetAddr := ips[0].String()
		if port != "" {
			targetAddr = net.JoinHostPort(targetAddr, port)
		}
		return (&net.Dialer{}).DialContext(ctx, network, targetAddr)
	}

	return nil, fmt.Errorf("no IP addresses resolved for %s", host)
}
