// Copyright 2026 The Viaduct Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package viaduct

import (
	"fmt"
	"net"
	"strings"
)

// ForwardHeader names a header consulted for the real client IP.
type ForwardHeader string

const (
	// HeaderForwardedFor is the X-Forwarded-For header.
	HeaderForwardedFor ForwardHeader = "X-Forwarded-For"

	// HeaderRealIP is the X-Real-IP header.
	HeaderRealIP ForwardHeader = "X-Real-IP"

	// HeaderCFConnectingIP is the CF-Connecting-IP header (Cloudflare).
	HeaderCFConnectingIP ForwardHeader = "CF-Connecting-IP"
)

// RemoteIPOption configures trusted proxy detection for client IP
// resolution.
type RemoteIPOption func(*remoteIPSettings)

// remoteIPSettings collects the raw trusted proxy declarations.
type remoteIPSettings struct {
	proxies []string
	headers []ForwardHeader
	maxHops int
}

// remoteIPConfig is the compiled trusted proxy configuration: CIDRs are
// parsed once at construction so per-request checks never re-parse.
type remoteIPConfig struct {
	cidrs   []*net.IPNet
	headers []ForwardHeader
	maxHops int
}

// WithProxies sets the trusted proxy CIDR ranges. Forwarding headers are
// only consulted when the immediate peer falls inside one of these ranges.
//
// Example:
//
//	viaduct.WithTrustedProxies(
//	    viaduct.WithProxies("10.0.0.0/8", "127.0.0.1/32"),
//	)
func WithProxies(cidrs ...string) RemoteIPOption {
	return func(s *remoteIPSettings) {
		s.proxies = cidrs
	}
}

// WithForwardHeaders sets which headers to consult, in order of preference.
// Defaults to X-Forwarded-For then X-Real-IP.
//
// Any header name can be used by casting a string, which covers CDN
// variants such as Fastly-Client-IP or True-Client-IP:
//
//	viaduct.WithForwardHeaders(
//	    viaduct.HeaderForwardedFor,
//	    viaduct.ForwardHeader("True-Client-IP"),
//	)
func WithForwardHeaders(headers ...ForwardHeader) RemoteIPOption {
	return func(s *remoteIPSettings) {
		s.headers = headers
	}
}

// WithMaxHops limits how many trusted proxies the X-Forwarded-For walk may
// cross. Defaults to 1. Chains longer than the limit fall back to the
// nearest address rather than trusting entries an attacker could have
// planted at the far end.
func WithMaxHops(maxHops int) RemoteIPOption {
	return func(s *remoteIPSettings) {
		s.maxHops = maxHops
	}
}

// WithTrustedProxies configures client IP resolution behind proxies.
// Without it ClientIP returns the peer address and ignores forwarding
// headers entirely.
//
// Invalid CIDR ranges panic at construction: a half-applied trust list is
// worse than no trust list.
//
//	r := viaduct.MustNew(
//	    viaduct.WithTrustedProxies(
//	        viaduct.WithProxies("10.0.0.0/8", "192.168.0.0/16"),
//	        viaduct.WithMaxHops(2),
//	    ),
//	)
func WithTrustedProxies(opts ...RemoteIPOption) Option {
	return func(r *Router) {
		settings := &remoteIPSettings{}
		for _, opt := range opts {
			opt(settings)
		}

		compiled, err := compileRemoteIP(settings)
		if err != nil {
			panic(fmt.Sprintf("viaduct: invalid trusted proxy configuration: %v", err))
		}
		r.remoteIP = compiled
	}
}

// compileRemoteIP parses the declared CIDRs and applies defaults.
func compileRemoteIP(settings *remoteIPSettings) (*remoteIPConfig, error) {
	cfg := &remoteIPConfig{
		headers: settings.headers,
		maxHops: settings.maxHops,
	}
	if len(cfg.headers) == 0 {
		cfg.headers = []ForwardHeader{HeaderForwardedFor, HeaderRealIP}
	}
	if cfg.maxHops <= 0 {
		cfg.maxHops = 1
	}

	cfg.cidrs = make([]*net.IPNet, 0, len(settings.proxies))
	for _, cidr := range settings.proxies {
		_, ipnet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
		}
		cfg.cidrs = append(cfg.cidrs, ipnet)
	}

	return cfg, nil
}

// isTrusted reports whether ip falls inside any trusted CIDR range.
func (cfg *remoteIPConfig) isTrusted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, ipnet := range cfg.cidrs {
		if ipnet.Contains(parsed) {
			return true
		}
	}
	return false
}

// ClientIP returns the real client IP address, respecting trusted proxy
// headers.
//
// The peer address from RemoteAddr is authoritative unless it belongs to a
// trusted proxy. Only then are the configured headers consulted, in order.
// For X-Forwarded-For the chain is walked right to left, discarding trusted
// proxy entries up to the hop limit; the first untrusted address is the
// client. This is the standard defense against clients forging the header:
// anything the client appended sits to the left of the proxies and is never
// reached unless every intermediate hop is explicitly trusted.
func (c *Context) ClientIP() string {
	peer := peerIP(c.Request.RemoteAddr)

	if c.router == nil || c.router.remoteIP == nil {
		return peer
	}
	cfg := c.router.remoteIP
	if !cfg.isTrusted(peer) {
		return peer
	}

	for _, h := range cfg.headers {
		switch h {
		case HeaderForwardedFor:
			raw := c.Request.Header.Get(string(HeaderForwardedFor))
			if ip := firstUntrustedFromChain(raw, cfg); ip != "" {
				if strings.Count(raw, ",") > 10 {
					c.router.emit(DiagForwardedChainLong, "unusually long X-Forwarded-For chain", map[string]any{
						"peer":      peer,
						"hop_count": strings.Count(raw, ",") + 1,
						"chain":     raw,
					})
				}
				return ip
			}
		default:
			if ip := parseSingleIP(c.Request.Header.Get(string(h))); ip != "" {
				return ip
			}
		}
	}

	return peer
}

// ClientIPs returns every address in the X-Forwarded-For chain, leftmost
// (claimed client) first. Falls back to the peer address when the header is
// absent.
//
// The chain is returned as sent and may contain forged entries; use
// ClientIP for anything security sensitive.
func (c *Context) ClientIPs() []string {
	if xff := c.Request.Header.Get(string(HeaderForwardedFor)); xff != "" {
		parts := strings.Split(xff, ",")
		ips := make([]string, 0, len(parts))
		for _, part := range parts {
			if ip := strings.TrimSpace(part); ip != "" {
				ips = append(ips, ip)
			}
		}
		return ips
	}
	return []string{peerIP(c.Request.RemoteAddr)}
}

// peerIP extracts the bare IP from a RemoteAddr "ip:port" value.
func peerIP(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// firstUntrustedFromChain walks an X-Forwarded-For chain right to left and
// returns the first address not in the trusted set. Trusted entries count
// as hops; exceeding maxHops aborts the walk.
func firstUntrustedFromChain(xff string, cfg *remoteIPConfig) string {
	if xff == "" {
		return ""
	}
	parts := strings.Split(xff, ",")

	hops := 0
	for i := len(parts) - 1; i >= 0; i-- {
		ip := parseSingleIP(parts[i])
		if ip == "" {
			continue
		}
		if cfg.isTrusted(ip) {
			hops++
			if hops > cfg.maxHops {
				return ""
			}
			continue
		}
		return ip
	}

	// Every entry was a trusted proxy; the leftmost is the nearest thing to
	// a client the chain knows about.
	for _, part := range parts {
		if ip := parseSingleIP(part); ip != "" {
			return ip
		}
	}
	return ""
}

// parseSingleIP parses one IP address, trimming whitespace. Returns "" for
// anything that is not a valid address.
func parseSingleIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
