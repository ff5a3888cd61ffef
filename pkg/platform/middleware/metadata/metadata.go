// Package metadata extracts client details (address and user agent) from a
// request and makes them available to loggers further down the chain.
package metadata

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// Client describes who sent a request.
type Client struct {
	IP        string
	UserAgent string
	Browser   string
	OS        string
	Mobile    bool
	Bot       bool
}

type contextKeyClient struct{}

// ClientMetadata stores the request's Client in the context. Apply it early.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClient(r.Context(), ClientFromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClient returns the Client stored by ClientMetadata, or the zero value.
func GetClient(ctx context.Context) Client {
	c, _ := ctx.Value(contextKeyClient{}).(Client)
	return c
}

// WithClient injects a Client, for tests that skip the middleware.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, contextKeyClient{}, c)
}

// ClientFromRequest parses address and user agent out of r.
func ClientFromRequest(r *http.Request) Client {
	raw := r.Header.Get("User-Agent")
	c := Client{IP: ClientIPFromRequest(r), UserAgent: raw}
	if raw == "" {
		return c
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	c.Browser = strings.TrimSpace(name + " " + version)
	c.OS = ua.OS()
	c.Mobile = ua.Mobile()
	c.Bot = ua.Bot()
	return c
}

// ClientIPFromRequest prefers proxy headers and falls back to RemoteAddr.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
