package youtube

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Proxy types.
const (
	ProxyTypeNone     = ""
	ProxyTypeGeneric  = "generic"
	ProxyTypeWebshare = "webshare"
)

const webshareProxyHost = "p.webshare.io:80"

// ErrInvalidProxyConfig is returned when the proxy settings cannot be used.
var ErrInvalidProxyConfig = errors.New("invalid proxy configuration")

// ProxyConfig selects how requests to YouTube are routed.
type ProxyConfig struct {
	// Type is one of ProxyTypeNone, ProxyTypeGeneric or ProxyTypeWebshare.
	Type string
	// URL is used for both schemes by the generic proxy.
	URL string
	// HTTP and HTTPS override URL per scheme.
	HTTP  string
	HTTPS string
	// WebshareUsername and WebsharePassword authenticate against the
	// rotating residential endpoint.
	WebshareUsername string
	WebsharePassword string
}

// Validate reports whether the configuration is usable.
func (p ProxyConfig) Validate() error {
	_, err := p.proxyFunc()
	return err
}

// proxyFunc returns an http.Transport Proxy function, or nil for direct connections.
func (p ProxyConfig) proxyFunc() (func(*http.Request) (*url.URL, error), error) {
	switch p.Type {
	case ProxyTypeNone:
		return nil, nil

	case ProxyTypeWebshare:
		if p.WebshareUsername == "" || p.WebsharePassword == "" {
			return nil, fmt.Errorf("%w: webshare requires username and password", ErrInvalidProxyConfig)
		}
		u := &url.URL{
			Scheme: "http",
			User:   url.UserPassword(p.WebshareUsername+"-rotate", p.WebsharePassword),
			Host:   webshareProxyHost,
			Path:   "/",
		}
		return http.ProxyURL(u), nil

	case ProxyTypeGeneric:
		httpURL, httpsURL := p.HTTP, p.HTTPS
		if httpURL == "" {
			httpURL = p.URL
		}
		if httpsURL == "" {
			httpsURL = p.URL
		}
		if httpURL == "" && httpsURL == "" {
			return nil, fmt.Errorf("%w: generic proxy requires a proxy URL", ErrInvalidProxyConfig)
		}

		byScheme := make(map[string]*url.URL, 2)
		for scheme, raw := range map[string]string{"http": httpURL, "https": httpsURL} {
			if raw == "" {
				continue
			}
			u, err := url.Parse(raw)
			if err != nil || u.Host == "" {
				return nil, fmt.Errorf("%w: bad %s proxy URL %q", ErrInvalidProxyConfig, scheme, raw)
			}
			byScheme[scheme] = u
		}

		return func(r *http.Request) (*url.URL, error) {
			return byScheme[r.URL.Scheme], nil
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown proxy type %q", ErrInvalidProxyConfig, p.Type)
	}
}
