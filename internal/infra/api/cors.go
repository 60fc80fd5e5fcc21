package api

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "GET, POST, OPTIONS"
)

// CORS reflects allow-listed origins and falls back to "*" for everything
// else, so unknown preview hosts keep working.
type CORS struct {
	origins  map[string]struct{}
	suffixes []string
}

func NewCORS(origins, suffixes []string) *CORS {
	c := &CORS{origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			c.origins[strings.ToLower(o)] = struct{}{}
		}
	}
	for _, s := range suffixes {
		// Stored without the leading dot; Allowed matches whole labels only.
		if s = strings.TrimLeft(strings.ToLower(strings.TrimSpace(s)), "."); s != "" {
			c.suffixes = append(c.suffixes, s)
		}
	}
	return c
}

// Allowed reports whether origin is on the allow-list or under a preview suffix.
func (c *CORS) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	o := strings.ToLower(strings.TrimRight(origin, "/"))
	if _, ok := c.origins[o]; ok {
		return true
	}
	u, err := url.Parse(o)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	for _, s := range c.suffixes {
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}

func (c *CORS) setHeaders(h http.Header, origin string) {
	if c.Allowed(origin) {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	} else {
		h.Set("Access-Control-Allow-Origin", "*")
	}
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
}

// Handler adds CORS headers to every response and answers preflights with
// headers only.
func (c *CORS) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.setHeaders(w.Header(), r.Header.Get("Origin"))
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
