package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// Source says where a request carries its API key.
type Source struct {
	Type   string // header or query
	Name   string // header or query parameter name
	Scheme string // optional prefix such as "Bearer"
}

// DefaultSources accepts "Authorization: Bearer <key>" and "X-API-Key: <key>".
func DefaultSources() []Source {
	return []Source{
		{Type: "header", Name: "Authorization", Scheme: "Bearer"},
		{Type: "header", Name: "X-API-Key"},
	}
}

var errNoKey = errors.New("no API key found")

// Middleware rejects requests without a valid API key.
type Middleware struct {
	store   KeyStore
	sources []Source
	logger  *slog.Logger
}

// NewMiddleware creates a middleware validating keys found in sources.
func NewMiddleware(store KeyStore, sources []Source) *Middleware {
	return &Middleware{
		store:   store,
		sources: sources,
		logger:  slog.Default().With("component", "auth"),
	}
}

// Handle wraps next with API key authentication.
func (m *Middleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := m.extract(r)
		if err != nil {
			m.logger.Warn("missing API key", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			w.Header().Set("WWW-Authenticate", `Bearer realm="tessera"`)
			http.Error(w, "missing API key", http.StatusUnauthorized)
			return
		}

		info, err := m.store.Validate(key)
		if err != nil {
			m.logger.Warn("rejected API key", "error", err, "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			http.Error(w, "invalid API key", http.StatusUnauthorized)
			return
		}

		m.logger.Debug("API key authenticated", "key", info.Name, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), keyInfoKey, info)))
	})
}

func (m *Middleware) extract(r *http.Request) (string, error) {
	for _, src := range m.sources {
		switch src.Type {
		case "header":
			value := r.Header.Get(src.Name)
			if value == "" {
				continue
			}
			if src.Scheme == "" {
				return value, nil
			}
			if rest, ok := strings.CutPrefix(value, src.Scheme+" "); ok {
				return rest, nil
			}
		case "query":
			if value := r.URL.Query().Get(src.Name); value != "" {
				return value, nil
			}
		}
	}
	return "", errNoKey
}

type contextKey string

// #nosec G101 - context key, not a credential
const keyInfoKey contextKey = "api_key_info"

// GetKeyInfo returns the key that authenticated the request.
func GetKeyInfo(ctx context.Context) (*KeyInfo, bool) {
	info, ok := ctx.Value(keyInfoKey).(*KeyInfo)
	return info, ok
}
