package middleware

import (
	"net/http"
	"sync"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const TokenHeader = "X-FITTRACK-TOKEN"

// TokenAuth guards mutating routes with a shared API token, stored only as a bcrypt hash.
// Tokens that already matched are remembered, bcrypt is too slow to run on every request.
type TokenAuth struct {
	tokenHash string

	mutex    sync.RWMutex
	verified map[string]bool
}

// NewTokenAuth returns a check that lets everything through when tokenHash is empty.
func NewTokenAuth(tokenHash string) *TokenAuth {
	return &TokenAuth{
		tokenHash: tokenHash,
		verified:  map[string]bool{},
	}
}

func (a *TokenAuth) Enabled() bool {
	return a.tokenHash != ""
}

func (a *TokenAuth) valid(token string) bool {
	a.mutex.RLock()
	ok := a.verified[token]
	a.mutex.RUnlock()
	if ok {
		return true
	}

	if !pkg.CheckPasswordHash(token, a.tokenHash) {
		return false
	}

	a.mutex.Lock()
	a.verified[token] = true
	a.mutex.Unlock()
	return true
}

func (a *TokenAuth) Check() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if !a.Enabled() || r.Method == http.MethodOptions {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(TokenHeader)
			if token == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			if !a.valid(token) {
				reqIP, _ := pkg.ReadUserIP(r)
				log.Warnf("[invalid token] [auth middleware] unauthorized %s %s from %s", r.Method, r.URL.Path, reqIP)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-auth-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
