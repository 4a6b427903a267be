package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Amazpen/amazpen-app-sub007/internal/platform/httpx"
	"github.com/Amazpen/amazpen-app-sub007/internal/shared"
)

// AccessChecker decides whether a user may act on a business.
type AccessChecker interface {
	CanAccessBusiness(ctx context.Context, userID, businessID uuid.UUID) (bool, error)
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Checker AccessChecker
	Logger  *slog.Logger
	Header  string
}

// Authenticate stores the gateway-asserted principal in the request context. Requests
// without the header continue anonymously; a malformed header is rejected.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(m.header()))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			m.log().Warn("rbac parse user id", slog.String("value", raw))
			httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrUnauthorized, shared.ErrInvalidPrincipal))
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), shared.Principal{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireBusinessAccess ensures the principal may access the business named by the
// given URL parameter.
func (m Middleware) RequireBusinessAccess(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrUnauthorized, shared.ErrMissingPrincipal))
				return
			}
			businessID, err := uuid.Parse(chi.URLParam(r, param))
			if err != nil {
				httpx.RespondError(w, fmt.Errorf("%w: business id", httpx.ErrValidation))
				return
			}
			if m.Checker == nil {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			allowed, err := m.Checker.CanAccessBusiness(r.Context(), principal.UserID, businessID)
			if err != nil {
				m.log().Error("rbac business access", slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			if !allowed {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) header() string {
	if m.Header != "" {
		return m.Header
	}
	return DefaultUserHeader
}

func (m Middleware) log() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
