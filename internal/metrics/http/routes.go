package metricshttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/Amazpen/amazpen-app-sub007/internal/rbac"
	"github.com/Amazpen/amazpen-app-sub007/internal/shared"
)

// MountRoutes registers the metrics endpoints. Every route requires access to the business.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(h.cfg.RefreshLimit, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Route("/businesses/{businessID}/metrics", func(r chi.Router) {
		r.Use(guard.RequireBusinessAccess("businessID"))
		r.Get("/{year}", h.handleListYear)
		r.Get("/{year}/{month}", h.handleGet)
		r.With(limiter).Post("/{year}/{month}/refresh", h.handleRefresh)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if p, ok := shared.PrincipalFromContext(r.Context()); ok {
		return "user:" + p.UserID.String(), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
