package controllers

import (
	"context"
	"net/http"

	"github.com/lbricard/stockdesk-backend/api/responses"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
)

// Pinger is any dependency with a connectivity check.
type Pinger interface {
	Ping(context.Context) error
}

// Health reports liveness plus the state of each wired dependency.
func Health(logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status := map[string]string{"service": "ok"}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				status[name] = "unreachable"
				healthy = false
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "dependency", name), "health check failed")
				}
				continue
			}
			status[name] = "ok"
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, code, status)
	}
}
