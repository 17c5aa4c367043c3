package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alphalens/backend/internal/plans"
	"github.com/alphalens/backend/pkg/logger"
)

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	userPlanKey contextKey = "user_plan"
)

// UserID extracts the authenticated user ID from a request context.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// UserPlan extracts the authenticated user's plan from a request context.
func UserPlan(ctx context.Context) string {
	plan, _ := ctx.Value(userPlanKey).(string)
	return plan
}

// Identity returns the caller's user ID and plan from a request
// context. Handlers receive this so they stay decoupled from the
// middleware implementation.
func Identity(ctx context.Context) (string, string) {
	return UserID(ctx), UserPlan(ctx)
}

// MockAuthMiddleware trusts X-User-ID and X-User-Plan headers. For
// local development only; production fronts the API with a real
// identity provider.
func MockAuthMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Missing X-User-ID header",
				})
				return
			}

			plan := r.Header.Get("X-User-Plan")
			if plan == "" {
				plan = plans.DefaultPlan
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, userPlanKey, plan)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
