package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fkhayef/driverpay/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// DriverIDKey is the context key for the acting driver
	DriverIDKey ContextKey = "driver_id"

	// DriverHeader carries the driver identity set by the upstream auth proxy
	DriverHeader = "X-Driver-ID"

	// DevDriverID is used by DevDriverMiddleware when no header is present
	DevDriverID = "dev-driver"
)

// DriverMiddleware requires the auth proxy to have identified the driver.
// Token validation itself happens upstream.
func DriverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		driverID := strings.TrimSpace(r.Header.Get(DriverHeader))
		if driverID == "" {
			response.Unauthorized(w, "Driver identity required")
			return
		}

		ctx := context.WithValue(r.Context(), DriverIDKey, driverID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DevDriverMiddleware allows setting the driver via X-Driver-ID header (DEV ONLY)
// and falls back to DevDriverID
func DevDriverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		driverID := strings.TrimSpace(r.Header.Get(DriverHeader))
		if driverID == "" {
			driverID = DevDriverID
		}
		ctx := context.WithValue(r.Context(), DriverIDKey, driverID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetDriverID extracts the driver ID from the request context
func GetDriverID(ctx context.Context) (string, bool) {
	driverID, ok := ctx.Value(DriverIDKey).(string)
	return driverID, ok && driverID != ""
}
