package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const organizationIDKey contextKey = "organization_id"

// OrganizationHeader carries the tenant scope for API requests. Upstream
// authentication (out of scope here) is expected to have verified the caller
// may act for this organization.
const OrganizationHeader = "X-Organization-ID"

// RequireOrganization resolves the tenant from the organization header and
// stores it in the request context. Requests without a valid organization ID
// are rejected.
func RequireOrganization() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(OrganizationHeader)
			if raw == "" {
				respondError(w, http.StatusUnauthorized, "Organization context required")
				return
			}

			organizationID, err := uuid.Parse(raw)
			if err != nil || organizationID == uuid.Nil {
				respondError(w, http.StatusUnauthorized, "Invalid organization ID")
				return
			}

			ctx := context.WithValue(r.Context(), organizationIDKey, organizationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOrganizationID extracts the organization ID from the request context.
// Returns uuid.Nil when no organization scope was established.
func GetOrganizationID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(organizationIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
