package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"go.uber.org/zap"
)

// DispatchSecretHeader protects the sweep trigger endpoints, which are
// reachable over the network but meant only for the cron caller.
const DispatchSecretHeader = "X-Dispatch-Secret"

// RequireDispatchSecret rejects sweep trigger requests whose shared secret
// does not match. A rejected request performs no side effects. An empty
// configured secret disables the endpoints entirely.
func RequireDispatchSecret(secret string, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				log.Warn("Sweep trigger rejected: dispatch secret not configured")
				respondError(w, http.StatusUnauthorized, "Dispatch secret not configured")
				return
			}

			provided := r.Header.Get(DispatchSecretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				log.Warn("Sweep trigger rejected: bad dispatch secret",
					zap.String("remote_addr", r.RemoteAddr),
				)
				respondError(w, http.StatusUnauthorized, "Invalid dispatch secret")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
