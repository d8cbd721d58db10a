package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookSecret rejects requests whose X-Webhook-Secret header does not equal
// secret. It guards the routes that act on a caller-supplied user id.
func WebhookSecret(secret string, log *zap.Logger) func(http.Handler) http.Handler {
	want := []byte(secret)
	log = log.Named("webhook")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(WebhookSecretHeader))
			if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				log.Warn("webhook secret rejected",
					zap.String("path", r.URL.Path),
					zap.Bool("present", len(got) > 0),
					zap.String("ip", ClientIP(r)),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
