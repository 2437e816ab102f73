package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fernet/fernet-go"
)

// timeTokenTTL bounds how long a signed time token stays valid.
const timeTokenTTL = 60 * time.Second

// APIKeyMiddleware guards mutating endpoints with a shared API key and
// a fernet time token. The key is compared in constant time; the token
// proves the request was minted recently by a holder of the fernet key,
// which limits replay of captured requests.
//
// Configuration comes from the INTERNAL_API_KEY and FERNET_KEY
// environment variables. A request is rejected with 401 when either
// header is missing or invalid, and with 503 when the server side is
// not configured.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expectedKey := os.Getenv("INTERNAL_API_KEY")
		if expectedKey == "" {
			respondUnauthorized(w, http.StatusServiceUnavailable, "Internal API key not configured")
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			respondUnauthorized(w, http.StatusUnauthorized, "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expectedKey)) != 1 {
			respondUnauthorized(w, http.StatusUnauthorized, "Invalid API key")
			return
		}

		timeToken := r.Header.Get("X-Time-Token")
		if timeToken == "" {
			respondUnauthorized(w, http.StatusUnauthorized, "Missing Time token")
			return
		}

		keys, err := fernet.DecodeKeys(os.Getenv("FERNET_KEY"))
		if err != nil {
			respondUnauthorized(w, http.StatusServiceUnavailable, "Fernet key not configured")
			return
		}

		if fernet.VerifyAndDecrypt([]byte(timeToken), timeTokenTTL, keys) == nil {
			respondUnauthorized(w, http.StatusUnauthorized, "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateTimeToken mints a fernet time token for the given payload
// using the FERNET_KEY environment variable. Clients send the result in
// the X-Time-Token header; it expires after timeTokenTTL.
func GenerateTimeToken(payload string) string {
	keys, err := fernet.DecodeKeys(os.Getenv("FERNET_KEY"))
	if err != nil {
		return ""
	}
	token, err := fernet.EncryptAndSign([]byte(payload), keys[0])
	if err != nil {
		return ""
	}
	return string(token)
}

// respondUnauthorized writes the middleware's JSON rejection body.
func respondUnauthorized(w http.ResponseWriter, status int, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{
		"error":   "unauthorized",
		"details": details,
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}
