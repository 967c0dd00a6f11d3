package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const (
	HeaderAccountID = "X-Account-Id"
	HeaderSignature = "X-Signature"
	QueryAccountID  = "account_id"
	QuerySignature  = "signature"
)

var publicAuthBypass = map[string]bool{
	"/healthz": true,
	"/version": true,
}

// Verifier checks an account's signed key. signkey.Signer implements it.
type Verifier interface {
	Verify(accountID, signature string) bool
}

type accountKey struct{}

func WithAccount(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountKey{}, accountID)
}

// AccountFromContext returns the account authenticated by SignedKey.
func AccountFromContext(ctx context.Context) string {
	accountID, _ := ctx.Value(accountKey{}).(string)
	return accountID
}

// SignedKey rejects requests whose signature does not match their account
// id. Credentials are read from headers first, then query parameters.
func SignedKey(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicAuthBypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			accountID, signature := credentials(r)
			if verifier == nil || accountID == "" || signature == "" || !verifier.Verify(accountID, signature) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{
						"code":    "invalid_signature",
						"message": "invalid signature",
					},
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), accountID)))
		})
	}
}

func credentials(r *http.Request) (string, string) {
	accountID := strings.TrimSpace(r.Header.Get(HeaderAccountID))
	if accountID == "" {
		accountID = strings.TrimSpace(r.URL.Query().Get(QueryAccountID))
	}
	signature := strings.TrimSpace(r.Header.Get(HeaderSignature))
	if signature == "" {
		signature = strings.TrimSpace(r.URL.Query().Get(QuerySignature))
	}
	return accountID, signature
}
