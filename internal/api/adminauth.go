package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AdminAuth validates a Bearer JWT signed with the shared admin secret and
// requires the token subject to be the single configured administrator id.
// Every privileged endpoint sits behind this; failures disclose nothing
// beyond "not permitted".
func AdminAuth(secret string, adminID int64) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "not permitted")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeError(w, http.StatusUnauthorized, "not permitted")
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}

				return key, nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "not permitted")
				return
			}

			sub, err := token.Claims.GetSubject()
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not permitted")
				return
			}

			id, err := strconv.ParseInt(sub, 10, 64)
			if err != nil || id != adminID {
				writeError(w, http.StatusForbidden, "not permitted")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
