package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

type tokenClaims struct {
	Exp int64 `json:"exp"`
}

// IsExpired reports whether a bearer token has passed its expiry. The
// middle segment of the three-part token is decoded as base64url JSON
// and its exp claim (unix seconds) compared against now. Anything that
// fails to decode, lacks the claim, or has the wrong shape counts as
// expired; no error is ever returned.
func IsExpired(token string) bool {
	return isExpiredAt(token, time.Now())
}

func isExpiredAt(token string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return true
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		// Some issuers pad their segments.
		payload, err = base64.URLEncoding.DecodeString(parts[1])
		if err != nil {
			return true
		}
	}

	var claims tokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return true
	}
	if claims.Exp == 0 {
		return true
	}

	return now.Unix() >= claims.Exp
}
