// Package google validates Google sign-in ID tokens.
package google

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

// Verifier checks a Google-issued ID token against the configured OAuth
// client ID and extracts the holder's identity.
type Verifier struct {
	ClientID string
}

func (v Verifier) VerifyIDToken(ctx context.Context, idTok string) (email, name string, err error) {
	if v.ClientID == "" {
		return "", "", errors.New("google client id not configured")
	}
	payload, err := idtoken.Validate(ctx, idTok, v.ClientID)
	if err != nil {
		return "", "", err
	}
	email, _ = payload.Claims["email"].(string)
	if email == "" {
		return "", "", errors.New("email not present in id token")
	}
	name, _ = payload.Claims["name"].(string)
	return email, name, nil
}
