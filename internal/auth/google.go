package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ErrInvalidAssertion is returned when an identity token is malformed,
// expired, issued for another audience, or fails signature verification.
var ErrInvalidAssertion = errors.New("invalid identity assertion")

// GoogleVerifier validates Google-issued ID tokens against Google's
// published signing keys and extracts the verified email claim.
type GoogleVerifier struct {
	audience string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{audience: clientID}
}

// Verify checks the assertion and returns the verified email address.
// The claim is trusted only after signature and audience checks pass.
func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (string, error) {
	payload, err := idtoken.Validate(ctx, assertion, v.audience)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	email, ok := payload.Claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("%w: token carries no email claim", ErrInvalidAssertion)
	}
	return email, nil
}
