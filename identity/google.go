package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/International-Combat-Archery-Alliance/auth"
	"google.golang.org/api/idtoken"
)

type Verifier interface {
	Validate(ctx context.Context, token string, clientID string) (auth.AuthToken, error)
}

type googleIdVerifier interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

var _ Verifier = &GoogleVerifier{}

type GoogleVerifier struct {
	validator googleIdVerifier
}

func NewGoogleVerifier(ctx context.Context) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create google id token validator: %w", err)
	}

	return &GoogleVerifier{validator: v}, nil
}

func (g *GoogleVerifier) Validate(ctx context.Context, token string, clientID string) (auth.AuthToken, error) {
	payload, err := g.validator.Validate(ctx, token, clientID)
	if err != nil {
		return nil, err
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("token has no email claim")
	}

	return &googleToken{payload: payload}, nil
}

var _ auth.AuthToken = &googleToken{}

type googleToken struct {
	payload *idtoken.Payload
}

func (t *googleToken) ExpiresAt() time.Time {
	return time.Unix(t.payload.Expires, 0)
}

func (t *googleToken) ProfilePicURL() string {
	pic, _ := t.payload.Claims["picture"].(string)
	return pic
}

// Admin rights come from the users collection, never from the token.
func (t *googleToken) IsAdmin() bool {
	return false
}

func (t *googleToken) Roles() []auth.Role {
	return nil
}

func (t *googleToken) UserEmail() string {
	email, _ := t.payload.Claims["email"].(string)
	return email
}

func (t *googleToken) Subject() string {
	return t.payload.Subject
}

// Authenticate validates token and returns the identity it carries.
func Authenticate(ctx context.Context, verifier Verifier, token string, clientID string) (Identity, error) {
	authToken, err := verifier.Validate(ctx, token, clientID)
	if err != nil {
		return Identity{}, err
	}

	subject := authToken.UserEmail()
	if st, ok := authToken.(interface{ Subject() string }); ok {
		subject = st.Subject()
	}

	return FromAuthToken(subject, authToken), nil
}
