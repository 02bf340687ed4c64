package firebase

import (
	"context"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
)

// Identity is the caller as asserted by a verified ID token.
type Identity struct {
	UID           string
	Email         string
	Name          string
	EmailVerified bool
}

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return identityFromClaims(result.UID, result.Claims), nil
}

func (f *FirebaseAuthClient) DeleteUser(ctx context.Context, uid string) error {
	return f.client.DeleteUser(ctx, uid)
}

func identityFromClaims(uid string, claims map[string]interface{}) *Identity {
	identity := &Identity{UID: uid}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		identity.Name = name
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		identity.EmailVerified = verified
	}
	return identity
}

// DevAuthClient trusts the token as a user id. It backs AUTH_MODE=dev and
// must never run in production. A token of the form "uid:unverified" yields
// an identity whose email is not verified.
type DevAuthClient struct{}

func NewDevAuthClient() *DevAuthClient {
	return &DevAuthClient{}
}

func (d *DevAuthClient) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	uid, flag, _ := strings.Cut(strings.TrimSpace(token), ":")
	if uid == "" {
		return nil, fmt.Errorf("empty dev token")
	}
	return &Identity{
		UID:           uid,
		Email:         uid + "@dev.local",
		Name:          uid,
		EmailVerified: flag != "unverified",
	}, nil
}

// DeleteUser is a no-op: dev identities exist only in the request header.
func (d *DevAuthClient) DeleteUser(ctx context.Context, uid string) error {
	return nil
}
