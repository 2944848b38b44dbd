package middleware

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"license-admin-go/internal/core"
)

// firebaseIdentity adapts Firebase Auth to core.IdentityProvider.
type firebaseIdentity struct {
	client *auth.Client
}

// NewFirebaseIdentityProvider wraps a Firebase Auth client.
func NewFirebaseIdentityProvider(client *auth.Client) core.IdentityProvider {
	if client == nil {
		panic("Firebase Auth client is not initialized for the identity provider")
	}
	return &firebaseIdentity{client: client}
}

// Authenticate verifies idToken and rejects tokens revoked by a forced sign-out.
func (f *firebaseIdentity) Authenticate(ctx context.Context, idToken string) (*core.Principal, error) {
	token, err := f.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	email, _ := token.Claims["email"].(string)
	return &core.Principal{UID: token.UID, Email: email}, nil
}

// SignOut revokes every refresh token of uid, ending all of its sessions.
func (f *firebaseIdentity) SignOut(ctx context.Context, uid string) error {
	if err := f.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke refresh tokens for %s: %w", uid, err)
	}
	return nil
}
