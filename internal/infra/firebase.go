// README: Session verifiers: Firebase ID tokens in production.
package infra

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"privatehire/internal/types"
)

// TokenVerifier turns a bearer token into the caller's session.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*types.Session, error)
}

type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier uses credentialsFile as the service-account JSON when set, otherwise
// application-default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (TokenVerifier, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*types.Session, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return sessionFromClaims(types.ID(token.UID), token.Claims), nil
}

// sessionFromClaims reads the optional display name, email and role claims.
func sessionFromClaims(uid types.ID, claims map[string]interface{}) *types.Session {
	s := &types.Session{UID: uid}
	if name, ok := claims["name"].(string); ok {
		s.DisplayName = name
	}
	if email, ok := claims["email"].(string); ok {
		s.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		s.Role = role
	}
	return s
}
