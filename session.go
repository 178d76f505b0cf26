package loam

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/loamstack/loam-go/errors"
	"github.com/loamstack/loam-go/model"
)

// GetCognitoConfig fetches the authentication bootstrap: which Cognito user
// pool and app client drive the login flow. The call is unauthenticated.
func (c *Client) GetCognitoConfig(ctx context.Context) (*model.CognitoConfig, error) {
	var cfg model.CognitoConfig
	err := c.requestJSON(ctx, "cognito-config", http.MethodGet, "/authentication/cognito-config", nil, nil, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Login authenticates with email and password and installs the resulting
// session on the client. Subsequent calls observe the new session
// atomically; calls already in flight keep the one they started with.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	cfg, err := c.GetCognitoConfig(ctx)
	if err != nil {
		return nil, err
	}

	auth, err := c.newAuthClient(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}

	out, err := auth.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: cognitotypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(cfg.TokenPool.AppClientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, errors.NewError("login", err)
	}
	result := out.AuthenticationResult
	if result == nil || result.AccessToken == nil || result.IdToken == nil {
		return nil, errors.NewError("login", errors.ErrUnauthorized).
			WithMessage("authentication result missing tokens")
	}

	claims, err := decodeJWTClaims(*result.IdToken)
	if err != nil {
		return nil, errors.NewError("login", err)
	}

	s := &session{
		token:              model.SessionToken(*result.AccessToken),
		organizationNodeID: model.OrganizationNodeID(claims.OrganizationNodeID),
		expires:            time.Unix(claims.Exp, 0),
	}
	c.session.Store(s)

	c.log.Info("logged in", "organization", s.organizationNodeID, "expires", s.expires)
	return c.Session(), nil
}

// Logout drops the active session.
func (c *Client) Logout() {
	c.session.Store(nil)
}

// jwtClaims is the subset of the id-token payload the client reads.
type jwtClaims struct {
	OrganizationNodeID string `json:"custom:organization_node_id"`
	Exp                int64  `json:"exp"`
}

// decodeJWTClaims extracts the payload of a JWT without verifying its
// signature. The token was just issued to us over TLS; the platform, not
// the client, is the verifying party.
func decodeJWTClaims(token string) (*jwtClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed token: expected 3 segments, got %d", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decoding token payload: %w", err)
	}
	var claims jwtClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("parsing token claims: %w", err)
	}
	return &claims, nil
}

// requireSession returns the active session or ErrNoSession.
func (c *Client) requireSession(op string) (*session, error) {
	s := c.session.Load()
	if s == nil {
		return nil, errors.NewError(op, errors.ErrNoSession)
	}
	if !s.expires.IsZero() && time.Now().After(s.expires) {
		return nil, errors.NewError(op, errors.ErrSessionExpired)
	}
	return s, nil
}

// requireOrganizationSession additionally demands the organization scope.
// The upload routes embed it as a path segment; letting an empty scope
// through would produce a doubled slash and a redirect that drops the body.
func (c *Client) requireOrganizationSession(op string) (*session, error) {
	s, err := c.requireSession(op)
	if err != nil {
		return nil, err
	}
	if s.organizationNodeID == "" {
		return nil, errors.NewError(op, errors.ErrNoOrganization)
	}
	return s, nil
}
