// Package authapi defines the interface for the Cognito identity provider
// calls used during login, to enable testing and mocking.
package authapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

// CognitoAPI defines the identity provider operations used by this module.
// This interface allows for mocking in tests.
type CognitoAPI interface {
	// InitiateAuth starts a username/password authentication flow
	InitiateAuth(
		ctx context.Context,
		params *cognitoidentityprovider.InitiateAuthInput,
		optFns ...func(*cognitoidentityprovider.Options),
	) (*cognitoidentityprovider.InitiateAuthOutput, error)
}
