// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth provides the credential model used by the deploy client to
// authenticate against an API server.
package auth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"
)

// CredentialType represents the type of credentials.
type CredentialType string

// Credential types.
const (
	CredentialTypeNone   CredentialType = "none"
	CredentialTypeAPIKey CredentialType = "api_key"
	CredentialTypeBearer CredentialType = "bearer"
	CredentialTypeBasic  CredentialType = "basic"
	CredentialTypeJWT    CredentialType = "jwt"
)

// Credentials represents authentication credentials for an API server.
type Credentials struct {
	Type        CredentialType `json:"type"`
	AccessToken string         `json:"access_token,omitempty"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	APIKey      string         `json:"api_key,omitempty"`
	Username    string         `json:"username,omitempty"`
	Password    string         `json:"password,omitempty"`
}

// IsExpired checks if the credentials are expired.
func (c *Credentials) IsExpired() bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*c.ExpiresAt)
}

// IsValid checks if the credentials are usable for a request.
func (c *Credentials) IsValid() bool {
	if c.Type == CredentialTypeNone {
		return true
	}
	if c.IsExpired() {
		return false
	}

	switch c.Type {
	case CredentialTypeAPIKey:
		return c.APIKey != ""
	case CredentialTypeBearer, CredentialTypeJWT:
		return c.AccessToken != ""
	case CredentialTypeBasic:
		return c.Username != "" && c.Password != ""
	default:
		return false
	}
}

// AuthHeader converts credentials to an Authorization header value.
func (c *Credentials) AuthHeader() (string, error) {
	if !c.IsValid() {
		return "", fmt.Errorf("credentials are not valid")
	}

	switch c.Type {
	case CredentialTypeBearer, CredentialTypeJWT:
		return "Bearer " + c.AccessToken, nil
	case CredentialTypeAPIKey:
		return "Bearer " + c.APIKey, nil
	case CredentialTypeBasic:
		raw := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
		return "Basic " + raw, nil
	default:
		return "", fmt.Errorf("unsupported credential type for auth header: %s", c.Type)
	}
}

// TokenProvider supplies credentials on demand. Implementations must be
// safe for concurrent use, as one provider is shared by every resource
// spawned from a client.
type TokenProvider interface {
	// Credentials returns the current credentials.
	Credentials() (*Credentials, error)
}

// StaticTokenProvider returns the same bearer token for every request.
type StaticTokenProvider struct {
	creds *Credentials
}

var _ TokenProvider = (*StaticTokenProvider)(nil)

// NewStaticTokenProvider creates a provider for a fixed bearer token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{
		creds: &Credentials{
			Type:        CredentialTypeBearer,
			AccessToken: token,
		},
	}
}

// Credentials implements TokenProvider.
func (p *StaticTokenProvider) Credentials() (*Credentials, error) {
	return p.creds, nil
}

// JWTTokenProvider wraps a JWT access token. The token is parsed once so
// the provider can refuse to hand out credentials past their exp claim
// instead of letting the server reject them.
type JWTTokenProvider struct {
	creds *Credentials
	token jwt.Token
}

var _ TokenProvider = (*JWTTokenProvider)(nil)

// NewJWTTokenProvider parses tokenString as a JWT and returns a provider
// for it. The signature is not verified client side.
func NewJWTTokenProvider(tokenString string) (*JWTTokenProvider, error) {
	token, err := jwt.Parse([]byte(tokenString), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, fmt.Errorf("parse JWT token: %w", err)
	}

	var expiresAt *time.Time
	if exp, ok := token.Expiration(); ok && !exp.IsZero() {
		expiresAt = &exp
	}

	return &JWTTokenProvider{
		creds: &Credentials{
			Type:        CredentialTypeJWT,
			AccessToken: tokenString,
			ExpiresAt:   expiresAt,
		},
		token: token,
	}, nil
}

// Token returns the parsed JWT.
func (p *JWTTokenProvider) Token() jwt.Token {
	return p.token
}

// Credentials implements TokenProvider. It returns an error once the
// token's exp claim has passed.
func (p *JWTTokenProvider) Credentials() (*Credentials, error) {
	if p.creds.IsExpired() {
		return nil, fmt.Errorf("JWT token is expired")
	}
	return p.creds, nil
}
