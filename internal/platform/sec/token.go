// Copyright (c) 2026 Worklane. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [auth.TokenCodec] interface.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/worklane/worklane/pkg/uuid"
)

// TokenPurpose identifies what a signed token may be exchanged for.
//
// A token issued for one purpose must never verify under another: the codec
// both selects the signing secret by purpose and embeds an explicit purpose
// claim that is checked on every decode.
type TokenPurpose string

const (
	// PurposeAccess authorizes individual API requests. Short-lived.
	PurposeAccess TokenPurpose = "access"

	// PurposeRefresh is exchanged for a new access/refresh pair. Long-lived,
	// single live instance per user.
	PurposeRefresh TokenPurpose = "refresh"

	// PurposeReset authorizes exactly one password change. Time-boxed.
	//
	// Reset tokens are signed with the access-class secret but are still
	// structurally distinct from access tokens through the purpose claim.
	PurposeReset TokenPurpose = "reset"
)

// Sentinel verification failures.
//
// Callers branch on these: an expired reset token means "request a new link",
// a tampered one means the artifact itself is garbage.
var (
	// ErrTokenExpired means the signature verified but the embedded expiry
	// is in the past.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid means the token is malformed, tampered with, signed
	// for a different purpose, or otherwise unverifiable.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// TokenClaims is the payload embedded inside every Worklane JWT.
type TokenClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	Purpose string `json:"pur"`
	Role    string `json:"rol"`
}

// UserID returns the token subject.
func (c *TokenClaims) UserID() string { return c.Subject }

// TokenService signs and verifies compact, expiring, tamper-evident tokens
// using HS256 with purpose-bound secrets.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
}

// NewTokenService creates a new TokenService.
//
// The two secrets must be non-empty and distinct so a leaked refresh-class
// key never compromises access-class tokens (and vice versa).
func NewTokenService(accessSecret, refreshSecret, issuer string) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("sec: token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("sec: access and refresh secrets must differ")
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
	}, nil
}

// Issue produces a signed, self-contained token for the given subject.
//
// # Parameters
//   - purpose: The token class (access / refresh / reset).
//   - userID: The subject account ID.
//   - role: The subject's role at issuance time, embedded for observability.
//   - timeToLive: The duration before the token expires.
func (service *TokenService) Issue(purpose TokenPurpose, userID string, role UserRole, timeToLive time.Duration) (string, error) {
	secret := service.secretFor(purpose)
	if secret == nil {
		return "", fmt.Errorf("sec: unknown token purpose %q", purpose)
	}

	currentTime := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti makes every issuance unique. Timestamps alone carry
			// only second granularity, and rotation depends on a fresh
			// refresh token differing from the one it replaces.
			ID:        uuid.New(),
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Purpose: string(purpose),
		Role:    string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature, expiry, and purpose of a token string.
//
// # Returns
//   - *TokenClaims when the token is live and bound to the given purpose.
//   - [ErrTokenExpired] when the signature is valid but the expiry passed.
//   - [ErrTokenInvalid] for every other failure (tamper, structure, purpose
//     mismatch, wrong secret). Expiry is checked against wall-clock time at
//     verification, not issuance.
func (service *TokenService) Verify(tokenString string, purpose TokenPurpose) (*TokenClaims, error) {
	secret := service.secretFor(purpose)
	if secret == nil {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(service.issuer), jwt.WithExpirationRequired())

	if err != nil {
		// The library only reports claim errors (expiry among them) after the
		// signature has been verified, so this mapping cannot mark a forged
		// token as merely expired.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	// Cross-purpose verification fails closed even for purposes sharing a
	// secret (access vs reset).
	if claims.Purpose != string(purpose) {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// secretFor maps a purpose to its signing secret. Reset tokens ride the
// access-class secret; the purpose claim keeps the classes distinct.
func (service *TokenService) secretFor(purpose TokenPurpose) []byte {
	switch purpose {
	case PurposeAccess, PurposeReset:
		return service.accessSecret
	case PurposeRefresh:
		return service.refreshSecret
	default:
		return nil
	}
}
