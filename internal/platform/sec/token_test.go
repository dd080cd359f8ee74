// Copyright (c) 2026 Worklane. All rights reserved.

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane/internal/platform/sec"
)

func newCodec(t *testing.T) *sec.TokenService {
	t.Helper()
	codec, err := sec.NewTokenService("access-secret-for-tests", "refresh-secret-for-tests", "worklane.test")
	require.NoError(t, err)
	return codec
}

/*
TestTokenService_RoundTrip verifies issue/verify for every purpose.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	codec := newCodec(t)

	purposes := []sec.TokenPurpose{sec.PurposeAccess, sec.PurposeRefresh, sec.PurposeReset}
	for _, purpose := range purposes {
		t.Run(string(purpose), func(t *testing.T) {
			token, err := codec.Issue(purpose, "user-123", sec.RoleUser, time.Minute)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := codec.Verify(token, purpose)
			require.NoError(t, err)
			assert.Equal(t, "user-123", claims.UserID())
			assert.Equal(t, string(purpose), claims.Purpose)
			assert.Equal(t, string(sec.RoleUser), claims.Role)
		})
	}
}

/*
TestTokenService_UniquePerIssuance ensures back-to-back issuances with
identical inputs still produce distinct tokens. JWT timestamps only have
second granularity, so uniqueness must come from the jti claim; refresh
rotation depends on the replacement token differing from the one it
replaces.
*/
func TestTokenService_UniquePerIssuance(t *testing.T) {
	codec := newCodec(t)

	first, err := codec.Issue(sec.PurposeRefresh, "user-123", sec.RoleUser, 7*24*time.Hour)
	require.NoError(t, err)
	second, err := codec.Issue(sec.PurposeRefresh, "user-123", sec.RoleUser, 7*24*time.Hour)
	require.NoError(t, err)

	require.NotEqual(t, first, second)

	firstClaims, err := codec.Verify(first, sec.PurposeRefresh)
	require.NoError(t, err)
	secondClaims, err := codec.Verify(second, sec.PurposeRefresh)
	require.NoError(t, err)
	assert.NotEmpty(t, firstClaims.ID)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

/*
TestTokenService_CrossPurpose ensures a token never verifies under a
different purpose, including the pair that shares a signing secret.
*/
func TestTokenService_CrossPurpose(t *testing.T) {
	codec := newCodec(t)

	tests := []struct {
		name     string
		issued   sec.TokenPurpose
		verified sec.TokenPurpose
	}{
		{"access_as_refresh", sec.PurposeAccess, sec.PurposeRefresh},
		{"refresh_as_access", sec.PurposeRefresh, sec.PurposeAccess},
		// Access and reset share a secret class; the purpose claim alone
		// must keep them apart.
		{"access_as_reset", sec.PurposeAccess, sec.PurposeReset},
		{"reset_as_access", sec.PurposeReset, sec.PurposeAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Issue(tt.issued, "user-123", sec.RoleUser, time.Minute)
			require.NoError(t, err)

			_, err = codec.Verify(token, tt.verified)
			assert.ErrorIs(t, err, sec.ErrTokenInvalid)
		})
	}
}

/*
TestTokenService_Expired verifies that a validly signed but expired token
fails with the dedicated expiry error, not the generic invalid one.
*/
func TestTokenService_Expired(t *testing.T) {
	codec := newCodec(t)

	token, err := codec.Issue(sec.PurposeAccess, "user-123", sec.RoleUser, -1*time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token, sec.PurposeAccess)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
	assert.NotErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_Tampered covers malformed and signature-broken artifacts.
*/
func TestTokenService_Tampered(t *testing.T) {
	codec := newCodec(t)

	token, err := codec.Issue(sec.PurposeAccess, "user-123", sec.RoleUser, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"truncated", token[:len(token)-10]},
		{"flipped_payload", token[:20] + "x" + token[21:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token, sec.PurposeAccess)
			assert.ErrorIs(t, err, sec.ErrTokenInvalid)
		})
	}
}

/*
TestTokenService_ForeignSecret ensures tokens from another deployment are
rejected even when structurally perfect.
*/
func TestTokenService_ForeignSecret(t *testing.T) {
	codec := newCodec(t)

	foreign, err := sec.NewTokenService("other-access-secret", "other-refresh-secret", "worklane.test")
	require.NoError(t, err)

	token, err := foreign.Issue(sec.PurposeAccess, "user-123", sec.RoleUser, time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token, sec.PurposeAccess)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestNewTokenService_SecretPolicy rejects degenerate secret configuration.
*/
func TestNewTokenService_SecretPolicy(t *testing.T) {
	_, err := sec.NewTokenService("", "refresh", "worklane.test")
	assert.Error(t, err)

	_, err = sec.NewTokenService("same", "same", "worklane.test")
	assert.Error(t, err)
}
