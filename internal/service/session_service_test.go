package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
)

func TestSessionIssueAndValidate(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)

	token, claims, err := svc.Issue()
	require.NoError(t, err)
	require.NotEmpty(t, claims.SessionID)

	parsed, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, parsed.SessionID)
	assert.Equal(t, time.Hour, svc.TTL())
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	token, _, err := NewSessionService("other", time.Hour).Issue()
	require.NoError(t, err)

	_, err = NewSessionService("secret", time.Hour).Validate(token)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))

	_, err = NewSessionService("secret", time.Hour).Validate("not-a-token")
	assert.Error(t, err)
}

func TestSessionExpires(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, _, err := svc.Issue()
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = svc.Validate(token)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestAdminAuthenticator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	auth := NewAdminAuthenticator(string(hash))
	require.True(t, auth.Enabled())
	assert.NoError(t, auth.Verify("s3cret"))
	assert.True(t, appErrors.HasCode(auth.Verify("wrong"), appErrors.ErrUnauthorized.Code))
	assert.True(t, appErrors.HasCode(auth.Verify(""), appErrors.ErrUnauthorized.Code))

	disabled := NewAdminAuthenticator("")
	assert.False(t, disabled.Enabled())
	assert.True(t, appErrors.HasCode(disabled.Verify("s3cret"), appErrors.ErrForbidden.Code))
}
