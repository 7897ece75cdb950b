package services

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNIF is a scripted tax-ID validation collaborator.
type fakeNIF struct {
	valid bool
	err   error
}

func (f *fakeNIF) Validate(nif string) (bool, error) {
	return f.valid, f.err
}

func TestRegisterAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, &fakeNIF{valid: true}, "test-secret")

	user, err := svc.Register("alice@example.com", "s3cretpass", "Alice", "123456789")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "s3cretpass", user.PasswordHash)

	got, err := svc.Authenticate("alice@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate("alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody@example.com", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	fetched, err := svc.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", fetched.Email)

	_, err = svc.GetUser(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterRejectsInvalidNIF(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, &fakeNIF{valid: false}, "test-secret")

	_, err := svc.Register("bob@example.com", "s3cretpass", "Bob", "000000000")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterNIFUpstreamFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, &fakeNIF{err: errors.New("timeout")}, "test-secret")

	_, err := svc.Register("bob@example.com", "s3cretpass", "Bob", "123456789")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, nil, "test-secret")

	_, err := svc.Register("carol@example.com", "s3cretpass", "Carol", "")
	require.NoError(t, err)

	_, err = svc.Register("carol@example.com", "otherpass", "Carol Again", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIssueTokenCarriesIdentity(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, nil, "test-secret")

	user, err := svc.Register("dave@example.com", "s3cretpass", "Dave", "")
	require.NoError(t, err)

	tokenString, err := svc.IssueToken(user)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	assert.Equal(t, "user", claims["role"])
	assert.NotEmpty(t, claims["sub"])
}
