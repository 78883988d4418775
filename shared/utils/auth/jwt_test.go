package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	roleID := uuid.New()

	token, err := GenerateJWT(userID, "alice@example.com", &orgID, &roleID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, orgID.String(), claims.OrganizationID)
	assert.Equal(t, roleID.String(), claims.RoleID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestGenerateJWTWithoutOrganization(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateJWT(userID, "root@example.com", nil, nil)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Empty(t, claims.OrganizationID)
	assert.Empty(t, claims.RoleID)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestValidateJWTRejectsTamperedToken(t *testing.T) {
	token, err := GenerateJWT(uuid.New(), "bob@example.com", nil, nil)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ValidateJWT(tampered)
	assert.Error(t, err)
}
