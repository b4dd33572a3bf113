package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Mayorista-api/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testUserID = "00000000-0000-0000-0000-000000000001"
	testIssuer = "mayorista-api-test"
)

func TestGenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testUserID, pkgjwt.RoleAccountant, testIssuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, role, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
	assert.Equal(t, pkgjwt.RoleAccountant, role)
}

func TestTokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testUserID, pkgjwt.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestSecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testUserID, pkgjwt.RoleAdmin, testIssuer, 60)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestSecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", testUserID, pkgjwt.RoleAdmin, testIssuer, 60)
	assert.Error(t, err)

	_, _, err = pkgjwt.Parse("", "x.y.z")
	assert.Error(t, err)
}
