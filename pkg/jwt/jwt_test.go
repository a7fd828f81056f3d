package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/resto-inventario/pkg/jwt"
)

func TestGenerateYParse_RoundTrip(t *testing.T) {
	token, err := jwt.Generate("secreto", "u1", "MX", "sucursal-centro", "admin", "resto-inventario", 60)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwt.Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "MX", claims.Country)
	assert.Equal(t, "sucursal-centro", claims.Restaurant)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "resto-inventario", claims.Issuer)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	token, err := jwt.Generate("secreto", "u1", "MX", "sucursal-centro", "staff", "resto-inventario", 60)
	require.NoError(t, err)

	_, err = jwt.Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	token, err := jwt.Generate("secreto", "u1", "MX", "sucursal-centro", "staff", "resto-inventario", -1)
	require.NoError(t, err)

	_, err = jwt.Parse("secreto", token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u1", "MX", "sucursal-centro", "staff", "resto-inventario", 60)
	assert.Error(t, err)
}
