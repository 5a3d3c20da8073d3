package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablero-dev/tablero/db"
	"github.com/tablero-dev/tablero/internal/handlers"
	"github.com/tablero-dev/tablero/internal/models"
)

func TestRegister(t *testing.T) {
	r := setupTestApp(t)

	recorder := doJSON(t, r, http.MethodPost, "/register", gin.H{
		"correo":     "a@b.com",
		"nombre":     "Ana",
		"contraseña": "x",
	}, "")

	require.Equal(t, http.StatusCreated, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "Ana", body["usuario"])
	assert.NotContains(t, recorder.Body.String(), "contraseña")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := setupTestApp(t)

	registerUser(t, r, "ana@example.com", "Ana", "secreto")

	// Same email upper-cased still collides.
	recorder := doJSON(t, r, http.MethodPost, "/register", gin.H{
		"correo":     "ANA@example.com",
		"nombre":     "Ana Bis",
		"contraseña": "otro",
	}, "")

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Correo ya registrado", decodeBody(t, recorder)["error"])
}

func TestLoginSuccess(t *testing.T) {
	r := setupTestApp(t)

	registerUser(t, r, "juan@test.com", "Juan", "1234")

	recorder := doJSON(t, r, http.MethodPost, "/login", gin.H{
		"correo":     "juan@test.com",
		"contraseña": "1234",
	}, "")

	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "Inicio de sesión exitoso", body["message"])
	assert.Equal(t, "Juan", body["usuario"])
}

func TestLoginUnknownEmail(t *testing.T) {
	r := setupTestApp(t)

	recorder := doJSON(t, r, http.MethodPost, "/login", gin.H{
		"correo":     "nadie@test.com",
		"contraseña": "1234",
	}, "")

	require.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Usuario no encontrado", decodeBody(t, recorder)["error"])
}

func TestLoginWrongPassword(t *testing.T) {
	r := setupTestApp(t)

	registerUser(t, r, "juan@test.com", "Juan", "1234")

	recorder := doJSON(t, r, http.MethodPost, "/login", gin.H{
		"correo":     "juan@test.com",
		"contraseña": "wrongpass",
	}, "")

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Contraseña incorrecta", decodeBody(t, recorder)["error"])
}

func TestLoginLockoutAfterFourFailures(t *testing.T) {
	r := setupTestApp(t)

	registerUser(t, r, "juan@test.com", "Juan", "1234")

	login := func(password string) gin.H {
		return gin.H{"correo": "juan@test.com", "contraseña": password}
	}

	for i := 0; i < 3; i++ {
		recorder := doJSON(t, r, http.MethodPost, "/login", login("mal"), "")
		require.Equal(t, http.StatusUnauthorized, recorder.Code, "attempt %d", i+1)
	}

	// Fourth failure locks the account.
	recorder := doJSON(t, r, http.MethodPost, "/login", login("mal"), "")
	require.Equal(t, http.StatusForbidden, recorder.Code)

	// Correct password is still rejected while locked.
	recorder = doJSON(t, r, http.MethodPost, "/login", login("1234"), "")
	require.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "Cuenta bloqueada por intentos fallidos", decodeBody(t, recorder)["error"])
}

func TestLoginAutoUnlockAfterWindow(t *testing.T) {
	r := setupTestApp(t)

	registerUser(t, r, "juan@test.com", "Juan", "1234")

	for i := 0; i < 4; i++ {
		doJSON(t, r, http.MethodPost, "/login", gin.H{"correo": "juan@test.com", "contraseña": "mal"}, "")
	}

	// Pretend the locking failure happened before the window.
	past := time.Now().Add(-6 * time.Minute)
	require.NoError(t, db.DB.Model(&models.User{}).
		Where("email = ?", "juan@test.com").
		Update("last_failed_at", past).Error)

	recorder := doJSON(t, r, http.MethodPost, "/login", gin.H{"correo": "juan@test.com", "contraseña": "1234"}, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var user models.User
	require.NoError(t, db.DB.Where("email = ?", "juan@test.com").First(&user).Error)
	assert.Zero(t, user.FailedAttempts)
	assert.False(t, user.Locked)
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	r := setupTestApp(t)

	registerUser(t, r, "juan@test.com", "Juan", "1234")

	for i := 0; i < 2; i++ {
		doJSON(t, r, http.MethodPost, "/login", gin.H{"correo": "juan@test.com", "contraseña": "mal"}, "")
	}

	recorder := doJSON(t, r, http.MethodPost, "/login", gin.H{"correo": "juan@test.com", "contraseña": "1234"}, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var user models.User
	require.NoError(t, db.DB.Where("email = ?", "juan@test.com").First(&user).Error)
	assert.Zero(t, user.FailedAttempts)
	assert.False(t, user.Locked)
}

func TestForgotAndResetPassword(t *testing.T) {
	r := setupTestApp(t)

	registerUser(t, r, "ana@test.com", "Ana", "vieja")

	var sentTo, sentCode string
	restore := handlers.SetResetMailer(func(to, code string) error {
		sentTo = to
		sentCode = code
		return nil
	})
	defer restore()

	recorder := doJSON(t, r, http.MethodPost, "/forgot-password?email=ana@test.com", nil, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, "ana@test.com", sentTo)
	require.Len(t, sentCode, 6)

	// Wrong code is rejected.
	recorder = doJSON(t, r, http.MethodPost, "/reset-password?email=ana@test.com&token=ffffff&new_password=nueva", nil, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Código inválido o expirado", decodeBody(t, recorder)["error"])

	// Right code resets the password.
	path := fmt.Sprintf("/reset-password?email=ana@test.com&token=%s&new_password=nueva", sentCode)
	recorder = doJSON(t, r, http.MethodPost, path, nil, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	// Code is single-use.
	recorder = doJSON(t, r, http.MethodPost, path, nil, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	// New password works, old does not.
	recorder = doJSON(t, r, http.MethodPost, "/login", gin.H{"correo": "ana@test.com", "contraseña": "nueva"}, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	recorder = doJSON(t, r, http.MethodPost, "/login", gin.H{"correo": "ana@test.com", "contraseña": "vieja"}, "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestResetPasswordExpiredCode(t *testing.T) {
	r := setupTestApp(t)

	registerUser(t, r, "ana@test.com", "Ana", "vieja")

	var sentCode string
	restore := handlers.SetResetMailer(func(to, code string) error {
		sentCode = code
		return nil
	})
	defer restore()

	recorder := doJSON(t, r, http.MethodPost, "/forgot-password?email=ana@test.com", nil, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	require.NoError(t, db.DB.Model(&models.PasswordResetToken{}).
		Where("code = ?", sentCode).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	path := fmt.Sprintf("/reset-password?email=ana@test.com&token=%s&new_password=nueva", sentCode)
	recorder = doJSON(t, r, http.MethodPost, path, nil, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Código inválido o expirado", decodeBody(t, recorder)["error"])
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	r := setupTestApp(t)

	recorder := doJSON(t, r, http.MethodPost, "/forgot-password?email=nadie@test.com", nil, "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestForgotPasswordMailFailureRollsBack(t *testing.T) {
	r := setupTestApp(t)

	registerUser(t, r, "ana@test.com", "Ana", "vieja")

	restore := handlers.SetResetMailer(func(to, code string) error {
		return fmt.Errorf("smtp down")
	})
	defer restore()

	recorder := doJSON(t, r, http.MethodPost, "/forgot-password?email=ana@test.com", nil, "")
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	var count int64
	require.NoError(t, db.DB.Model(&models.PasswordResetToken{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStatusRoot(t *testing.T) {
	r := setupTestApp(t)

	recorder := doJSON(t, r, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", decodeBody(t, recorder)["status"])
}
