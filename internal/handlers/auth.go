package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tablero-dev/tablero/db"
	"github.com/tablero-dev/tablero/internal/auth"
	"github.com/tablero-dev/tablero/internal/models"
	"github.com/tablero-dev/tablero/internal/services"
	"github.com/tablero-dev/tablero/internal/types"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Correo     string `json:"correo" binding:"required,email"`
	Nombre     string `json:"nombre" binding:"required"`
	Contrasena string `json:"contraseña" binding:"required"`
}

type LoginRequest struct {
	Correo     string `json:"correo" binding:"required,email"`
	Contrasena string `json:"contraseña" binding:"required"`
}

type CaptchaRequest struct {
	Token string `json:"token" binding:"required"`
}

// sendResetEmail is swapped out by tests.
var sendResetEmail = services.SendPasswordResetEmail

func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Correo))

	var existingUser models.User

	err := db.DB.Where("email = ?", email).First(&existingUser).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Correo ya registrado"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Contrasena)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error inesperado"})
		return
	}

	newUser := models.User{
		Name:         req.Nombre,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error de integridad: correo duplicado"})
			return
		}
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Usuario registrado exitosamente",
		"usuario": newUser.Name,
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Correo))

	var user models.User

	err := db.DB.Where("email = ?", email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		return
	}

	now := time.Now()

	if user.Locked {
		if !auth.LockExpired(&user, now) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Cuenta bloqueada por intentos fallidos"})
			return
		}

		// Window elapsed, the account unlocks before the attempt is judged.
		auth.ClearFailures(&user)

		if err := saveLockoutState(&user); err != nil {
			log.Printf("Failed to clear lockout for user %d: %v", user.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
			return
		}
	}

	if !auth.CheckPassword(user.PasswordHash, req.Contrasena) {
		locked := auth.RecordFailure(&user, now)

		if err := saveLockoutState(&user); err != nil {
			log.Printf("Failed to record login failure for user %d: %v", user.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
			return
		}

		if locked {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Cuenta bloqueada por intentos fallidos"})
			return
		}

		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Contraseña incorrecta"})
		return
	}

	if user.FailedAttempts > 0 || user.Locked {
		auth.ClearFailures(&user)

		if err := saveLockoutState(&user); err != nil {
			log.Printf("Failed to reset login failures for user %d: %v", user.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Inicio de sesión exitoso",
		"usuario": user.Name,
	})
}

func saveLockoutState(user *models.User) error {
	return db.DB.Model(user).Select("failed_attempts", "locked", "last_failed_at").Updates(map[string]interface{}{
		"failed_attempts": user.FailedAttempts,
		"locked":          user.Locked,
		"last_failed_at":  user.LastFailedAt,
	}).Error
}

func VerifyCaptcha(ctx *gin.Context) {
	var req CaptchaRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida"})
		return
	}

	ok, err := services.VerifyCaptcha(os.Getenv("RECAPTCHA_SECRET_KEY"), req.Token)

	if err != nil {
		log.Printf("Captcha verification failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error inesperado"})
		return
	}

	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Captcha inválido"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func ForgotPassword(ctx *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(ctx.Query("email")))

	if email == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Falta el parámetro email"})
		return
	}

	var user models.User

	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		return
	}

	code, err := auth.NewResetCode()

	if err != nil {
		log.Printf("Failed to generate reset code: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error inesperado"})
		return
	}

	// The token row only survives if the mail goes out.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		token := models.PasswordResetToken{
			UserID:    user.ID,
			Code:      code,
			ExpiresAt: time.Now().Add(types.ResetCodeTTL),
		}

		if err := tx.Create(&token).Error; err != nil {
			return err
		}

		return sendResetEmail(user.Email, code)
	})

	if err != nil {
		log.Printf("Failed to issue reset code for user %d: %v", user.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error inesperado"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Se envió un código de recuperación a tu correo"})
}

func ResetPassword(ctx *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(ctx.Query("email")))
	code := strings.TrimSpace(ctx.Query("token"))
	newPassword := ctx.Query("new_password")

	if email == "" || code == "" || newPassword == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Faltan parámetros"})
		return
	}

	var user models.User

	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		return
	}

	var token models.PasswordResetToken

	err := db.DB.Where("user_id = ? AND code = ? AND used = ?", user.ID, code, false).First(&token).Error

	if err != nil || token.ExpiresAt.Before(time.Now()) {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Database error when fetching reset token: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Código inválido o expirado"})
		return
	}

	passwordHash, err := auth.HashPassword(newPassword)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error inesperado"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password_hash", passwordHash).Error; err != nil {
			return err
		}

		return tx.Model(&token).Update("used", true).Error
	})

	if err != nil {
		log.Printf("Failed to reset password for user %d: %v", user.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Contraseña actualizada correctamente"})
}
