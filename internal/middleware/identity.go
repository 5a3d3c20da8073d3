package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tablero-dev/tablero/db"
	"github.com/tablero-dev/tablero/internal/models"
	"github.com/tablero-dev/tablero/internal/types"
)

type AuthenticatedUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"correo"`
}

// IdentityHeader carries the acting user's email. This is NOT an
// authentication token: the caller is trusted as-is, which reproduces the
// original system's behavior and must not be relied on in production.
const IdentityHeader = "X-User-Email"

func IdentityMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		email := strings.ToLower(strings.TrimSpace(ctx.GetHeader(IdentityHeader)))

		if email == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Falta el encabezado de identidad"})
			return
		}

		var user models.User

		if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Usuario no encontrado"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})
		ctx.Next()
	}
}
