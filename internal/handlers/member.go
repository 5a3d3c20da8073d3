package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tablero-dev/tablero/db"
	"github.com/tablero-dev/tablero/internal/models"
	"github.com/tablero-dev/tablero/internal/types"
	"github.com/tablero-dev/tablero/internal/utils"
	"gorm.io/gorm"
)

type AddMembersRequest struct {
	// email -> role
	Integrantes map[string]string `json:"integrantes" binding:"required"`
}

type RemoveMemberRequest struct {
	Correo string `json:"correo" binding:"required,email"`
}

// AddMembers validates the whole batch before touching the membership table:
// either every entry is inserted or none is, and every invalid entry is
// reported, not just the first.
func AddMembers(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ID de proyecto inválido"})
		return
	}

	var body AddMembersRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida"})
		return
	}

	if len(body.Integrantes) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No se indicaron integrantes"})
		return
	}

	project, ok := requireProjectRole(ctx, projectID, userID, roleIsOwner)

	if !ok {
		return
	}

	var details []string
	var memberships []models.ProjectMembership
	seen := make(map[string]bool)

	for rawEmail, role := range body.Integrantes {
		email := strings.ToLower(strings.TrimSpace(rawEmail))

		// Keys that only differ in case collapse to the same address.
		if seen[email] {
			details = append(details, fmt.Sprintf("correo repetido: %s", email))
			continue
		}
		seen[email] = true

		if !types.ValidMemberRole(role) {
			details = append(details, fmt.Sprintf("rol inválido para %s: %s", email, role))
			continue
		}

		var target models.User

		if err := db.DB.Where("email = ?", email).First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				details = append(details, fmt.Sprintf("usuario no encontrado: %s", email))
				continue
			}
			log.Printf("Database error when fetching user %s: %v", email, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
			return
		}

		existingRole, err := projectRole(&project, target.ID)

		if err != nil {
			log.Printf("Database error when resolving role for %s: %v", email, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
			return
		}

		if existingRole != "" {
			details = append(details, fmt.Sprintf("ya es integrante: %s", email))
			continue
		}

		memberships = append(memberships, models.ProjectMembership{
			UserID:    target.ID,
			ProjectID: project.ID,
			Role:      role,
		})
	}

	if len(details) > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Integrantes inválidos", "detalles": details})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		for i := range memberships {
			if err := tx.Create(&memberships[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error de integridad: integrante duplicado"})
			return
		}
		log.Printf("Failed to add members to project %d: %v", project.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al agregar integrantes"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Integrantes agregados exitosamente"})
}

func RemoveMember(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ID de proyecto inválido"})
		return
	}

	var body RemoveMemberRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida"})
		return
	}

	project, ok := requireProjectRole(ctx, projectID, userID, roleIsOwner)

	if !ok {
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Correo))

	var target models.User

	if err := db.DB.Where("email = ?", email).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
			return
		}
		log.Printf("Database error when fetching user %s: %v", email, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		return
	}

	// The owner cannot be removed, not even by themselves.
	if target.ID == project.OwnerID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No se puede eliminar al propietario"})
		return
	}

	var membership models.ProjectMembership

	err = db.DB.Where("project_id = ? AND user_id = ?", project.ID, target.ID).First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "El usuario no es integrante del proyecto"})
			return
		}
		log.Printf("Database error when fetching membership: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		return
	}

	// Unscoped: a soft-deleted row would still occupy the unique index and
	// block the user from ever being re-added or re-assigned.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// Dropping a member also drops their task assignments in the project.
		if err := tx.Unscoped().Where("user_id = ? AND task_id IN (?)",
			target.ID,
			tx.Model(&models.Task{}).Select("id").Where("project_id = ?", project.ID),
		).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&membership).Error
	})

	if err != nil {
		log.Printf("Failed to remove member %d from project %d: %v", target.ID, project.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar el integrante"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
