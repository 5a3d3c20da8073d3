package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tablero-dev/tablero/db"
	"github.com/tablero-dev/tablero/internal/models"
	"github.com/tablero-dev/tablero/internal/types"
	"gorm.io/gorm"
)

// projectRole resolves the caller's role in a project: the owner field wins,
// then the membership row. An empty role means not a member.
func projectRole(project *models.Project, userID uint) (string, error) {
	if project.OwnerID == userID {
		return types.RoleOwner, nil
	}

	var membership models.ProjectMembership

	err := db.DB.Where("project_id = ? AND user_id = ?", project.ID, userID).First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	return membership.Role, nil
}

func roleAllowsRead(role string) bool {
	return role != ""
}

func roleAllowsWrite(role string) bool {
	return role == types.RoleOwner || role == types.RoleEditor
}

func roleIsOwner(role string) bool {
	return role == types.RoleOwner
}

// requireProjectRole loads the project and checks the caller's role with the
// given predicate. It writes the error response itself and reports whether
// the handler may continue.
func requireProjectRole(ctx *gin.Context, projectID, userID uint, allowed func(string) bool) (models.Project, bool) {
	var project models.Project

	if err := db.DB.Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Proyecto no encontrado"})
		} else {
			log.Printf("Database error when fetching project %d: %v", projectID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		}
		return models.Project{}, false
	}

	role, err := projectRole(&project, userID)

	if err != nil {
		log.Printf("Database error when resolving role in project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		return models.Project{}, false
	}

	if !allowed(role) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "No tienes permisos para esta operación"})
		return models.Project{}, false
	}

	return project, true
}
