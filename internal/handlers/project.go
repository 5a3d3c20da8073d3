package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tablero-dev/tablero/db"
	"github.com/tablero-dev/tablero/internal/models"
	"github.com/tablero-dev/tablero/internal/types"
	"github.com/tablero-dev/tablero/internal/utils"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Nombre      string     `json:"nombre" binding:"required"`
	Descripcion string     `json:"descripcion"`
	FechaLimite *time.Time `json:"fecha_limite"`
}

func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	project := models.Project{
		Name:        body.Nombre,
		Description: body.Descripcion,
		Deadline:    body.FechaLimite,
		OwnerID:     userID,
	}

	// The project and its owner membership land together or not at all.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		membership := models.ProjectMembership{
			UserID:    userID,
			ProjectID: project.ID,
			Role:      types.RoleOwner,
		}

		return tx.Create(&membership).Error
	})

	if err != nil {
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear el proyecto"})
		return
	}

	ctx.JSON(http.StatusCreated, types.ProjectResponse{
		ID:            project.ID,
		Nombre:        project.Name,
		Descripcion:   project.Description,
		FechaLimite:   project.Deadline,
		PropietarioID: project.OwnerID,
		Rol:           types.RoleOwner,
	})
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	var memberships []models.ProjectMembership

	if err := db.DB.Preload("Project").Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		log.Printf("Failed to list projects for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener los proyectos"})
		return
	}

	response := make([]types.ProjectResponse, 0, len(memberships))

	for _, membership := range memberships {
		response = append(response, types.ProjectResponse{
			ID:            membership.Project.ID,
			Nombre:        membership.Project.Name,
			Descripcion:   membership.Project.Description,
			FechaLimite:   membership.Project.Deadline,
			PropietarioID: membership.Project.OwnerID,
			Rol:           membership.Role,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteProject(ctx *gin.Context) {
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

	project, ok := requireProjectRole(ctx, projectID, userID, roleIsOwner)

	if !ok {
		return
	}

	// Cascade by hand: soft deletes never reach the DB-level constraints.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint

		if err := tx.Model(&models.Task{}).Where("project_id = ?", project.ID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		// Memberships and assignments are removed for real so their unique
		// indexes do not keep soft-deleted pairs around.
		if len(taskIDs) > 0 {
			if err := tx.Unscoped().Where("task_id IN ?", taskIDs).Delete(&models.TaskAssignment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("project_id = ?", project.ID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}

		return tx.Delete(&project).Error
	})

	if err != nil {
		log.Printf("Failed to delete project %d: %v", project.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar el proyecto"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
