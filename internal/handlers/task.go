package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tablero-dev/tablero/db"
	"github.com/tablero-dev/tablero/internal/models"
	"github.com/tablero-dev/tablero/internal/types"
	"github.com/tablero-dev/tablero/internal/utils"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Titulo      string     `json:"titulo" binding:"required"`
	Descripcion string     `json:"descripcion"`
	FechaLimite *time.Time `json:"fecha_limite"`
}

type UpdateTaskStatusRequest struct {
	// Accepts the symbolic name or the ordinal, so the type is left open.
	Estado interface{} `json:"estado" binding:"required"`
}

type AssignResponsiblesRequest struct {
	Correos []string `json:"correos" binding:"required"`
}

func CreateTask(ctx *gin.Context) {
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

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida"})
		return
	}

	project, ok := requireProjectRole(ctx, projectID, userID, roleAllowsWrite)

	if !ok {
		return
	}

	task := models.Task{
		ProjectID:   project.ID,
		Title:       body.Titulo,
		Description: body.Descripcion,
		Status:      types.TaskStatusUnassigned,
		Deadline:    body.FechaLimite,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Failed to create task in project %d: %v", project.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear la tarea"})
		return
	}

	ctx.JSON(http.StatusCreated, taskResponse(task, nil))
}

func ListTasks(ctx *gin.Context) {
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

	project, ok := requireProjectRole(ctx, projectID, userID, roleAllowsRead)

	if !ok {
		return
	}

	var tasks []models.Task

	if err := db.DB.Preload("Assignments.User").Where("project_id = ?", project.ID).Find(&tasks).Error; err != nil {
		log.Printf("Failed to list tasks for project %d: %v", project.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener las tareas"})
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		emails := make([]string, 0, len(task.Assignments))

		for _, assignment := range task.Assignments {
			emails = append(emails, assignment.User.Email)
		}

		response = append(response, taskResponse(task, emails))
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	projectID, taskID, err := utils.GetProjectTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	project, ok := requireProjectRole(ctx, projectID, userID, roleAllowsWrite)

	if !ok {
		return
	}

	task, ok := loadProjectTask(ctx, project.ID, taskID)

	if !ok {
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// Assignments go for real: a soft-deleted row would keep holding the
		// (task_id, user_id) unique index.
		if err := tx.Unscoped().Where("task_id = ?", task.ID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&task).Error
	})

	if err != nil {
		log.Printf("Failed to delete task %d: %v", task.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar la tarea"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func UpdateTaskStatus(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	projectID, taskID, err := utils.GetProjectTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var body UpdateTaskStatusRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida"})
		return
	}

	project, ok := requireProjectRole(ctx, projectID, userID, roleAllowsWrite)

	if !ok {
		return
	}

	task, ok := loadProjectTask(ctx, project.ID, taskID)

	if !ok {
		return
	}

	status, ok := types.ParseTaskStatus(fmt.Sprintf("%v", body.Estado))

	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Estado inválido"})
		return
	}

	if err := db.DB.Model(&task).Update("status", status).Error; err != nil {
		log.Printf("Failed to update status of task %d: %v", task.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar la tarea"})
		return
	}

	ctx.JSON(http.StatusOK, taskResponse(task, nil))
}

// AssignResponsibles is all-or-nothing: any invalid email voids the whole
// batch and every problem is reported back.
func AssignResponsibles(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return
	}

	projectID, taskID, err := utils.GetProjectTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var body AssignResponsiblesRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida"})
		return
	}

	if len(body.Correos) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No se indicaron responsables"})
		return
	}

	project, ok := requireProjectRole(ctx, projectID, userID, roleAllowsWrite)

	if !ok {
		return
	}

	task, ok := loadProjectTask(ctx, project.ID, taskID)

	if !ok {
		return
	}

	var details []string
	var assignments []models.TaskAssignment
	seen := make(map[string]bool)

	for _, rawEmail := range body.Correos {
		email := strings.ToLower(strings.TrimSpace(rawEmail))

		if seen[email] {
			details = append(details, fmt.Sprintf("correo repetido: %s", email))
			continue
		}
		seen[email] = true

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

		role, err := projectRole(&project, target.ID)

		if err != nil {
			log.Printf("Database error when resolving role for %s: %v", email, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
			return
		}

		if role == "" {
			details = append(details, fmt.Sprintf("no es integrante del proyecto: %s", email))
			continue
		}

		var existing models.TaskAssignment

		err = db.DB.Where("task_id = ? AND user_id = ?", task.ID, target.ID).First(&existing).Error

		if err == nil {
			details = append(details, fmt.Sprintf("ya es responsable: %s", email))
			continue
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Database error when fetching assignment: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
			return
		}

		assignments = append(assignments, models.TaskAssignment{
			TaskID: task.ID,
			UserID: target.ID,
		})
	}

	if len(details) > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Responsables inválidos", "detalles": details})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		for i := range assignments {
			if err := tx.Create(&assignments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error de integridad: responsable duplicado"})
			return
		}
		log.Printf("Failed to assign responsibles to task %d: %v", task.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al asignar responsables"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Responsables asignados exitosamente"})
}

func loadProjectTask(ctx *gin.Context, projectID, taskID uint) (models.Task, bool) {
	var task models.Task

	if err := db.DB.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Tarea no encontrada"})
		} else {
			log.Printf("Database error when fetching task %d: %v", taskID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error de base de datos"})
		}
		return models.Task{}, false
	}

	return task, true
}

func taskResponse(task models.Task, responsables []string) types.TaskResponse {
	if responsables == nil {
		responsables = []string{}
	}

	return types.TaskResponse{
		ID:           task.ID,
		ProyectoID:   task.ProjectID,
		Titulo:       task.Title,
		Descripcion:  task.Description,
		Estado:       task.Status,
		FechaLimite:  task.Deadline,
		Responsables: responsables,
	}
}
