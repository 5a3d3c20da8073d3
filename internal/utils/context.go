package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tablero-dev/tablero/internal/middleware"
	"github.com/tablero-dev/tablero/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

func GetProjectID(ctx *gin.Context) (uint, error) {
	projectID, err := strconv.ParseUint(ctx.Param("project_id"), 10, 64)

	if err != nil {
		return 0, fmt.Errorf("Invalid project ID")
	}

	return uint(projectID), nil
}

func GetProjectTaskID(ctx *gin.Context) (uint, uint, error) {
	projectID, err := GetProjectID(ctx)

	if err != nil {
		return 0, 0, err
	}

	taskID, err := strconv.ParseUint(ctx.Param("task_id"), 10, 64)

	if err != nil {
		return 0, 0, fmt.Errorf("Invalid task ID")
	}

	return projectID, uint(taskID), nil
}
