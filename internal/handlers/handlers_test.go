package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/tablero-dev/tablero/db"
	"github.com/tablero-dev/tablero/internal/middleware"
	"github.com/tablero-dev/tablero/internal/router"
	"gorm.io/gorm"
)

var testDBCounter int64

// setupTestApp wires the router against a fresh in-memory database.
func setupTestApp(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	db.DB = database
	require.NoError(t, db.MigrateDatabase())

	return router.NewRouter()
}

// doJSON performs a request with an optional JSON body and identity header.
func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, actorEmail string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if actorEmail != "" {
		req.Header.Set(middleware.IdentityHeader, actorEmail)
	}

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)

	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return body
}

func registerUser(t *testing.T, r *gin.Engine, correo, nombre, contrasena string) {
	t.Helper()

	recorder := doJSON(t, r, http.MethodPost, "/register", gin.H{
		"correo":     correo,
		"nombre":     nombre,
		"contraseña": contrasena,
	}, "")
	require.Equal(t, http.StatusCreated, recorder.Code)
}

// createProject returns the new project's ID acting as the given user.
func createProject(t *testing.T, r *gin.Engine, actorEmail, nombre string) uint {
	t.Helper()

	recorder := doJSON(t, r, http.MethodPost, "/proyectos", gin.H{
		"nombre":      nombre,
		"descripcion": "proyecto de prueba",
	}, actorEmail)
	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	id, ok := body["id"].(float64)
	require.True(t, ok, "project response has no id: %v", body)

	return uint(id)
}

// addMember adds a single member with the given role, expecting success.
func addMember(t *testing.T, r *gin.Engine, actorEmail string, projectID uint, memberEmail, role string) {
	t.Helper()

	recorder := doJSON(t, r, http.MethodPost, fmt.Sprintf("/proyectos/%d/integrantes", projectID), gin.H{
		"integrantes": map[string]string{memberEmail: role},
	}, actorEmail)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
}

// createTask returns the new task's ID.
func createTask(t *testing.T, r *gin.Engine, actorEmail string, projectID uint, titulo string) uint {
	t.Helper()

	recorder := doJSON(t, r, http.MethodPost, fmt.Sprintf("/proyectos/%d/tareas", projectID), gin.H{
		"titulo": titulo,
	}, actorEmail)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	body := decodeBody(t, recorder)
	id, ok := body["id"].(float64)
	require.True(t, ok, "task response has no id: %v", body)

	return uint(id)
}
