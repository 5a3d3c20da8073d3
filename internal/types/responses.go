package types

import "time"

// Wire DTOs. Field names follow the original Spanish API contract.

type ProjectResponse struct {
	ID            uint       `json:"id"`
	Nombre        string     `json:"nombre"`
	Descripcion   string     `json:"descripcion"`
	FechaLimite   *time.Time `json:"fecha_limite,omitempty"`
	PropietarioID uint       `json:"propietario_id"`
	Rol           string     `json:"rol"`
}

type TaskResponse struct {
	ID           uint       `json:"id"`
	ProyectoID   uint       `json:"proyecto_id"`
	Titulo       string     `json:"titulo"`
	Descripcion  string     `json:"descripcion"`
	Estado       string     `json:"estado"`
	FechaLimite  *time.Time `json:"fecha_limite,omitempty"`
	Responsables []string   `json:"responsables"`
}
