package models

// DriverIdentity es el conductor registrado detrás de un PID. El PID lo
// genera el backend y el dispositivo lo guarda en su almacenamiento local;
// aquí solo se correlaciona.
type DriverIdentity struct {
	Name    string `json:"name"`
	Vehicle string `json:"vehicle"`
}
