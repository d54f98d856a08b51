package models

import (
	"strings"
	"time"
)

// VehicleClass es la clase de vehículo resuelta una sola vez al ingerir el
// registro. Los valores libres del backend ("Moto", "automóvil", etc.) se
// clasifican por subcadena; lo no reconocido cae en VehicleUnknown y se
// muestra como auto.
type VehicleClass string

const (
	VehicleMoto    VehicleClass = "moto"
	VehicleAuto    VehicleClass = "auto"
	VehicleUnknown VehicleClass = "unknown"
)

func ResolveVehicleClass(vehicleType string) VehicleClass {
	v := strings.ToLower(vehicleType)
	switch {
	case strings.Contains(v, "moto"):
		return VehicleMoto
	case strings.Contains(v, "auto"), strings.Contains(v, "carro"), strings.Contains(v, "car"):
		return VehicleAuto
	default:
		return VehicleUnknown
	}
}

// AttendanceRecord es un registro de asistencia tal como lo entrega el
// backend. Los campos derivados se completan con Ingest.
type AttendanceRecord struct {
	Driver      string `json:"driver"`
	VehicleType string `json:"vehicleType"`
	Timestamp   string `json:"timestamp"`
	ExitTime    string `json:"exitTime"`
	PhotoURL    string `json:"photoUrl"`

	Vehicle   VehicleClass `json:"-"`
	CheckIn   time.Time    `json:"-"`
	CheckInOK bool         `json:"-"`
}

// Closed indica que el conductor ya marcó salida; estos registros nunca
// aparecen en las vistas de pendientes.
func (r AttendanceRecord) Closed() bool {
	return r.ExitTime != ""
}

// SameLocalDay compara el día calendario local del ingreso con el de t.
// Un timestamp que no se pudo interpretar nunca es "hoy".
func (r AttendanceRecord) SameLocalDay(t time.Time) bool {
	if !r.CheckInOK {
		return false
	}
	y1, m1, d1 := r.CheckIn.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// timestampLayouts cubre los formatos que ha usado la planilla: ISO y el
// toLocaleString es-ES de las primeras versiones del kiosko.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2/1/2006, 15:04:05",
	"2/1/2006 15:04:05",
}

// ParseTimestamp interpreta el instante de ingreso en hora local.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Ingest resuelve la clase de vehículo y el instante de ingreso de cada
// registro recién bajado del backend.
func Ingest(records []AttendanceRecord) []AttendanceRecord {
	out := make([]AttendanceRecord, len(records))
	for i, r := range records {
		r.Vehicle = ResolveVehicleClass(r.VehicleType)
		r.CheckIn, r.CheckInOK = ParseTimestamp(r.Timestamp)
		out[i] = r
	}
	return out
}
