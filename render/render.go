package render

import (
	"fmt"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/exitflow"
	"github.com/Gabo-code/excelasistSLR-test/models"
	"github.com/Gabo-code/excelasistSLR-test/viewmodel"
)

// Textos fijos de las vistas.
const (
	NoPhotoText      = "No disponible"
	NoRecordsText    = "No se encontraron registros"
	NoPendingText    = "No hay conductores pendientes por salir"
	LoadFailedPrefix = "Error al cargar los datos: "
)

// Row es la proyección de un registro hacia la página: puros campos de
// presentación, sin lógica del lado del cliente.
type Row struct {
	Timestamp   string `json:"timestamp"`
	Driver      string `json:"driver"`
	BaseName    string `json:"baseName"`
	Vehicle     string `json:"vehicleType"`
	Emoji       string `json:"emoji"`
	Time        string `json:"time"`
	DateTime    string `json:"dateTime"`
	WaitingTime string `json:"waitingTime,omitempty"`
	Photo       string `json:"photo"`
	Position    int    `json:"position,omitempty"`
	Absent      bool   `json:"absent"`
	AbsentCount int    `json:"absentCount"`
}

func vehicleEmoji(class models.VehicleClass) string {
	if class == models.VehicleMoto {
		return "🛵"
	}
	return "🚗"
}

func baseRow(r models.AttendanceRecord) Row {
	row := Row{
		Timestamp: r.Timestamp,
		Driver:    r.Driver,
		Vehicle:   r.VehicleType,
		Emoji:     vehicleEmoji(r.Vehicle),
		Photo:     r.PhotoURL,
	}
	row.BaseName = fmt.Sprintf("%s %s", row.Emoji, r.Driver)
	if r.CheckInOK {
		row.Time = r.CheckIn.Format("15:04:05")
		row.DateTime = r.CheckIn.Format("02/01/2006 15:04:05")
	} else {
		row.Time = r.Timestamp
		row.DateTime = r.Timestamp
	}
	if row.Photo == "" {
		row.Photo = NoPhotoText
	}
	return row
}

// HistoryRows proyecta la lista completa de asistencia (página de lista).
func HistoryRows(records []models.AttendanceRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, baseRow(r))
	}
	return rows
}

// WaitingRows proyecta la cola de espera: posición 1-based y tiempo en
// espera recalculado ahora.
func WaitingRows(records []models.AttendanceRecord, now time.Time) []Row {
	rows := make([]Row, 0, len(records))
	for i, r := range records {
		row := baseRow(r)
		row.Position = i + 1
		if r.CheckInOK {
			row.WaitingTime = viewmodel.WaitingTime(r.CheckIn, now)
		}
		rows = append(rows, row)
	}
	return rows
}

// ExitRows proyecta la lista del personal, decorando a los marcados
// ausentes con su contador.
func ExitRows(records []models.AttendanceRecord, markers map[string]exitflow.AbsentMarker, now time.Time) []Row {
	rows := WaitingRows(records, now)
	for i := range rows {
		if m, ok := markers[rows[i].Driver]; ok {
			rows[i].Absent = true
			rows[i].AbsentCount = m.Count
		}
	}
	return rows
}
