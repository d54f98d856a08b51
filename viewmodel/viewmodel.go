package viewmodel

import (
	"fmt"
	"sort"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/models"
)

// Filters son los filtros de una vista. Un campo vacío es comodín.
type Filters struct {
	Driver    string
	Vehicle   string // clase resuelta ("moto"/"auto") o tipo exacto
	Date      string // YYYY-MM-DD, coincidencia exacta de día
	Pending   bool   // excluye registros con salida marcada
	TodayOnly bool   // solo el día calendario local actual
}

// Compute deriva la vista a partir de un snapshot inmutable: filtra,
// luego ordena ascendente por instante de ingreso (orden de cola). La
// entrada no se modifica.
func Compute(records []models.AttendanceRecord, f Filters, now time.Time) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if f.Pending && r.Closed() {
			continue
		}
		if f.TodayOnly && !r.SameLocalDay(now) {
			continue
		}
		if f.Driver != "" && r.Driver != f.Driver {
			continue
		}
		if f.Vehicle != "" && !matchVehicle(r, f.Vehicle) {
			continue
		}
		if f.Date != "" && !matchDate(r, f.Date) {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		// Lo no interpretable se va al final.
		if a.CheckInOK != b.CheckInOK {
			return a.CheckInOK
		}
		return a.CheckIn.Before(b.CheckIn)
	})
	return out
}

func matchVehicle(r models.AttendanceRecord, want string) bool {
	return r.VehicleType == want || string(r.Vehicle) == want
}

func matchDate(r models.AttendanceRecord, day string) bool {
	return r.CheckInOK && r.CheckIn.Format("2006-01-02") == day
}

// Position busca al conductor dentro de la cola de hoy (pendientes,
// ordenados) y devuelve su puesto 1-based. ok=false significa "no está en
// la lista de espera", un resultado válido, no un error.
func Position(records []models.AttendanceRecord, driverName string, now time.Time) (int, bool) {
	queue := Compute(records, Filters{Pending: true, TodayOnly: true}, now)
	for i, r := range queue {
		if r.Driver == driverName {
			return i + 1, true
		}
	}
	return 0, false
}

// DriverOptions arma las opciones del filtro de conductor: nombres
// distintos de todos los registros cargados (no solo los filtrados),
// ordenados alfabéticamente.
func DriverOptions(records []models.AttendanceRecord) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		if r.Driver != "" && !seen[r.Driver] {
			seen[r.Driver] = true
			out = append(out, r.Driver)
		}
	}
	sort.Strings(out)
	return out
}

// WaitingTime formatea el tiempo en espera como "3h 12m" o "45m". Se
// recalcula en cada refresco, nunca se guarda.
func WaitingTime(checkIn, now time.Time) string {
	diff := now.Sub(checkIn)
	if diff < 0 {
		diff = 0
	}
	hours := int(diff.Hours())
	minutes := int(diff.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
