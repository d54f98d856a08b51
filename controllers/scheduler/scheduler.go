package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/viewmodel"
)

// RefreshInterval replica el refresco de un minuto de las páginas del
// kiosko.
const RefreshInterval = 60 * time.Second

// Start refresca el snapshot de asistencia en segundo plano. Un refresco
// fallido deja el snapshot anterior y lo informa; el siguiente tick
// vuelve a intentar.
func Start(store *viewmodel.Store, src viewmodel.AttendanceSource) {
	go func() {
		ticker := time.NewTicker(RefreshInterval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := store.Refresh(ctx, src); err != nil {
				log.Printf("No se pudo refrescar los registros: %v", err)
			}
			cancel()
		}
	}()
}
