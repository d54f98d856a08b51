package listacontroller

import (
	"net/http"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/render"
	"github.com/Gabo-code/excelasistSLR-test/viewmodel"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Store *viewmodel.Store
}

func NewHandler(store *viewmodel.Store) *Handler {
	return &Handler{Store: store}
}

// List entrega el historial completo con filtros de conductor, fecha
// exacta y vehículo. Las opciones del filtro de conductor salen de TODOS
// los registros cargados, no solo de los filtrados, para que la selección
// previa sobreviva al recargar.
func (h *Handler) List(c *gin.Context) {
	if !h.Store.Loaded() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message": render.LoadFailedPrefix + "aún no hay datos del servidor",
		})
		return
	}

	records, fetchedAt := h.Store.Snapshot()
	filters := viewmodel.Filters{
		Driver:  c.Query("driver"),
		Vehicle: c.Query("vehicle"),
		Date:    c.Query("date"),
	}
	filtered := viewmodel.Compute(records, filters, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"rows":          render.HistoryRows(filtered),
		"driverOptions": viewmodel.DriverOptions(records),
		"emptyText":     render.NoRecordsText,
		"fetchedAt":     fetchedAt.Format(time.RFC3339),
	})
}
