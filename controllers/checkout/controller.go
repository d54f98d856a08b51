package checkoutcontroller

import (
	"context"
	"net/http"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/exitflow"
	"github.com/Gabo-code/excelasistSLR-test/gateway"
	"github.com/Gabo-code/excelasistSLR-test/middlewares"
	"github.com/Gabo-code/excelasistSLR-test/models"
	"github.com/Gabo-code/excelasistSLR-test/render"
	"github.com/Gabo-code/excelasistSLR-test/viewmodel"

	"github.com/gin-gonic/gin"
)

// SectorSource entrega los sectores para el modal de salida.
type SectorSource interface {
	GetSectors(ctx context.Context) ([]string, error)
}

type Handler struct {
	Store   *viewmodel.Store
	Flow    *exitflow.Workflow
	Sectors SectorSource
	Refresh func()
}

func NewHandler(store *viewmodel.Store, flow *exitflow.Workflow, sectors SectorSource, refresh func()) *Handler {
	return &Handler{Store: store, Flow: flow, Sectors: sectors, Refresh: refresh}
}

func sessionID(c *gin.Context) string {
	return c.GetString(middlewares.SessionKey)
}

// SectorList responde el catálogo de sectores.
func (h *Handler) SectorList(c *gin.Context) {
	sectors, err := h.Sectors.GetSectors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Error al cargar sectores. Por favor, recargue la página."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sectors": sectors})
}

// List entrega los pendientes de hoy con filtros de conductor y vehículo,
// decorados con los marcadores de ausencia de esta sesión.
func (h *Handler) List(c *gin.Context) {
	if !h.Store.Loaded() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message": render.LoadFailedPrefix + "aún no hay datos del servidor",
		})
		return
	}

	records, fetchedAt := h.Store.Snapshot()
	now := time.Now()
	filters := viewmodel.Filters{
		Pending:   true,
		TodayOnly: true,
		Driver:    c.Query("driver"),
		Vehicle:   c.Query("vehicle"),
	}
	pending := viewmodel.Compute(records, filters, now)

	// El filtro de conductor del personal se arma con los pendientes, no
	// con el historial completo.
	allPending := viewmodel.Compute(records, viewmodel.Filters{Pending: true, TodayOnly: true}, now)

	c.JSON(http.StatusOK, gin.H{
		"rows":          render.ExitRows(pending, h.Flow.Markers(sessionID(c)), now),
		"driverOptions": viewmodel.DriverOptions(allPending),
		"emptyText":     render.NoPendingText,
		"fetchedAt":     fetchedAt.Format(time.RFC3339),
	})
}

type rowRef struct {
	Timestamp string `json:"timestamp" binding:"required"`
}

// Open abre el modal de salida para un registro. Un registro con envío en
// vuelo se rechaza, no se encola.
func (h *Handler) Open(c *gin.Context) {
	var ref rowRef
	if err := c.ShouldBindJSON(&ref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Registro no identificado"})
		return
	}
	if err := h.Flow.Open(sessionID(c), ref.Timestamp); err != nil {
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Cancel cierra el modal sin tocar el backend.
func (h *Handler) Cancel(c *gin.Context) {
	var ref rowRef
	if err := c.ShouldBindJSON(&ref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Registro no identificado"})
		return
	}
	if err := h.Flow.Cancel(sessionID(c), ref.Timestamp); err != nil {
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Confirm valida y envía la salida exactamente una vez. Con campos
// inválidos responde los errores por campo y no emite ninguna petición.
func (h *Handler) Confirm(c *gin.Context) {
	var form models.ExitForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Formulario ilegible"})
		return
	}

	exiting := h.driverForTimestamp(form.Timestamp)
	fieldErrs, err := h.Flow.Confirm(c.Request.Context(), sessionID(c), exiting, form)
	if !fieldErrs.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"fieldErrors": fieldErrs})
		return
	}
	if err != nil {
		switch err {
		case exitflow.ErrRowBusy, exitflow.ErrNotOpen:
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"message": "Error al marcar la salida: " + gateway.UserMessage(err)})
		}
		return
	}

	if h.Refresh != nil {
		go h.Refresh()
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type absentInput struct {
	Driver string `json:"driver" binding:"required"`
	Index  int    `json:"index"`
}

// Absent marca (o re-marca) a un conductor como ausente; el contador
// siempre parte en 0.
func (h *Handler) Absent(c *gin.Context) {
	var input absentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Conductor no identificado"})
		return
	}
	h.Flow.MarkAbsent(sessionID(c), input.Driver, input.Index)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) driverForTimestamp(timestamp string) string {
	records, _ := h.Store.Snapshot()
	for _, r := range records {
		if r.Timestamp == timestamp {
			return r.Driver
		}
	}
	return ""
}
