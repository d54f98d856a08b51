package waitingcontroller

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/gateway"
	"github.com/Gabo-code/excelasistSLR-test/helper"
	"github.com/Gabo-code/excelasistSLR-test/models"
	"github.com/Gabo-code/excelasistSLR-test/render"
	"github.com/Gabo-code/excelasistSLR-test/viewmodel"

	"github.com/gin-gonic/gin"
)

// IdentityResolver resuelve el conductor detrás del PID del dispositivo.
type IdentityResolver interface {
	GetDriverByPID(ctx context.Context, pid string) (*models.DriverIdentity, error)
}

type Handler struct {
	Store    *viewmodel.Store
	Identity IdentityResolver
}

func NewHandler(store *viewmodel.Store, identity IdentityResolver) *Handler {
	return &Handler{Store: store, Identity: identity}
}

// List entrega la cola de espera de hoy. Con pid= además informa la
// posición del conductor del dispositivo; "no estás en la lista" es una
// respuesta normal, distinta de una falla de consulta.
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
		Vehicle:   c.Query("vehicle"),
	}
	queue := viewmodel.Compute(records, filters, now)

	resp := gin.H{
		"rows":      render.WaitingRows(queue, now),
		"emptyText": render.NoPendingText,
		"fetchedAt": fetchedAt.Format(time.RFC3339),
	}

	if pid := c.Query("pid"); pid != "" {
		resp["positionMessage"] = h.positionMessage(c.Request.Context(), records, pid, now)
	}

	c.JSON(http.StatusOK, resp)
}

type positionMessage struct {
	InQueue   bool   `json:"inQueue"`
	Position  int    `json:"position,omitempty"`
	Driver    string `json:"driver,omitempty"`
	Estimated string `json:"estimatedExit,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) positionMessage(ctx context.Context, records []models.AttendanceRecord, pid string, now time.Time) positionMessage {
	identity, err := h.Identity.GetDriverByPID(ctx, pid)
	if err != nil {
		// Falla de consulta, no confundir con "no está en la cola".
		return positionMessage{Error: gateway.UserMessage(err)}
	}
	if identity == nil {
		return positionMessage{InQueue: false}
	}

	pos, inQueue := viewmodel.Position(records, identity.Name, now)
	msg := positionMessage{InQueue: inQueue, Driver: identity.Name}
	if !inQueue {
		return msg
	}
	msg.Position = pos

	// Estimación de salida con el historial cerrado de hoy; si no alcanza
	// para entrenar, simplemente no viaja.
	for _, r := range records {
		if r.Driver == identity.Name && !r.Closed() && r.SameLocalDay(now) && r.CheckInOK {
			history := helper.ExitHistory(records, now)
			estimate, err := helper.PredictExitTime(history, r.CheckIn.Format("15:04"))
			if err != nil {
				log.Printf("Sin estimación de salida para %s: %v", identity.Name, err)
				break
			}
			msg.Estimated = estimate
			break
		}
	}
	return msg
}
