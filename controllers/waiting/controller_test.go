package waitingcontroller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/models"
	"github.com/Gabo-code/excelasistSLR-test/viewmodel"

	"github.com/gin-gonic/gin"
)

type fakeSource struct {
	records  []models.AttendanceRecord
	identity *models.DriverIdentity
	pidErr   error
}

func (f *fakeSource) GetAttendances(context.Context) ([]models.AttendanceRecord, error) {
	return f.records, nil
}

func (f *fakeSource) GetDriverByPID(context.Context, string) (*models.DriverIdentity, error) {
	return f.identity, f.pidErr
}

func setup(t *testing.T, src *fakeSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := viewmodel.NewStore()
	if err := store.Refresh(context.Background(), src); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	router := gin.New()
	router.GET("/waiting", NewHandler(store, src).List)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func pendingToday(driver string, minutesAgo int) models.AttendanceRecord {
	return models.AttendanceRecord{
		Driver:      driver,
		VehicleType: "moto",
		Timestamp:   time.Now().Add(-time.Duration(minutesAgo) * time.Minute).Format("2006-01-02T15:04:05"),
	}
}

func TestWaitingListPositions(t *testing.T) {
	src := &fakeSource{records: models.Ingest([]models.AttendanceRecord{
		pendingToday("A", 40),
		pendingToday("B", 10),
	})}
	router := setup(t, src)

	w := get(router, "/waiting")
	if w.Code != http.StatusOK {
		t.Fatalf("waiting: %d %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `"position":1`) || !strings.Contains(body, `"position":2`) {
		t.Fatalf("faltan posiciones: %s", body)
	}
}

func TestWaitingPositionMessageInQueue(t *testing.T) {
	src := &fakeSource{
		records:  models.Ingest([]models.AttendanceRecord{pendingToday("A", 40), pendingToday("B", 10)}),
		identity: &models.DriverIdentity{Name: "B", Vehicle: "moto"},
	}
	router := setup(t, src)

	w := get(router, "/waiting?pid=pid-b")
	body := w.Body.String()
	if !strings.Contains(body, `"inQueue":true`) || !strings.Contains(body, `"position":2`) {
		t.Fatalf("B debía aparecer en el puesto 2: %s", body)
	}
}

func TestWaitingNotInQueueIsNotAnError(t *testing.T) {
	src := &fakeSource{
		records:  models.Ingest([]models.AttendanceRecord{pendingToday("A", 40)}),
		identity: &models.DriverIdentity{Name: "Z", Vehicle: "auto"},
	}
	router := setup(t, src)

	w := get(router, "/waiting?pid=pid-z")
	if w.Code != http.StatusOK {
		t.Fatalf("no estar en cola es una respuesta normal: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"inQueue":false`) {
		t.Fatalf("esperaba inQueue:false: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), `"error"`) {
		t.Fatalf("no estar en cola no es un error: %s", w.Body.String())
	}
}

func TestWaitingPIDLookupFailureIsDistinct(t *testing.T) {
	src := &fakeSource{
		records: models.Ingest([]models.AttendanceRecord{pendingToday("A", 40)}),
		pidErr:  errors.New("backend caído"),
	}
	router := setup(t, src)

	w := get(router, "/waiting?pid=pid-x")
	if w.Code != http.StatusOK {
		t.Fatalf("la cola igual se entrega: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error"`) {
		t.Fatalf("la falla de consulta debe distinguirse de no-estar-en-cola: %s", w.Body.String())
	}
}
