package checkincontroller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Gabo-code/excelasistSLR-test/config"
	"github.com/Gabo-code/excelasistSLR-test/gateway"
	"github.com/Gabo-code/excelasistSLR-test/models"

	"github.com/gin-gonic/gin"
)

type fakeBackend struct {
	drivers       []string
	hasPending    bool
	canRegister   bool
	remaining     int
	identity      *models.DriverIdentity
	generatedPID  string
	assignedPIDs  []string
	checkIns      []gateway.CheckInRequest
	checkInCalled int
}

func (f *fakeBackend) GetAvailableDrivers(context.Context) ([]string, error) {
	return f.drivers, nil
}

func (f *fakeBackend) CheckPendingExits(_ context.Context, _ string) (bool, error) {
	return f.hasPending, nil
}

func (f *fakeBackend) CheckDriverStandby(_ context.Context, _ string) (bool, int, error) {
	return f.canRegister, f.remaining, nil
}

func (f *fakeBackend) GetDriverByPID(_ context.Context, _ string) (*models.DriverIdentity, error) {
	return f.identity, nil
}

func (f *fakeBackend) GeneratePID(context.Context) (string, error) {
	return f.generatedPID, nil
}

func (f *fakeBackend) AssignDriverPID(_ context.Context, _, pid, _ string) error {
	f.assignedPIDs = append(f.assignedPIDs, pid)
	return nil
}

func (f *fakeBackend) SubmitCheckIn(_ context.Context, in gateway.CheckInRequest) error {
	f.checkInCalled++
	f.checkIns = append(f.checkIns, in)
	return nil
}

func setup(t *testing.T, backend *fakeBackend) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.TargetLat = -33.564259
	config.TargetLon = -70.680248
	config.MaxDistanceMeters = 50

	router := gin.New()
	h := NewHandler(backend, nil)
	router.POST("/checkin", h.CheckIn)
	return router
}

func postForm(router *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/checkin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func baseForm() url.Values {
	return url.Values{
		"driver":      {"A"},
		"vehicleType": {"moto"},
		"timestamp":   {"2025-05-13T09:00:00"},
		"latitude":    {"-33.564259"},
		"longitude":   {"-70.680248"},
	}
}

func TestCheckInOutOfRangeRejected(t *testing.T) {
	backend := &fakeBackend{canRegister: true}
	router := setup(t, backend)

	form := baseForm()
	// ~51m al norte del objetivo.
	form.Set("latitude", "-33.56380045")
	w := postForm(router, form)

	if w.Code != http.StatusForbidden {
		t.Fatalf("fuera de rango debía dar 403, dio %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "fuera del rango") || !strings.Contains(w.Body.String(), "51m") {
		t.Fatalf("el mensaje debe incluir la distancia redondeada: %s", w.Body.String())
	}
	if backend.checkInCalled != 0 {
		t.Fatalf("fuera de rango no puede llegar al backend")
	}
}

func TestCheckInWithoutPositionRejected(t *testing.T) {
	backend := &fakeBackend{canRegister: true}
	router := setup(t, backend)

	form := baseForm()
	form.Del("latitude")
	w := postForm(router, form)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("sin posición debía dar 400, dio %d", w.Code)
	}
	if backend.checkInCalled != 0 {
		t.Fatalf("la geocerca nunca se salta en silencio")
	}
}

func TestCheckInPendingExitBlocks(t *testing.T) {
	backend := &fakeBackend{canRegister: true, hasPending: true}
	router := setup(t, backend)

	w := postForm(router, baseForm())
	if w.Code != http.StatusConflict {
		t.Fatalf("con salida pendiente debía dar 409, dio %d", w.Code)
	}
	if backend.checkInCalled != 0 {
		t.Fatalf("con salida pendiente no se registra ingreso")
	}
}

func TestCheckInStandbyBlocks(t *testing.T) {
	backend := &fakeBackend{canRegister: false, remaining: 17}
	router := setup(t, backend)

	w := postForm(router, baseForm())
	if w.Code != http.StatusConflict {
		t.Fatalf("en standby debía dar 409, dio %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "17") {
		t.Fatalf("el mensaje debe incluir los minutos restantes: %s", w.Body.String())
	}
}

func TestCheckInGeneratesPIDWhenMissing(t *testing.T) {
	backend := &fakeBackend{canRegister: true, generatedPID: "pid-nuevo"}
	router := setup(t, backend)

	w := postForm(router, baseForm())
	if w.Code != http.StatusOK {
		t.Fatalf("ingreso válido rechazado: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "pid-nuevo") {
		t.Fatalf("la respuesta debe devolver el PID para que el dispositivo lo guarde: %s", w.Body.String())
	}
	if len(backend.assignedPIDs) != 1 || backend.assignedPIDs[0] != "pid-nuevo" {
		t.Fatalf("el PID generado debía asignarse: %v", backend.assignedPIDs)
	}
	if backend.checkInCalled != 1 {
		t.Fatalf("esperaba 1 registro, hubo %d", backend.checkInCalled)
	}
	if got := backend.checkIns[0].PID; got != "pid-nuevo" {
		t.Fatalf("el registro debía viajar con el PID: %q", got)
	}
}

func TestCheckInForeignPIDRejected(t *testing.T) {
	backend := &fakeBackend{
		canRegister: true,
		identity:    &models.DriverIdentity{Name: "Otro", Vehicle: "auto"},
	}
	router := setup(t, backend)

	form := baseForm()
	form.Set("pid", "pid-ajeno")
	w := postForm(router, form)

	if w.Code != http.StatusConflict {
		t.Fatalf("PID de otro conductor debía dar 409, dio %d: %s", w.Code, w.Body.String())
	}
	if backend.checkInCalled != 0 {
		t.Fatalf("con PID ajeno no se registra ingreso")
	}
}
