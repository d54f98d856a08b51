package laporancontroller

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/models"
	"github.com/Gabo-code/excelasistSLR-test/viewmodel"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type fakeSource struct {
	records []models.AttendanceRecord
}

func (f *fakeSource) GetAttendances(context.Context) ([]models.AttendanceRecord, error) {
	return f.records, nil
}

func TestExportGeneratesWorkbook(t *testing.T) {
	gin.SetMode(gin.TestMode)

	src := &fakeSource{records: models.Ingest([]models.AttendanceRecord{
		{Driver: "A", VehicleType: "moto", Timestamp: time.Now().Format("2006-01-02T15:04:05")},
		{Driver: "B", VehicleType: "auto", Timestamp: time.Now().Format("2006-01-02T15:04:05"), ExitTime: "12:30", PhotoURL: "https://fotos/b.jpg"},
	})}
	store := viewmodel.NewStore()
	if err := store.Refresh(context.Background(), src); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	router := gin.New()
	router.GET("/report.xlsx", NewHandler(store).Export)

	req := httptest.NewRequest(http.MethodGet, "/report.xlsx", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("la respuesta no es un .xlsx válido: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Asistencia")
	if err != nil {
		t.Fatalf("hoja Asistencia: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("esperaba encabezado + 2 filas, obtuve %d", len(rows))
	}
	if rows[0][0] != "Conductor" {
		t.Fatalf("encabezado inesperado: %v", rows[0])
	}
	if rows[1][3] != "Pendiente" {
		t.Fatalf("A sigue pendiente: %v", rows[1])
	}
	if rows[2][3] != "12:30" {
		t.Fatalf("la salida de B se perdió: %v", rows[2])
	}
}
