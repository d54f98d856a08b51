package laporancontroller

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/render"
	"github.com/Gabo-code/excelasistSLR-test/viewmodel"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type Handler struct {
	Store *viewmodel.Store
}

func NewHandler(store *viewmodel.Store) *Handler {
	return &Handler{Store: store}
}

var reportHeaders = []string{"Conductor", "Fecha y hora", "Vehículo", "Salida", "Foto"}

// Export genera la planilla .xlsx del historial filtrado para el personal.
func (h *Handler) Export(c *gin.Context) {
	if !h.Store.Loaded() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message": render.LoadFailedPrefix + "aún no hay datos del servidor",
		})
		return
	}

	records, _ := h.Store.Snapshot()
	filters := viewmodel.Filters{
		Driver:  c.Query("driver"),
		Vehicle: c.Query("vehicle"),
		Date:    c.Query("date"),
	}
	filtered := viewmodel.Compute(records, filters, time.Now())

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("No se pudo cerrar la planilla generada: %v", err)
		}
	}()

	const sheet = "Asistencia"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "No se pudo generar el reporte"})
		return
	}

	for i, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "No se pudo generar el reporte"})
			return
		}
	}

	for i, row := range render.HistoryRows(filtered) {
		exit := "Pendiente"
		if filteredRecord := filtered[i]; filteredRecord.Closed() {
			exit = filteredRecord.ExitTime
		}
		values := []any{row.Driver, row.DateTime, row.Vehicle, exit, row.Photo}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "No se pudo generar el reporte"})
				return
			}
		}
	}

	filename := fmt.Sprintf("asistencia_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if _, err := f.WriteTo(c.Writer); err != nil {
		log.Printf("No se pudo escribir el reporte: %v", err)
	}
}
