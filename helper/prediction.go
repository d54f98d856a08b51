package helper

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/models"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/linear_models"
)

// Muestras mínimas para entrenar la regresión de hora de salida.
const minTrainingSamples = 3

func timeToMinutes(timeStr string) float64 {
	parts := strings.Split(timeStr, ":")
	if len(parts) < 2 {
		return 0
	}
	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])
	return float64(hours*60 + minutes)
}

func minutesToTime(minutes float64) string {
	if minutes < 0 {
		minutes = 0
	}
	hours := int(minutes/60) % 24
	mins := int(minutes) % 60
	return fmt.Sprintf("%02d:%02d", hours, mins)
}

// PredictExitTime entrena una regresión lineal hora de ingreso → hora de
// salida con el historial dado y estima la salida para un nuevo ingreso.
func PredictExitTime(history [][2]string, newCheckInTime string) (string, error) {
	if len(history) < minTrainingSamples {
		return "", fmt.Errorf("historial insuficiente para estimar (%d registros)", len(history))
	}

	var csvBuffer bytes.Buffer
	csvBuffer.WriteString("hora_salida,hora_ingreso\n")
	for _, record := range history {
		checkInMinutes := timeToMinutes(record[0])
		checkOutMinutes := timeToMinutes(record[1])
		csvBuffer.WriteString(fmt.Sprintf("%.2f,%.2f\n", checkOutMinutes, checkInMinutes))
	}

	instances, err := base.ParseCSVToInstances(csvBuffer.String(), true)
	if err != nil {
		return "", fmt.Errorf("no se pudo preparar el historial: %w", err)
	}

	model := linear_models.NewLinearRegression()
	if err := model.Fit(instances); err != nil {
		return "", fmt.Errorf("no se pudo entrenar el modelo: %w", err)
	}

	newCheckInMinutes := timeToMinutes(newCheckInTime)
	predCSV := fmt.Sprintf("hora_salida,hora_ingreso\n0.0,%.2f\n", newCheckInMinutes)

	predInstances, err := base.ParseCSVToInstances(predCSV, true)
	if err != nil {
		return "", fmt.Errorf("no se pudo preparar la predicción: %w", err)
	}

	predictions, err := model.Predict(predInstances)
	if err != nil {
		return "", fmt.Errorf("falló la predicción: %w", err)
	}

	classAttrs := predictions.AllClassAttributes()
	if len(classAttrs) == 0 {
		return "", fmt.Errorf("predicción sin atributo de clase")
	}

	classSpec := base.ResolveAttributes(predictions, classAttrs)[0]
	predictedBytes := predictions.Get(classSpec, 0)
	predictedMinutes := base.UnpackBytesToFloat(predictedBytes)

	return minutesToTime(predictedMinutes), nil
}

// ExitHistory arma pares (hora ingreso, hora salida) con los registros
// cerrados de hoy. La hora de salida llega como HH:MM, HH:MM:SS o como
// timestamp completo según la versión de la planilla.
func ExitHistory(records []models.AttendanceRecord, now time.Time) [][2]string {
	var history [][2]string
	for _, r := range records {
		if !r.Closed() || !r.SameLocalDay(now) {
			continue
		}
		exit := strings.TrimSpace(r.ExitTime)
		if t, ok := models.ParseTimestamp(exit); ok {
			exit = t.Format("15:04")
		}
		if !strings.Contains(exit, ":") {
			continue
		}
		history = append(history, [2]string{r.CheckIn.Format("15:04"), exit})
	}
	return history
}
