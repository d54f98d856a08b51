package checkincontroller

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Gabo-code/excelasistSLR-test/config"
	"github.com/Gabo-code/excelasistSLR-test/gateway"
	"github.com/Gabo-code/excelasistSLR-test/helper"
	"github.com/Gabo-code/excelasistSLR-test/models"

	"github.com/gin-gonic/gin"
)

// Backend es lo que el registro de ingreso necesita del gateway.
type Backend interface {
	GetAvailableDrivers(ctx context.Context) ([]string, error)
	CheckPendingExits(ctx context.Context, driverName string) (bool, error)
	CheckDriverStandby(ctx context.Context, driverName string) (bool, int, error)
	GetDriverByPID(ctx context.Context, pid string) (*models.DriverIdentity, error)
	GeneratePID(ctx context.Context) (string, error)
	AssignDriverPID(ctx context.Context, driverName, pid, vehicleType string) error
	SubmitCheckIn(ctx context.Context, in gateway.CheckInRequest) error
}

type Handler struct {
	Backend Backend
	// Refresh reconcilia el snapshot tras una mutación exitosa.
	Refresh func()
}

func NewHandler(backend Backend, refresh func()) *Handler {
	return &Handler{Backend: backend, Refresh: refresh}
}

// Drivers entrega la lista para el select de conductores.
func (h *Handler) Drivers(c *gin.Context) {
	drivers, err := h.Backend.GetAvailableDrivers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Error al cargar la lista de conductores"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

// CheckIn procesa el registro de ingreso: geocerca, salida pendiente,
// standby, PID y recién entonces el envío al backend. Cualquier falla deja
// todo como estaba; el reintento es siempre un nuevo click del usuario.
func (h *Handler) CheckIn(c *gin.Context) {
	driver := strings.TrimSpace(c.PostForm("driver"))
	vehicleType := strings.TrimSpace(c.PostForm("vehicleType"))
	timestamp := strings.TrimSpace(c.PostForm("timestamp"))
	if driver == "" || vehicleType == "" || timestamp == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Seleccione conductor, vehículo y hora de ingreso"})
		return
	}

	// La posición la captura el dispositivo; sin posición no hay geocerca
	// y sin geocerca no hay ingreso.
	lat, latErr := strconv.ParseFloat(c.PostForm("latitude"), 64)
	lon, lonErr := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No se pudo verificar la ubicación. Active el GPS e inténtelo de nuevo."})
		return
	}

	distance := helper.Geolocation(lat, lon, config.TargetLat, config.TargetLon)
	if !helper.WithinRange(distance, config.MaxDistanceMeters) {
		c.JSON(http.StatusForbidden, gin.H{
			"message": fmt.Sprintf("Ubicación fuera del rango permitido (%.0fm)", math.Round(distance)),
		})
		return
	}

	ctx := c.Request.Context()

	hasPending, err := h.Backend.CheckPendingExits(ctx, driver)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": gateway.UserMessage(err)})
		return
	}
	if hasPending {
		c.JSON(http.StatusConflict, gin.H{"message": "Tiene una salida pendiente por marcar. Avise al personal antes de un nuevo ingreso."})
		return
	}

	canRegister, remaining, err := h.Backend.CheckDriverStandby(ctx, driver)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": gateway.UserMessage(err)})
		return
	}
	if !canRegister {
		c.JSON(http.StatusConflict, gin.H{
			"message": fmt.Sprintf("Debe esperar %d minutos antes de volver a registrarse", remaining),
		})
		return
	}

	pid, err := h.resolvePID(ctx, c.PostForm("pid"), driver, vehicleType)
	if err != nil {
		status := http.StatusBadGateway
		if gateway.IsApplicationError(err) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"message": gateway.UserMessage(err)})
		return
	}

	photo, err := readPhoto(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No se pudo leer la foto capturada"})
		return
	}

	in := gateway.CheckInRequest{
		Driver:      driver,
		VehicleType: vehicleType,
		Timestamp:   timestamp,
		PID:         pid,
		Photo:       photo,
	}
	if err := h.Backend.SubmitCheckIn(ctx, in); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": gateway.UserMessage(err)})
		return
	}

	// Reconciliar el snapshot con la verdad del backend.
	if h.Refresh != nil {
		go h.Refresh()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Asistencia registrada correctamente",
		"pid":     pid,
	})
}

// resolvePID aplica el ciclo del PID: si el dispositivo no trae uno, se
// genera y se asigna; si trae uno ajeno, se rechaza; si trae uno sin
// registrar, se asigna al conductor seleccionado.
func (h *Handler) resolvePID(ctx context.Context, pid, driver, vehicleType string) (string, error) {
	pid = strings.TrimSpace(pid)
	if pid == "" {
		newPID, err := h.Backend.GeneratePID(ctx)
		if err != nil {
			return "", err
		}
		if err := h.Backend.AssignDriverPID(ctx, driver, newPID, vehicleType); err != nil {
			return "", err
		}
		return newPID, nil
	}

	identity, err := h.Backend.GetDriverByPID(ctx, pid)
	if err != nil {
		return "", err
	}
	if identity == nil {
		if err := h.Backend.AssignDriverPID(ctx, driver, pid, vehicleType); err != nil {
			return "", err
		}
		return pid, nil
	}
	if identity.Name != driver {
		return "", &gateway.GatewayError{
			Kind:    gateway.KindApplication,
			Message: fmt.Sprintf("Este dispositivo ya está registrado para %s", identity.Name),
		}
	}
	return pid, nil
}

func readPhoto(c *gin.Context) (*gateway.PhotoUpload, error) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		// Sin foto: el campo es opcional.
		return nil, nil
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &gateway.PhotoUpload{Filename: fileHeader.Filename, Data: data}, nil
}
