package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/models"
)

// Client habla con el servicio de planilla. El backend solo entiende
// querystrings con "action" para GET y cuerpos form-urlencoded (o
// multipart cuando viaja una foto) para POST; nunca JSON en el cuerpo.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// envelope recoge los campos de error que puede traer una respuesta 2xx.
type envelope struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Kind: KindNetwork, Message: "Error de conexión: no se pudo contactar al servidor"}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GatewayError{Kind: KindNetwork, Message: "Error de conexión: respuesta incompleta del servidor"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GatewayError{
			Kind:    KindHTTP,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("Error del servidor (HTTP %d)", resp.StatusCode),
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &GatewayError{Kind: KindApplication, Message: "Respuesta ilegible del servidor"}
	}
	if env.Error != "" {
		return &GatewayError{Kind: KindApplication, Message: env.Error}
	}
	if env.Status != "" && env.Status != "success" {
		msg := env.Message
		if msg == "" {
			msg = "Error desconocido"
		}
		return &GatewayError{Kind: KindApplication, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return &GatewayError{Kind: KindApplication, Message: "Respuesta ilegible del servidor"}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	u := c.baseURL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &GatewayError{Kind: KindNetwork, Message: err.Error()}
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &GatewayError{Kind: KindNetwork, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

// GetAttendances baja todos los registros y los deja ingeridos (clase de
// vehículo e instante de ingreso resueltos).
func (c *Client) GetAttendances(ctx context.Context) ([]models.AttendanceRecord, error) {
	var resp struct {
		Attendances []models.AttendanceRecord `json:"attendances"`
	}
	params := url.Values{"action": {"getAttendances"}}
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	return models.Ingest(resp.Attendances), nil
}

func (c *Client) GetSectors(ctx context.Context) ([]string, error) {
	var resp struct {
		Sectors []string `json:"sectors"`
	}
	params := url.Values{"action": {"getSectors"}}
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	return resp.Sectors, nil
}

func (c *Client) GetAvailableDrivers(ctx context.Context) ([]string, error) {
	var resp struct {
		Drivers []string `json:"drivers"`
	}
	if err := c.get(ctx, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Drivers, nil
}

// GetDriverByPID devuelve nil sin error cuando el PID no está registrado.
func (c *Client) GetDriverByPID(ctx context.Context, pid string) (*models.DriverIdentity, error) {
	var resp struct {
		Driver *models.DriverIdentity `json:"driver"`
	}
	params := url.Values{"action": {"getDriverByPID"}, "pid": {pid}}
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	return resp.Driver, nil
}

func (c *Client) GeneratePID(ctx context.Context) (string, error) {
	var resp struct {
		PID string `json:"pid"`
	}
	params := url.Values{"action": {"generatePID"}}
	if err := c.get(ctx, params, &resp); err != nil {
		return "", err
	}
	return resp.PID, nil
}

// CheckDriverStandby consulta si el conductor cumplió la espera mínima
// entre salida e ingreso. Devuelve (puedeRegistrar, minutosRestantes).
func (c *Client) CheckDriverStandby(ctx context.Context, driverName string) (bool, int, error) {
	var resp struct {
		CanRegister      bool `json:"canRegister"`
		RemainingMinutes int  `json:"remainingMinutes"`
	}
	params := url.Values{"action": {"checkDriverStandby"}, "driverName": {driverName}}
	if err := c.get(ctx, params, &resp); err != nil {
		return false, 0, err
	}
	return resp.CanRegister, resp.RemainingMinutes, nil
}

func (c *Client) CheckPendingExits(ctx context.Context, driverName string) (bool, error) {
	var resp struct {
		HasPendingExit bool `json:"hasPendingExit"`
	}
	params := url.Values{"action": {"checkPendingExits"}, "driverName": {driverName}}
	if err := c.get(ctx, params, &resp); err != nil {
		return false, err
	}
	return resp.HasPendingExit, nil
}

// PhotoUpload es la foto capturada por el kiosko, lista para reenviarse
// como parte multipart.
type PhotoUpload struct {
	Filename string
	Data     []byte
}

type CheckInRequest struct {
	Driver      string
	VehicleType string
	Timestamp   string
	PID         string
	Photo       *PhotoUpload
}

// SubmitCheckIn registra el ingreso. Con foto el cuerpo va multipart; sin
// foto, form-urlencoded plano.
func (c *Client) SubmitCheckIn(ctx context.Context, in CheckInRequest) error {
	if in.Photo == nil {
		form := url.Values{
			"driver":      {in.Driver},
			"vehicleType": {in.VehicleType},
			"timestamp":   {in.Timestamp},
		}
		if in.PID != "" {
			form.Set("pid", in.PID)
		}
		return c.postForm(ctx, form, nil)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"driver":      in.Driver,
		"vehicleType": in.VehicleType,
		"timestamp":   in.Timestamp,
	}
	if in.PID != "" {
		fields["pid"] = in.PID
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return &GatewayError{Kind: KindNetwork, Message: err.Error()}
		}
	}
	part, err := w.CreateFormFile("photo", in.Photo.Filename)
	if err != nil {
		return &GatewayError{Kind: KindNetwork, Message: err.Error()}
	}
	if _, err := part.Write(in.Photo.Data); err != nil {
		return &GatewayError{Kind: KindNetwork, Message: err.Error()}
	}
	if err := w.Close(); err != nil {
		return &GatewayError{Kind: KindNetwork, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &buf)
	if err != nil {
		return &GatewayError{Kind: KindNetwork, Message: err.Error()}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, nil)
}

// MarkExit envía el cierre de un registro. Los sectores viajan unidos por
// coma, como los espera la planilla.
func (c *Client) MarkExit(ctx context.Context, sub models.ExitSubmission) error {
	form := url.Values{
		"action":    {"markExit"},
		"timestamp": {sub.Timestamp},
		"bolsos":    {strconv.Itoa(sub.Bolsos)},
		"sector":    {strings.Join(sub.Sectors, ", ")},
		"ssl":       {strconv.Itoa(sub.SSL)},
	}
	if sub.Carros != nil {
		form.Set("carros", strconv.Itoa(*sub.Carros))
	}
	return c.postForm(ctx, form, nil)
}

func (c *Client) AssignDriverPID(ctx context.Context, driverName, pid, vehicleType string) error {
	form := url.Values{
		"action":      {"assignDriverPID"},
		"driverName":  {driverName},
		"pid":         {pid},
		"vehicleType": {vehicleType},
	}
	return c.postForm(ctx, form, nil)
}
