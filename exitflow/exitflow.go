package exitflow

import (
	"context"
	"errors"
	"sync"

	"github.com/Gabo-code/excelasistSLR-test/models"
)

// ExitSender es lo que el flujo necesita del gateway.
type ExitSender interface {
	MarkExit(ctx context.Context, sub models.ExitSubmission) error
}

var (
	// ErrRowBusy: ya hay un envío en vuelo para ese registro.
	ErrRowBusy = errors.New("ya hay una salida en proceso para este registro")
	// ErrNotOpen: se intentó confirmar o cancelar sin modal abierto.
	ErrNotOpen = errors.New("no hay un formulario de salida abierto para este registro")
)

// AbsentMarker es el contador efímero de un conductor marcado ausente.
// Count vuelve a 0 al marcarlo y sube en 1 cada vez que OTRO conductor
// pendiente marca salida. Vive solo lo que dura la sesión del personal.
type AbsentMarker struct {
	Count int `json:"count"`
	Index int `json:"index"`
}

type session struct {
	absent map[string]*AbsentMarker
	open   map[string]bool // registros con modal abierto en esta sesión
}

// Workflow es la máquina de estados del marcaje de salida:
// Idle → ModalOpen → Submitting → (Success | Failed), más Cancel.
// Garantiza a lo más un envío en vuelo por registro.
type Workflow struct {
	mu          sync.Mutex
	inFlight    map[string]bool // por timestamp de registro
	sessions    map[string]*session
	sender      ExitSender
	allowCarros bool
}

func New(sender ExitSender, allowCarros bool) *Workflow {
	return &Workflow{
		inFlight:    map[string]bool{},
		sessions:    map[string]*session{},
		sender:      sender,
		allowCarros: allowCarros,
	}
}

func (w *Workflow) sessionLocked(id string) *session {
	s, ok := w.sessions[id]
	if !ok {
		s = &session{absent: map[string]*AbsentMarker{}, open: map[string]bool{}}
		w.sessions[id] = s
	}
	return s
}

// Open pasa el registro a ModalOpen. Rechaza registros con un envío en
// vuelo en vez de encolar un segundo modal.
func (w *Workflow) Open(sessionID, timestamp string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[timestamp] {
		return ErrRowBusy
	}
	w.sessionLocked(sessionID).open[timestamp] = true
	return nil
}

// Cancel vuelve a Idle sin tocar el backend.
func (w *Workflow) Cancel(sessionID, timestamp string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.sessionLocked(sessionID)
	if !s.open[timestamp] {
		return ErrNotOpen
	}
	delete(s.open, timestamp)
	return nil
}

// MarkAbsent crea o reinicia el marcador del conductor: el contador
// siempre parte en 0 al marcar.
func (w *Workflow) MarkAbsent(sessionID, driverName string, rowIndex int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.sessionLocked(sessionID)
	s.absent[driverName] = &AbsentMarker{Count: 0, Index: rowIndex}
}

// Markers devuelve una copia de los marcadores de la sesión.
func (w *Workflow) Markers(sessionID string) map[string]AbsentMarker {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.sessionLocked(sessionID)
	out := make(map[string]AbsentMarker, len(s.absent))
	for name, m := range s.absent {
		out[name] = *m
	}
	return out
}

// Confirm valida el formulario y, solo si pasa, envía el cierre una única
// vez. exitingDriver es el conductor del registro que sale; su propio
// marcador se descarta y los de los demás suben en 1.
func (w *Workflow) Confirm(ctx context.Context, sessionID, exitingDriver string, form models.ExitForm) (models.FieldErrors, error) {
	sub, fieldErrs := form.Validate(w.allowCarros)
	if !fieldErrs.Valid() {
		// La validación bloquea antes de Submitting: cero peticiones.
		return fieldErrs, nil
	}

	w.mu.Lock()
	s := w.sessionLocked(sessionID)
	if !s.open[sub.Timestamp] {
		w.mu.Unlock()
		return nil, ErrNotOpen
	}
	if w.inFlight[sub.Timestamp] {
		w.mu.Unlock()
		return nil, ErrRowBusy
	}
	w.inFlight[sub.Timestamp] = true
	w.mu.Unlock()

	err := w.sender.MarkExit(ctx, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, sub.Timestamp)
	if err != nil {
		// Failed: el modal sigue abierto y el control queda libre para
		// reintentar con otro click explícito.
		return nil, err
	}

	delete(s.open, sub.Timestamp)
	delete(s.absent, exitingDriver)
	for _, m := range s.absent {
		m.Count++
	}
	return nil, nil
}

// InFlight informa si un registro tiene un envío en curso.
func (w *Workflow) InFlight(timestamp string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight[timestamp]
}
