package viewmodel

import (
	"context"
	"sync"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/models"
)

// AttendanceSource es lo que el store necesita del gateway.
type AttendanceSource interface {
	GetAttendances(ctx context.Context) ([]models.AttendanceRecord, error)
}

// Store guarda el último snapshot de registros bajado del backend. Los
// refrescos que se crucen resuelven último-gana: cada Refresh reemplaza
// el snapshot completo, nunca lo muta.
type Store struct {
	mu        sync.RWMutex
	records   []models.AttendanceRecord
	fetchedAt time.Time
}

func NewStore() *Store {
	return &Store{}
}

// Refresh baja los registros y reemplaza el snapshot. En caso de error el
// snapshot anterior queda intacto.
func (s *Store) Refresh(ctx context.Context, src AttendanceSource) error {
	records, err := src.GetAttendances(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records = records
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Snapshot devuelve el último conjunto de registros y cuándo se bajó. El
// slice devuelto no debe mutarse; Compute tampoco lo hace.
func (s *Store) Snapshot() ([]models.AttendanceRecord, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.fetchedAt
}

// Loaded indica si alguna bajada tuvo éxito alguna vez.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.fetchedAt.IsZero()
}
