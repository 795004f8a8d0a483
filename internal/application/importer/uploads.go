package importer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoque-api/internal/domain"
)

// Upload archivo parseado a la espera de /processar.
type Upload struct {
	ID           string
	OriginalName string
	DataType     string
	Table        *Table
	ExpiresAt    time.Time
}

// UploadStore guarda uploads en memoria con TTL. Los vencidos se descartan al consultar y al guardar.
type UploadStore struct {
	mu    sync.Mutex
	items map[string]*Upload
	ttl   time.Duration
	now   func() time.Time
}

// NewUploadStore construye el almacén; ttl <= 0 usa 30 minutos.
func NewUploadStore(ttl time.Duration, now func() time.Time) *UploadStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &UploadStore{items: make(map[string]*Upload), ttl: ttl, now: now}
}

// Put guarda la tabla y devuelve el upload con su identificador.
func (s *UploadStore) Put(originalName, dataType string, t *Table) *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, u := range s.items {
		if !now.Before(u.ExpiresAt) {
			delete(s.items, id)
		}
	}
	u := &Upload{
		ID:           uuid.New().String(),
		OriginalName: originalName,
		DataType:     dataType,
		Table:        t,
		ExpiresAt:    now.Add(s.ttl),
	}
	s.items[u.ID] = u
	return u
}

// Get devuelve el upload vigente o NotFound.
func (s *UploadStore) Get(id string) (*Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if ok && !s.now().Before(u.ExpiresAt) {
		delete(s.items, id)
		ok = false
	}
	if !ok {
		return nil, domain.NotFound("upload_id", id)
	}
	return u, nil
}

// Take retira el upload vigente de forma atómica: dos /processar concurrentes sobre el mismo
// upload no pueden obtenerlo ambos.
func (s *UploadStore) Take(id string) (*Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if ok {
		delete(s.items, id)
		ok = s.now().Before(u.ExpiresAt)
	}
	if !ok {
		return nil, domain.NotFound("upload_id", id)
	}
	return u, nil
}

// Restore devuelve un upload retirado con Take si no llegó a procesarse. Los vencidos se descartan.
func (s *UploadStore) Restore(u *Upload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now().Before(u.ExpiresAt) {
		s.items[u.ID] = u
	}
}

// Len cantidad de uploads guardados (incluye vencidos aún no purgados).
func (s *UploadStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
