package workflow

import (
	"sort"
	"sync"

	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// PendingStore guarda las transiciones que esperan un dato humano.
// Una entrada pendiente por Request: un nuevo evento de estado reemplaza la anterior.
type PendingStore struct {
	mu    sync.Mutex
	items map[string]entity.PendingInput
}

// NewPendingStore construye el almacén vacío.
func NewPendingStore() *PendingStore {
	return &PendingStore{items: make(map[string]entity.PendingInput)}
}

// Put registra la entrada y descarta cualquier otra del mismo Request.
func (s *PendingStore) Put(p entity.PendingInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.items {
		if existing.RequestID == p.RequestID {
			delete(s.items, id)
		}
	}
	s.items[p.ID] = p
}

// Get devuelve la entrada por id.
func (s *PendingStore) Get(id string) (entity.PendingInput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	return p, ok
}

// Remove elimina la entrada.
func (s *PendingStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// DropRequest elimina las entradas de un Request.
func (s *PendingStore) DropRequest(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.items {
		if p.RequestID == requestID {
			delete(s.items, id)
		}
	}
}

// List devuelve las entradas ordenadas por antigüedad.
func (s *PendingStore) List() []entity.PendingInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.PendingInput, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
