package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/cinema-booking/internal/model"
)

type TicketStore struct {
	mu    sync.RWMutex
	items map[string]*model.Ticket
	// userID:sessionID -> ticket id
	byUserSession map[string]string
}

func NewTicketStore() *TicketStore {
	return &TicketStore{
		items:         make(map[string]*model.Ticket),
		byUserSession: make(map[string]string),
	}
}

// Save inserts or updates a ticket. A second ticket for the same user and
// session is a conflict, so is saving a used ticket over one that is already
// used.
func (s *TicketStore) Save(_ context.Context, t *model.Ticket) error {
	key := t.UserID + ":" + t.SessionID

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byUserSession[key]; ok && id != t.ID {
		return model.NewConflict(model.ErrDuplicateTicket)
	}
	if prev, ok := s.items[t.ID]; ok && prev.Used && t.Used {
		return model.NewConflict(model.ErrAlreadyUsed)
	}
	s.items[t.ID] = t.Clone()
	s.byUserSession[key] = t.ID
	return nil
}

func (s *TicketStore) FindByID(_ context.Context, id string) (*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}

func (s *TicketStore) FindByUserAndSession(_ context.Context, userID, sessionID string) (*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUserSession[userID+":"+sessionID]
	if !ok {
		return nil, nil
	}
	return s.items[id].Clone(), nil
}

func (s *TicketStore) FindBySession(_ context.Context, sessionID string) ([]*model.Ticket, error) {
	return s.collect(func(t *model.Ticket) bool { return t.SessionID == sessionID }, byPurchase), nil
}

func (s *TicketStore) FindByUser(_ context.Context, userID string) ([]*model.Ticket, error) {
	return s.collect(func(t *model.Ticket) bool { return t.UserID == userID }, byPurchase), nil
}

func (s *TicketStore) FindUsedByUser(_ context.Context, userID string) ([]*model.Ticket, error) {
	return s.collect(func(t *model.Ticket) bool { return t.UserID == userID && t.Used }, byUsedDesc), nil
}

func (s *TicketStore) FindUnusedByUser(_ context.Context, userID string) ([]*model.Ticket, error) {
	return s.collect(func(t *model.Ticket) bool { return t.UserID == userID && !t.Used }, byPurchase), nil
}

func (s *TicketStore) collect(keep func(*model.Ticket) bool, less func(a, b *model.Ticket) bool) []*model.Ticket {
	s.mu.RLock()
	out := make([]*model.Ticket, 0)
	for _, t := range s.items {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byPurchase(a, b *model.Ticket) bool {
	if !a.PurchaseDate.Equal(b.PurchaseDate) {
		return a.PurchaseDate.Before(b.PurchaseDate)
	}
	return a.ID < b.ID
}

func byUsedDesc(a, b *model.Ticket) bool {
	if a.UsedDate != nil && b.UsedDate != nil && !a.UsedDate.Equal(*b.UsedDate) {
		return a.UsedDate.After(*b.UsedDate)
	}
	return a.ID > b.ID
}
