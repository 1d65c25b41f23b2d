package storage

import (
	"context"
	"sort"
	"sync"

	"brokerage/internal/domain"
)

// In-memory stores back the development mode and the unit tests. They
// intentionally favor clarity over performance.
type InMemoryClientStore struct {
	mu      sync.RWMutex
	clients map[string]domain.ClientRecord
}

func NewInMemoryClientStore() *InMemoryClientStore {
	return &InMemoryClientStore{clients: make(map[string]domain.ClientRecord)}
}

func (s *InMemoryClientStore) Save(_ context.Context, rec domain.ClientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[rec.NationalID]; exists {
		return ErrDuplicate
	}
	s.clients[rec.NationalID] = rec
	return nil
}

func (s *InMemoryClientStore) FindByNationalID(_ context.Context, nationalID string) (domain.ClientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.clients[nationalID]; ok {
		return rec, nil
	}
	return domain.ClientRecord{}, ErrNotFound
}

func (s *InMemoryClientStore) List(_ context.Context) ([]domain.ClientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ClientRecord, 0, len(s.clients))
	for _, rec := range s.clients {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NationalID < out[j].NationalID })
	return out, nil
}

type InMemoryProductStore struct {
	mu       sync.RWMutex
	products map[string]domain.ProductRecord
}

func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{products: make(map[string]domain.ProductRecord)}
}

func (s *InMemoryProductStore) Save(_ context.Context, rec domain.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[rec.ID]; exists {
		return ErrDuplicate
	}
	s.products[rec.ID] = rec
	return nil
}

func (s *InMemoryProductStore) FindByID(_ context.Context, id string) (domain.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.products[id]; ok {
		return rec, nil
	}
	return domain.ProductRecord{}, ErrNotFound
}

func (s *InMemoryProductStore) List(_ context.Context) ([]domain.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ProductRecord, 0, len(s.products))
	for _, rec := range s.products {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type InMemoryPolicyStore struct {
	mu       sync.RWMutex
	policies map[string]domain.PolicyRecord
}

func NewInMemoryPolicyStore() *InMemoryPolicyStore {
	return &InMemoryPolicyStore{policies: make(map[string]domain.PolicyRecord)}
}

// Save upserts. Policies are re-saved on cancellation, premium
// recalculation and claim attachment, so overwriting is intended.
func (s *InMemoryPolicyStore) Save(_ context.Context, rec domain.PolicyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[rec.Number] = rec
	return nil
}

func (s *InMemoryPolicyStore) FindByNumber(_ context.Context, number string) (domain.PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.policies[number]; ok {
		return rec, nil
	}
	return domain.PolicyRecord{}, ErrNotFound
}

func (s *InMemoryPolicyStore) ListByClient(_ context.Context, nationalID string) ([]domain.PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PolicyRecord
	for _, rec := range s.policies {
		if rec.ClientNationalID == nationalID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *InMemoryPolicyStore) List(_ context.Context) ([]domain.PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PolicyRecord, 0, len(s.policies))
	for _, rec := range s.policies {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

type InMemoryClaimStore struct {
	mu     sync.RWMutex
	claims map[string]domain.ClaimRecord
}

func NewInMemoryClaimStore() *InMemoryClaimStore {
	return &InMemoryClaimStore{claims: make(map[string]domain.ClaimRecord)}
}

// Save upserts so that review decisions can overwrite the stored status.
func (s *InMemoryClaimStore) Save(_ context.Context, rec domain.ClaimRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims[rec.ID] = rec
	return nil
}

func (s *InMemoryClaimStore) FindByID(_ context.Context, id string) (domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.claims[id]; ok {
		return rec, nil
	}
	return domain.ClaimRecord{}, ErrNotFound
}

func (s *InMemoryClaimStore) ListByPolicy(_ context.Context, policyNumber string) ([]domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ClaimRecord
	for _, rec := range s.claims {
		if rec.PolicyNumber == policyNumber {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryClaimStore) List(_ context.Context) ([]domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ClaimRecord, 0, len(s.claims))
	for _, rec := range s.claims {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
