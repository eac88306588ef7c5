package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"wardrobeapi/models"
	"wardrobeapi/stores"
)

// In-memory store fakes. They follow the gorm stores' ordering and ownership
// rules so handler and task tests run without postgres.

type MemoryUserStore struct {
	mu     sync.Mutex
	users  map[uint]models.UserAccount
	tokens map[uint][]models.UserPushToken
	nextID uint
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: map[uint]models.UserAccount{}, tokens: map[uint][]models.UserPushToken{}}
}

// Add stores u with a fresh id and returns it.
func (s *MemoryUserStore) Add(u models.UserAccount) models.UserAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return u
}

func (s *MemoryUserStore) AddToken(userID uint, token models.UserPushToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token.UserAccountID = userID
	s.tokens[userID] = append(s.tokens[userID], token)
}

func (s *MemoryUserStore) Get(_ context.Context, id uint) (models.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.UserAccount{}, stores.ErrNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) ListActive(context.Context) ([]models.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UserAccount, 0, len(s.users))
	for _, u := range s.users {
		if !u.Banned {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryUserStore) PushTokens(_ context.Context, userID uint) ([]models.UserPushToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.UserPushToken
	for _, t := range s.tokens[userID] {
		if t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

type MemoryClothingStore struct {
	mu     sync.Mutex
	items  map[uint]models.Clothing
	nextID uint
}

func NewMemoryClothingStore() *MemoryClothingStore {
	return &MemoryClothingStore{items: map[uint]models.Clothing{}}
}

func (s *MemoryClothingStore) ListByOwner(_ context.Context, ownerID uint) ([]models.Clothing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Clothing{}
	for _, c := range s.items {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryClothingStore) Get(_ context.Context, ownerID, id uint) (models.Clothing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok || c.OwnerID != ownerID {
		return models.Clothing{}, stores.ErrNotFound
	}
	return c, nil
}

func (s *MemoryClothingStore) GetByID(_ context.Context, id uint) (models.Clothing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return models.Clothing{}, stores.ErrNotFound
	}
	return c, nil
}

func (s *MemoryClothingStore) Create(_ context.Context, c *models.Clothing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if c.ProcessingStatus == "" {
		c.ProcessingStatus = models.ProcessingIdle
	}
	s.items[c.ID] = *c
	return nil
}

func (s *MemoryClothingStore) Save(_ context.Context, c *models.Clothing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()
	s.items[c.ID] = *c
	return nil
}

func (s *MemoryClothingStore) Delete(_ context.Context, ownerID, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok || c.OwnerID != ownerID {
		return stores.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryClothingStore) IncrementUsage(_ context.Context, ownerID, id uint) (models.Clothing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok || c.OwnerID != ownerID {
		return models.Clothing{}, stores.ErrNotFound
	}
	c.UsageCount++
	s.items[id] = c
	return c, nil
}

func (s *MemoryClothingStore) CountOwned(_ context.Context, ownerID uint, ids []uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[uint]bool{}
	var n int64
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := s.items[id]; ok && c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryClothingStore) CountUnworn(_ context.Context, ownerID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.items {
		if c.OwnerID == ownerID && c.UsageCount == 0 {
			n++
		}
	}
	return n, nil
}

type MemoryFavoriteStore struct {
	mu     sync.Mutex
	favs   map[uint]models.FavoriteOutfit
	nextID uint
}

func NewMemoryFavoriteStore() *MemoryFavoriteStore {
	return &MemoryFavoriteStore{favs: map[uint]models.FavoriteOutfit{}}
}

func (s *MemoryFavoriteStore) Create(_ context.Context, f *models.FavoriteOutfit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	f.ID = s.nextID
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	s.favs[f.ID] = *f
	return nil
}

func (s *MemoryFavoriteStore) ListByUser(_ context.Context, userID uint) ([]models.FavoriteOutfit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.FavoriteOutfit{}
	for _, f := range s.favs {
		if f.UserAccountID == userID {
			out = append(out, f)
		}
	}
	// newest first; ids break ties between rows created in the same instant
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryFavoriteStore) Delete(_ context.Context, userID, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.favs[id]
	if !ok || f.UserAccountID != userID {
		return stores.ErrNotFound
	}
	delete(s.favs, id)
	return nil
}

var (
	_ stores.UserStore     = (*MemoryUserStore)(nil)
	_ stores.ClothingStore = (*MemoryClothingStore)(nil)
	_ stores.FavoriteStore = (*MemoryFavoriteStore)(nil)
)
