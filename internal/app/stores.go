package app

import (
	"MiniCatalog/internal/auth"
	"MiniCatalog/internal/catalog"
)

// Stores is every in-memory collection the service owns. Nothing here
// survives a restart.
type Stores struct {
	Products *catalog.ProductStore
	Reviews  *catalog.ReviewStore
	Users    *auth.MemStore
}

func NewStores() *Stores {
	return &Stores{
		Products: catalog.NewProductStore(),
		Reviews:  catalog.NewReviewStore(),
		Users:    auth.NewMemStore(),
	}
}

func (s *Stores) catalog() *catalog.Service {
	return catalog.NewService(s.Products, s.Reviews)
}

// Reset empties all collections and restarts product and review ids at 0.
func (s *Stores) Reset() {
	s.catalog().Reset()
	s.Users.Reset()
}

func (s *Stores) counts() map[string]func() int {
	c := s.catalog()
	return map[string]func() int{
		"product": c.ProductCount,
		"review":  c.ReviewCount,
		"user":    s.Users.Len,
	}
}
