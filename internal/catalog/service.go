package catalog

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrReviewNotFound  = errors.New("review not found")
)

// Service runs the product and review workflows on top of two independent
// stores. Calls that touch both stores are sequenced, not atomic.
type Service struct {
	products *ProductStore
	reviews  *ReviewStore
}

func NewService(products *ProductStore, reviews *ReviewStore) *Service {
	return &Service{products: products, reviews: reviews}
}

func (s *Service) ListProducts() []Product {
	return s.products.GetAll()
}

func (s *Service) GetProduct(id int) (Product, error) {
	p, ok := s.products.Get(id)
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *Service) CreateProduct(in ProductIn) Product {
	return s.products.Save(in)
}

// UpdateProduct replaces the product fields and keeps its review links.
func (s *Service) UpdateProduct(id int, in ProductIn) (Product, error) {
	p, ok, err := s.products.Modify(id, func(cur Product) Product {
		cur.Name = in.Name
		cur.Category = in.Category
		cur.Score = in.Score
		return cur
	})
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

// DeleteProduct removes the product and then every review linked to it.
func (s *Service) DeleteProduct(id int) (Product, error) {
	p, ok := s.products.Delete(id)
	if !ok {
		return Product{}, ErrProductNotFound
	}
	for _, rid := range p.Reviews {
		s.reviews.Delete(rid)
	}
	return p, nil
}

// ListReviews returns the product's reviews in the order they were linked.
func (s *Service) ListReviews(pid int) ([]Review, error) {
	p, ok := s.products.Get(pid)
	if !ok {
		return nil, ErrProductNotFound
	}

	out := make([]Review, 0, len(p.Reviews))
	for _, rid := range p.Reviews {
		// a review deleted between the two reads is simply skipped
		if r, ok := s.reviews.Get(rid); ok && r.ProductID == pid {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) GetReview(pid, rid int) (Review, error) {
	if _, ok := s.products.Get(pid); !ok {
		return Review{}, ErrProductNotFound
	}

	r, ok := s.reviews.Get(rid)
	if !ok || r.ProductID != pid {
		return Review{}, ErrReviewNotFound
	}
	return r, nil
}

// CreateReview saves the review and links it to its product. If the product
// disappears in between, the review is removed again.
func (s *Service) CreateReview(pid int, content, user string) (Review, error) {
	if _, ok := s.products.Get(pid); !ok {
		return Review{}, ErrProductNotFound
	}

	r := s.reviews.Save(ReviewIn{ProductID: pid, Content: content, User: user})

	_, ok, err := s.products.Modify(pid, func(cur Product) Product {
		cur.Reviews = append(cur.Reviews, r.ID)
		return cur
	})
	if err != nil || !ok {
		s.reviews.Delete(r.ID)
		if err != nil {
			return Review{}, fmt.Errorf("link review %d to product %d: %w", r.ID, pid, err)
		}
		return Review{}, ErrProductNotFound
	}

	return r, nil
}

// UpdateReview rewrites the content; author and product stay as they were.
func (s *Service) UpdateReview(pid, rid int, content string) (Review, error) {
	cur, err := s.GetReview(pid, rid)
	if err != nil {
		return Review{}, err
	}

	r, ok := s.reviews.Update(rid, ReviewIn{ProductID: pid, Content: content, User: cur.User})
	if !ok {
		return Review{}, ErrReviewNotFound
	}
	return r, nil
}

// DeleteReview removes the review and then unlinks it from its product.
func (s *Service) DeleteReview(pid, rid int) (Review, error) {
	if _, err := s.GetReview(pid, rid); err != nil {
		return Review{}, err
	}

	r, ok := s.reviews.Delete(rid)
	if !ok {
		return Review{}, ErrReviewNotFound
	}

	_, _, err := s.products.Modify(pid, func(cur Product) Product {
		cur.Reviews = slices.DeleteFunc(cur.Reviews, func(id int) bool { return id == rid })
		return cur
	})
	if err != nil {
		return Review{}, fmt.Errorf("unlink review %d from product %d: %w", rid, pid, err)
	}
	return r, nil
}

// Reset empties both stores and restarts their identities at 0.
func (s *Service) Reset() {
	s.reviews.Reset()
	s.products.Reset()
}

func (s *Service) ProductCount() int { return s.products.Len() }
func (s *Service) ReviewCount() int  { return s.reviews.Len() }
