package catalog

import (
	"slices"

	"MiniCatalog/pkg/recordstore"
)

type ProductIn struct {
	Name     string `json:"name" validate:"required,max=100"`
	Category string `json:"category" validate:"required,max=100"`
	Score    string `json:"score" validate:"required,numeric"`
}

type Product struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Score    string `json:"score"`
	Reviews  []int  `json:"reviews"`
}

func (p Product) Key() int { return p.ID }

func (p Product) Clone() Product {
	p.Reviews = slices.Clone(p.Reviews)
	if p.Reviews == nil {
		p.Reviews = []int{}
	}
	return p
}

// ReviewIn is the creation payload. ProductID and User are filled in from the
// route and the caller's token, never from the body.
type ReviewIn struct {
	ProductID int
	Content   string
	User      string
}

type Review struct {
	ID        int    `json:"id"`
	ProductID int    `json:"product_id"`
	Content   string `json:"content"`
	User      string `json:"user"`
}

func (r Review) Key() int      { return r.ID }
func (r Review) Clone() Review { return r }

type (
	ProductStore = recordstore.Store[ProductIn, Product]
	ReviewStore  = recordstore.Store[ReviewIn, Review]
)

func NewProductStore() *ProductStore {
	return recordstore.New[ProductIn, Product](func(id int, in ProductIn) Product {
		return Product{
			ID:       id,
			Name:     in.Name,
			Category: in.Category,
			Score:    in.Score,
			Reviews:  []int{},
		}
	})
}

func NewReviewStore() *ReviewStore {
	return recordstore.New[ReviewIn, Review](func(id int, in ReviewIn) Review {
		return Review{
			ID:        id,
			ProductID: in.ProductID,
			Content:   in.Content,
			User:      in.User,
		}
	})
}
