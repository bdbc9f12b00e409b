package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newService() *Service {
	return NewService(NewProductStore(), NewReviewStore())
}

var mockProducts = []ProductIn{
	{Name: "Fairphone 4", Category: "smartphone", Score: "90"},
	{Name: "iPhone 14", Category: "smartphone", Score: "75"},
}

func TestService_ProductCRUD(t *testing.T) {
	s := newService()

	for i, in := range mockProducts {
		p := s.CreateProduct(in)
		assert.Equal(t, i, p.ID)
		assert.Equal(t, []int{}, p.Reviews)
	}
	assert.Len(t, s.ListProducts(), 2)

	got, err := s.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, "iPhone 14", got.Name)

	_, err = s.GetProduct(3)
	assert.ErrorIs(t, err, ErrProductNotFound)

	updated, err := s.UpdateProduct(0, ProductIn{Name: "Fairphone 4", Category: "smartphone", Score: "89"})
	require.NoError(t, err)
	assert.Equal(t, "89", updated.Score)

	_, err = s.UpdateProduct(9, mockProducts[0])
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = s.DeleteProduct(0)
	require.NoError(t, err)
	_, err = s.DeleteProduct(0)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 1, s.ProductCount())
}

func TestService_ReviewLinking(t *testing.T) {
	s := newService()
	s.CreateProduct(mockProducts[0])
	p := s.CreateProduct(mockProducts[1])

	contents := []string{"I really like this product", "I don't really like this product", "I love this product"}
	for _, c := range contents {
		_, err := s.CreateReview(p.ID, c, "martin.muller@google.com")
		require.NoError(t, err)
	}

	linked, err := s.GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, linked.Reviews)

	reviews, err := s.ListReviews(p.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	for i, r := range reviews {
		assert.Equal(t, contents[i], r.Content)
		assert.Equal(t, "martin.muller@google.com", r.User)
		assert.Equal(t, p.ID, r.ProductID)
	}

	empty, err := s.ListReviews(0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = s.CreateReview(5, "nope", "x@example.com")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 3, s.ReviewCount())
}

func TestService_UpdateProductKeepsReviews(t *testing.T) {
	s := newService()
	p := s.CreateProduct(mockProducts[0])
	r, err := s.CreateReview(p.ID, "great", "a@example.com")
	require.NoError(t, err)

	updated, err := s.UpdateProduct(p.ID, ProductIn{Name: "Fairphone 5", Category: "smartphone", Score: "95"})
	require.NoError(t, err)
	assert.Equal(t, []int{r.ID}, updated.Reviews)
}

func TestService_ReviewBelongsToProduct(t *testing.T) {
	s := newService()
	a := s.CreateProduct(mockProducts[0])
	b := s.CreateProduct(mockProducts[1])
	r, err := s.CreateReview(a.ID, "on a", "a@example.com")
	require.NoError(t, err)

	_, err = s.GetReview(b.ID, r.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)

	_, err = s.UpdateReview(b.ID, r.ID, "moved?")
	assert.ErrorIs(t, err, ErrReviewNotFound)

	_, err = s.DeleteReview(b.ID, r.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)

	_, err = s.GetReview(7, r.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestService_UpdateReviewKeepsAuthor(t *testing.T) {
	s := newService()
	p := s.CreateProduct(mockProducts[0])
	r, err := s.CreateReview(p.ID, "ok", "author@example.com")
	require.NoError(t, err)

	updated, err := s.UpdateReview(p.ID, r.ID, "Best product ever")
	require.NoError(t, err)
	assert.Equal(t, Review{ID: r.ID, ProductID: p.ID, Content: "Best product ever", User: "author@example.com"}, updated)
}

func TestService_DeleteReviewUnlinks(t *testing.T) {
	s := newService()
	p := s.CreateProduct(mockProducts[0])
	r0, _ := s.CreateReview(p.ID, "first", "a@example.com")
	r1, _ := s.CreateReview(p.ID, "second", "a@example.com")

	deleted, err := s.DeleteReview(p.ID, r0.ID)
	require.NoError(t, err)
	assert.Equal(t, r0, deleted)

	got, _ := s.GetProduct(p.ID)
	assert.Equal(t, []int{r1.ID}, got.Reviews)

	_, err = s.DeleteReview(p.ID, r0.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestService_DeleteProductCascades(t *testing.T) {
	s := newService()
	p := s.CreateProduct(mockProducts[0])
	other := s.CreateProduct(mockProducts[1])
	s.CreateReview(p.ID, "a", "a@example.com")
	s.CreateReview(p.ID, "b", "a@example.com")
	kept, _ := s.CreateReview(other.ID, "c", "a@example.com")

	_, err := s.DeleteProduct(p.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, s.ReviewCount())
	got, err := s.GetReview(other.ID, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, kept, got)
}

func TestService_ConcurrentReviewsOnOneProduct(t *testing.T) {
	s := newService()
	p := s.CreateProduct(mockProducts[0])

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, err := s.CreateReview(p.ID, "concurrent", "a@example.com")
			return err
		})
	}
	require.NoError(t, g.Wait())

	got, _ := s.GetProduct(p.ID)
	assert.Len(t, got.Reviews, 50)

	reviews, err := s.ListReviews(p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 50)
}

func TestService_Reset(t *testing.T) {
	s := newService()
	p := s.CreateProduct(mockProducts[0])
	s.CreateReview(p.ID, "x", "a@example.com")

	s.Reset()

	assert.Empty(t, s.ListProducts())
	assert.Equal(t, 0, s.ReviewCount())
	assert.Equal(t, 0, s.CreateProduct(mockProducts[1]).ID)
}
