package recordstore_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"MiniCatalog/pkg/recordstore"
)

type productIn struct {
	Name     string
	Category string
	Score    string
}

type product struct {
	ID       int
	Name     string
	Category string
	Score    string
	Reviews  []int
}

func (p product) Key() int { return p.ID }

func (p product) Clone() product {
	p.Reviews = slices.Clone(p.Reviews)
	return p
}

func buildProduct(id int, in productIn) product {
	return product{ID: id, Name: in.Name, Category: in.Category, Score: in.Score, Reviews: []int{}}
}

func newStore() *recordstore.Store[productIn, product] {
	return recordstore.New[productIn, product](buildProduct)
}

var (
	fairphone = productIn{Name: "Fairphone 4", Category: "smartphone", Score: "90"}
	iphone    = productIn{Name: "iPhone 14", Category: "smartphone", Score: "75"}
)

func TestSave_AssignsSequentialIDs(t *testing.T) {
	s := newStore()

	for i := 0; i < 5; i++ {
		got := s.Save(fairphone)
		assert.Equal(t, i, got.ID)
	}
	assert.Equal(t, 5, s.Len())
}

func TestSave_RoundTrip(t *testing.T) {
	s := newStore()

	saved := s.Save(iphone)
	got, ok := s.Get(saved.ID)

	require.True(t, ok)
	assert.Equal(t, saved, got)
	assert.Equal(t, []int{}, got.Reviews)
}

func TestGet_Missing(t *testing.T) {
	s := newStore()
	s.Save(fairphone)

	_, ok := s.Get(1)
	assert.False(t, ok)

	_, ok = s.Get(-1)
	assert.False(t, ok)
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := newStore()
	saved := s.Save(fairphone)

	got, _ := s.Get(saved.ID)
	got.Name = "changed"
	got.Reviews = append(got.Reviews, 42)

	again, _ := s.Get(saved.ID)
	assert.Equal(t, "Fairphone 4", again.Name)
	assert.Empty(t, again.Reviews)
}

func TestGetAll_SnapshotInInsertionOrder(t *testing.T) {
	s := newStore()
	assert.NotNil(t, s.GetAll())
	assert.Empty(t, s.GetAll())

	for i := 0; i < 20; i++ {
		s.Save(productIn{Name: "p"})
	}
	s.Delete(3)
	s.Delete(11)

	all := s.GetAll()
	require.Len(t, all, 18)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	all[0].Name = "mutated"
	first, _ := s.Get(all[0].ID)
	assert.Equal(t, "p", first.Name)
}

func TestUpdate(t *testing.T) {
	s := newStore()
	s.Save(fairphone)
	s.Save(iphone)

	updated, ok := s.Update(0, productIn{Name: "Updated Product", Category: "Updated Category", Score: "19"})
	require.True(t, ok)
	assert.Equal(t, product{ID: 0, Name: "Updated Product", Category: "Updated Category", Score: "19", Reviews: []int{}}, updated)

	got, _ := s.Get(0)
	assert.Equal(t, updated, got)
}

func TestUpdate_NeverUpserts(t *testing.T) {
	s := newStore()
	s.Save(fairphone)

	_, ok := s.Update(7, iphone)
	assert.False(t, ok)
	assert.Len(t, s.GetAll(), 1)

	_, found := s.Get(7)
	assert.False(t, found)

	// the counter is untouched by a failed update
	assert.Equal(t, 1, s.Save(iphone).ID)
}

func TestReplace(t *testing.T) {
	s := newStore()
	orig := s.Save(fairphone)

	next := orig
	next.Score = "95"
	next.Reviews = []int{4, 2}

	got, ok, err := s.Replace(orig.ID, next)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, next, got)

	// the store keeps its own copy of the slice
	next.Reviews[0] = 99
	stored, _ := s.Get(orig.ID)
	assert.Equal(t, []int{4, 2}, stored.Reviews)
}

func TestReplace_IdentityMismatch(t *testing.T) {
	s := newStore()
	before := s.Save(fairphone)
	s.Save(iphone)

	_, ok, err := s.Replace(0, product{ID: 1, Name: "Updated Product", Category: "Updated Category", Score: "19"})
	require.ErrorIs(t, err, recordstore.ErrIdentityMismatch)
	assert.False(t, ok)

	got, _ := s.Get(0)
	assert.Equal(t, before, got)
}

func TestReplace_MismatchReportedBeforeAbsence(t *testing.T) {
	s := newStore()

	_, ok, err := s.Replace(5, product{ID: 6})
	assert.ErrorIs(t, err, recordstore.ErrIdentityMismatch)
	assert.False(t, ok)
}

func TestReplace_Missing(t *testing.T) {
	s := newStore()

	_, ok, err := s.Replace(3, product{ID: 3, Name: "ghost"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestModify(t *testing.T) {
	s := newStore()
	p := s.Save(fairphone)

	got, ok, err := s.Modify(p.ID, func(cur product) product {
		cur.Reviews = append(cur.Reviews, 7)
		return cur
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{7}, got.Reviews)

	_, ok, err = s.Modify(99, func(cur product) product { return cur })
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Modify(p.ID, func(cur product) product {
		cur.ID = 5
		return cur
	})
	require.ErrorIs(t, err, recordstore.ErrIdentityMismatch)

	stored, _ := s.Get(p.ID)
	assert.Equal(t, []int{7}, stored.Reviews)
}

func TestDelete_Idempotent(t *testing.T) {
	s := newStore()
	s.Save(fairphone)

	before, _ := s.Get(0)

	deleted, ok := s.Delete(0)
	require.True(t, ok)
	assert.Equal(t, before, deleted)

	_, ok = s.Delete(0)
	assert.False(t, ok)
}

func TestDelete_IDsNotReused(t *testing.T) {
	s := newStore()
	s.Save(fairphone)
	s.Save(iphone)
	s.Delete(1)

	assert.Equal(t, 2, s.Save(iphone).ID)
}

func TestReset(t *testing.T) {
	s := newStore()
	s.Save(fairphone)
	s.Save(iphone)

	s.Reset()

	assert.Empty(t, s.GetAll())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Save(iphone).ID)
}

func TestScenario_FairphoneAndIPhone(t *testing.T) {
	s := newStore()

	p0 := s.Save(fairphone)
	assert.Equal(t, product{ID: 0, Name: "Fairphone 4", Category: "smartphone", Score: "90", Reviews: []int{}}, p0)

	p1 := s.Save(iphone)
	assert.Equal(t, 1, p1.ID)

	assert.Equal(t, []product{p0, p1}, s.GetAll())

	deleted, ok := s.Delete(0)
	require.True(t, ok)
	assert.Equal(t, p0, deleted)

	assert.Equal(t, []product{p1}, s.GetAll())

	_, ok = s.Get(0)
	assert.False(t, ok)
}

func TestConcurrentSaves(t *testing.T) {
	const (
		workers = 16
		perWork = 200
	)

	s := newStore()
	ids := make([][]int, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < perWork; i++ {
				ids[w] = append(ids[w], s.Save(iphone).ID)
				s.GetAll()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[int]struct{}, workers*perWork)
	for _, batch := range ids {
		for _, id := range batch {
			_, dup := seen[id]
			require.False(t, dup, "id %d handed out twice", id)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, workers*perWork)
	assert.Len(t, s.GetAll(), workers*perWork)
}

func TestConcurrentModify_NoLostUpdates(t *testing.T) {
	s := newStore()
	p := s.Save(fairphone)

	var g errgroup.Group
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			_, _, err := s.Modify(p.ID, func(cur product) product {
				cur.Reviews = append(cur.Reviews, i)
				return cur
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	got, _ := s.Get(p.ID)
	assert.Len(t, got.Reviews, 100)
}
