package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/medcompare/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeItem generates a normalized item of source with the given id
func fakeItem(source domain.Source, id string) domain.NormalizedItem {
	mrp := gofakeit.Price(10, 500)
	price := mrp * 0.9
	pack := fmt.Sprintf("strip of %d tablets", gofakeit.Number(1, 30))
	return domain.NormalizedItem{
		Key:          domain.ItemKey(source, id),
		Source:       source,
		ID:           id,
		Name:         gofakeit.ProductName(),
		MRP:          &mrp,
		Price:        &price,
		Pack:         &pack,
		Manufacturer: domain.StringPtr(gofakeit.Company()),
	}
}

func keys(items []domain.NormalizedItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Key)
	}
	return out
}

func TestMemoryStore_Toggle(t *testing.T) {
	s := NewMemoryStore()
	item := fakeItem(domain.SourcePharmEasy, "x1")

	assert.True(t, s.Toggle(item))
	assert.True(t, s.IsSelected("pharmeasy:x1"))
	assert.Equal(t, 1, s.Len())

	assert.False(t, s.Toggle(item))
	assert.False(t, s.IsSelected("pharmeasy:x1"))
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_ToggleTwiceRestoresState(t *testing.T) {
	s := NewMemoryStore()
	a := fakeItem(domain.SourceApollo, "1")
	b := fakeItem(domain.SourceNetmeds, "2")
	s.Put(a)

	before := keys(s.Items())
	s.Toggle(b)
	s.Toggle(b)

	assert.Equal(t, before, keys(s.Items()))
}

func TestMemoryStore_InsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	s.Put(fakeItem(domain.SourceApollo, "a"))
	s.Put(fakeItem(domain.SourceOneMg, "b"))
	s.Put(fakeItem(domain.SourceTruemeds, "c"))

	assert.Equal(t, []string{"apollo:a", "1mg:b", "truemeds:c"}, keys(s.Items()))

	s.Remove("1mg:b")
	s.Put(fakeItem(domain.SourceOneMg, "b"))

	assert.Equal(t, []string{"apollo:a", "truemeds:c", "1mg:b"}, keys(s.Items()))
}

func TestMemoryStore_PutOverwriteKeepsPosition(t *testing.T) {
	s := NewMemoryStore()
	s.Put(fakeItem(domain.SourceApollo, "a"))
	s.Put(fakeItem(domain.SourceApollo, "b"))

	replacement := fakeItem(domain.SourceApollo, "a")
	replacement.Name = "Replaced"
	s.Put(replacement)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "apollo:a", items[0].Key)
	assert.Equal(t, "Replaced", items[0].Name)
}

func TestMemoryStore_StoresCopies(t *testing.T) {
	s := NewMemoryStore()
	item := fakeItem(domain.SourcePharmEasy, "p")
	s.Put(item)

	*item.Price = -1
	item.Name = "mutated"

	stored, ok := s.Get("pharmeasy:p")
	require.True(t, ok)
	assert.NotEqual(t, "mutated", stored.Name)
	assert.NotEqual(t, -1.0, *stored.Price)

	*stored.Price = -2
	again, _ := s.Get("pharmeasy:p")
	assert.NotEqual(t, -2.0, *again.Price)
}

func TestMemoryStore_RemoveAndClear(t *testing.T) {
	s := NewMemoryStore()
	s.Put(fakeItem(domain.SourceApollo, "a"))
	s.Put(fakeItem(domain.SourceApollo, "b"))

	s.Remove("missing")
	assert.Equal(t, 2, s.Len())

	s.Remove("apollo:a")
	_, ok := s.Get("apollo:a")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Items())
}

func TestMemoryStore_MergeInto(t *testing.T) {
	selection := NewMemoryStore()
	saved := NewMemoryStore()

	existing := fakeItem(domain.SourceApollo, "a")
	existing.Name = "old"
	saved.Put(existing)
	saved.Put(fakeItem(domain.SourceNetmeds, "n"))

	updated := fakeItem(domain.SourceApollo, "a")
	updated.Name = "new"
	selection.Put(updated)
	selection.Put(fakeItem(domain.SourceTruemeds, "t"))

	selection.MergeInto(saved)

	assert.Equal(t, []string{"apollo:a", "netmeds:n", "truemeds:t"}, keys(saved.Items()))
	got, _ := saved.Get("apollo:a")
	assert.Equal(t, "new", got.Name, "source entries overwrite on collision")
	assert.Equal(t, 2, selection.Len(), "merging leaves the source untouched")
}

func TestMemoryStore_MergeIntoSelf(t *testing.T) {
	s := NewMemoryStore()
	s.Put(fakeItem(domain.SourceApollo, "a"))
	s.Put(fakeItem(domain.SourceApollo, "b"))

	s.MergeInto(s)
	s.MergeInto(nil)

	assert.Equal(t, []string{"apollo:a", "apollo:b"}, keys(s.Items()))
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	target := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			item := fakeItem(domain.SourcePharmEasy, fmt.Sprint(n))
			s.Toggle(item)
			s.IsSelected(item.Key)
			s.Items()
			s.MergeInto(target)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
	assert.Equal(t, 20, target.Len())
}
