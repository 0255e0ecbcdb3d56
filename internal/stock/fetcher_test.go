package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerseyshop/storefront/internal/catalog"
	"github.com/jerseyshop/storefront/internal/domain"
)

type fakeSource struct {
	entries []domain.StockEntry
	err     error
	calls   int
}

func (f *fakeSource) GetStock(ctx context.Context) ([]domain.StockEntry, error) {
	f.calls++
	return f.entries, f.err
}

func TestFold_LaterEntriesWin(t *testing.T) {
	got := Fold([]domain.StockEntry{
		{ProductID: "a", Stock: map[string]int{"M": 1}},
		{ProductID: "", Stock: map[string]int{"M": 9}},
		{ProductID: "a", Stock: map[string]int{"L": 2}},
		{ProductID: "b", Stock: nil},
	})
	assert.Equal(t, map[string]map[string]int{
		"a": {"L": 2},
		"b": {},
	}, got)
}

func TestRefresh_AppliesSnapshot(t *testing.T) {
	cat, err := catalog.New([]domain.Product{
		{ID: "a", Sizes: []string{"M"}},
		{ID: "b", Sizes: []string{"M"}},
	})
	require.NoError(t, err)

	src := &fakeSource{entries: []domain.StockEntry{{ProductID: "a", Stock: map[string]int{"M": 4}}}}
	f := NewFetcher(src, cat, nil)

	snap, err := f.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap, 1)
	assert.Equal(t, 4, cat.StockCeiling("a", "M"))
	assert.Equal(t, 0, cat.StockCeiling("b", "M"))
}

func TestRefresh_FailureKeepsPreviousStock(t *testing.T) {
	cat, err := catalog.New([]domain.Product{{ID: "a", Sizes: []string{"M"}}})
	require.NoError(t, err)

	src := &fakeSource{entries: []domain.StockEntry{{ProductID: "a", Stock: map[string]int{"M": 2}}}}
	f := NewFetcher(src, cat, nil)
	_, err = f.Refresh(context.Background())
	require.NoError(t, err)

	src.err = errors.New("connection refused")
	_, err = f.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 2, cat.StockCeiling("a", "M"))
}

func TestRunLoop_StopsOnCancel(t *testing.T) {
	cat, err := catalog.New([]domain.Product{{ID: "a"}})
	require.NoError(t, err)
	src := &fakeSource{}
	f := NewFetcher(src, cat, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.RunLoop(ctx, 0)
	assert.Equal(t, 1, src.calls)
}
