package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Ngoclama/ecommerce-store-sub000/internal/product"
	"github.com/Ngoclama/ecommerce-store-sub000/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSlot is an in-memory slot for tests; failSave makes Save fail once per
// flag set, to exercise the rollback paths.
type memSlot struct {
	data     []byte
	saves    int
	failSave bool
}

func (m *memSlot) Load(ctx context.Context) ([]byte, error) {
	if m.data == nil {
		return nil, storage.ErrSlotEmpty
	}
	return m.data, nil
}

func (m *memSlot) Save(ctx context.Context, data []byte) error {
	if m.failSave {
		return errors.New("disk full")
	}
	m.saves++
	m.data = append([]byte{}, data...)
	return nil
}

func intPtr(n int) *int { return &n }

func productX() product.Product {
	return product.Product{
		ID:        "prod-x",
		Name:      "Walnut Chair",
		Price:     129.99,
		Inventory: intPtr(5),
		Category:  "chairs",
		Images:    []string{"x-front.jpg"},
	}
}

func newTestStore(t *testing.T) (*Store, *memSlot) {
	t.Helper()
	slot := &memSlot{}
	s, err := New(context.Background(), slot)
	require.NoError(t, err)
	return s, slot
}

func TestStore_AddItem(t *testing.T) {
	ctx := context.Background()
	sel := product.Selection{SizeID: "size-m", ColorID: "color-oak"}

	t.Run("NewLineSnapshotsProduct", func(t *testing.T) {
		s, slot := newTestStore(t)

		line, err := s.AddItem(ctx, productX(), sel, 1)
		require.NoError(t, err)

		assert.NotEmpty(t, line.ID)
		assert.NotEqual(t, "prod-x", line.ID)
		assert.Equal(t, 1, line.Quantity)
		assert.Equal(t, 5, line.Inventory)
		assert.Equal(t, 129.99, line.UnitPrice)
		assert.Len(t, s.Lines(), 1)
		assert.Equal(t, 1, slot.saves)
	})

	t.Run("UnknownStockDefaultsCeiling", func(t *testing.T) {
		s, _ := newTestStore(t)
		p := productX()
		p.Inventory = nil

		line, err := s.AddItem(ctx, p, sel, 1)
		require.NoError(t, err)
		assert.Equal(t, 999, line.Inventory)
	})

	t.Run("SameVariantMergesNeverDuplicates", func(t *testing.T) {
		s, _ := newTestStore(t)

		first, err := s.AddItem(ctx, productX(), sel, 1)
		require.NoError(t, err)
		second, err := s.AddItem(ctx, productX(), sel, 2)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 3, second.Quantity)
		assert.Len(t, s.Lines(), 1)
	})

	t.Run("DifferentColorCreatesSecondLine", func(t *testing.T) {
		s, _ := newTestStore(t)

		_, err := s.AddItem(ctx, productX(), sel, 1)
		require.NoError(t, err)
		_, err = s.AddItem(ctx, productX(), product.Selection{SizeID: "size-m", ColorID: "color-ash"}, 1)
		require.NoError(t, err)

		assert.Len(t, s.Lines(), 2)
	})

	t.Run("MaterialDoesNotSplitLines", func(t *testing.T) {
		s, _ := newTestStore(t)

		_, err := s.AddItem(ctx, productX(), product.Selection{SizeID: "size-m", ColorID: "color-oak", MaterialID: "mat-wool"}, 1)
		require.NoError(t, err)
		line, err := s.AddItem(ctx, productX(), product.Selection{SizeID: "size-m", ColorID: "color-oak", MaterialID: "mat-linen"}, 1)
		require.NoError(t, err)

		assert.Len(t, s.Lines(), 1)
		assert.Equal(t, 2, line.Quantity)
	})

	t.Run("MergeOverCeilingRejected", func(t *testing.T) {
		s, _ := newTestStore(t)

		_, err := s.AddItem(ctx, productX(), sel, 3)
		require.NoError(t, err)

		_, err = s.AddItem(ctx, productX(), sel, 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		var capErr *CapacityError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, 5, capErr.Ceiling)
		assert.Equal(t, 2, capErr.Remaining)

		// Rejection leaves state untouched.
		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 3, lines[0].Quantity)
	})

	t.Run("NewLineOverCeilingRejected", func(t *testing.T) {
		s, _ := newTestStore(t)

		_, err := s.AddItem(ctx, productX(), sel, 6)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Empty(t, s.Lines())
	})

	t.Run("NonPositiveQuantityRejected", func(t *testing.T) {
		s, _ := newTestStore(t)

		_, err := s.AddItem(ctx, productX(), sel, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("SaveFailureRollsBack", func(t *testing.T) {
		s, slot := newTestStore(t)
		slot.failSave = true

		_, err := s.AddItem(ctx, productX(), sel, 1)
		assert.ErrorIs(t, err, ErrFailedSaveState)
		assert.Empty(t, s.Lines())
	})
}

func TestStore_SetQuantity(t *testing.T) {
	ctx := context.Background()
	sel := product.Selection{SizeID: "size-m"}

	add := func(t *testing.T, s *Store, qty int) string {
		t.Helper()
		line, err := s.AddItem(ctx, productX(), sel, qty)
		require.NoError(t, err)
		return line.ID
	}

	t.Run("UpdatesWithinCeiling", func(t *testing.T) {
		s, _ := newTestStore(t)
		id := add(t, s, 1)

		require.NoError(t, s.SetQuantity(ctx, id, 4))
		assert.Equal(t, 4, s.GetQuantity(id))
	})

	t.Run("AboveCeilingRejectedUnchanged", func(t *testing.T) {
		s, _ := newTestStore(t)
		id := add(t, s, 2)

		err := s.SetQuantity(ctx, id, 6)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, 2, s.GetQuantity(id))
	})

	t.Run("ZeroRemovesLine", func(t *testing.T) {
		s, _ := newTestStore(t)
		id := add(t, s, 2)

		require.NoError(t, s.SetQuantity(ctx, id, 0))
		assert.Empty(t, s.Lines())
		assert.Equal(t, 0, s.GetQuantity(id))
	})

	t.Run("NegativeClampsToZero", func(t *testing.T) {
		s, _ := newTestStore(t)
		id := add(t, s, 2)

		require.NoError(t, s.SetQuantity(ctx, id, -3))
		assert.Empty(t, s.Lines())
	})

	t.Run("UnknownLine", func(t *testing.T) {
		s, _ := newTestStore(t)

		err := s.SetQuantity(ctx, "nope", 2)
		assert.ErrorIs(t, err, ErrLineNotFound)
	})
}

func TestStore_IncreaseDecrease(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	line, err := s.AddItem(ctx, productX(), product.Selection{}, 2)
	require.NoError(t, err)
	id := line.ID

	// 2 -> 3 -> 4 -> 5, then the ceiling holds.
	for _, want := range []int{3, 4, 5} {
		require.NoError(t, s.IncreaseQuantity(ctx, id))
		assert.Equal(t, want, s.GetQuantity(id))
	}
	err = s.IncreaseQuantity(ctx, id)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, s.GetQuantity(id))

	require.NoError(t, s.DecreaseQuantity(ctx, id))
	assert.Equal(t, 4, s.GetQuantity(id))

	// Decreasing from one removes the line.
	require.NoError(t, s.SetQuantity(ctx, id, 1))
	require.NoError(t, s.DecreaseQuantity(ctx, id))
	assert.Empty(t, s.Lines())

	assert.ErrorIs(t, s.DecreaseQuantity(ctx, id), ErrLineNotFound)
}

func TestStore_RemoveAll(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.AddItem(ctx, productX(), product.Selection{}, 1)
	require.NoError(t, err)

	require.NoError(t, s.RemoveAll(ctx))
	assert.Empty(t, s.Lines())

	// Idempotent.
	require.NoError(t, s.RemoveAll(ctx))
	assert.Empty(t, s.Lines())
}

func TestStore_GetQuantityUnknown(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Equal(t, 0, s.GetQuantity("missing"))
}

func TestStore_Subtotal(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.AddItem(ctx, productX(), product.Selection{}, 2)
	require.NoError(t, err)

	assert.InDelta(t, 259.98, s.Subtotal(), 0.001)
}

func TestStore_Wishlist(t *testing.T) {
	ctx := context.Background()

	t.Run("ToggleFlipsMembership", func(t *testing.T) {
		s, _ := newTestStore(t)

		liked, err := s.ToggleWish(ctx, "prod-y")
		require.NoError(t, err)
		assert.True(t, liked)
		assert.True(t, s.Liked("prod-y"))

		liked, err = s.ToggleWish(ctx, "prod-y")
		require.NoError(t, err)
		assert.False(t, liked)
		assert.False(t, s.Liked("prod-y"))
	})

	t.Run("ReplaceDeduplicates", func(t *testing.T) {
		s, _ := newTestStore(t)

		require.NoError(t, s.ReplaceWishlist(ctx, []string{"a", "b", "a", "c", "b"}))
		assert.Equal(t, []string{"a", "b", "c"}, s.Wishlist())
	})

	t.Run("ClearIsIdempotent", func(t *testing.T) {
		s, _ := newTestStore(t)

		_, err := s.ToggleWish(ctx, "prod-y")
		require.NoError(t, err)

		require.NoError(t, s.ClearWishlist(ctx))
		assert.Empty(t, s.Wishlist())
		require.NoError(t, s.ClearWishlist(ctx))
	})

	t.Run("SetWishForcesState", func(t *testing.T) {
		s, _ := newTestStore(t)

		liked, err := s.SetWish(ctx, "prod-z", true)
		require.NoError(t, err)
		assert.True(t, liked)

		// Forcing the same state is a no-op.
		liked, err = s.SetWish(ctx, "prod-z", true)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, []string{"prod-z"}, s.Wishlist())
	})
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := &memSlot{}

	s1, err := New(ctx, slot)
	require.NoError(t, err)

	line, err := s1.AddItem(ctx, productX(), product.Selection{SizeID: "size-m"}, 2)
	require.NoError(t, err)
	_, err = s1.ToggleWish(ctx, "prod-y")
	require.NoError(t, err)

	// A second store over the same slot sees everything.
	s2, err := New(ctx, slot)
	require.NoError(t, err)

	assert.Equal(t, 2, s2.GetQuantity(line.ID))
	assert.True(t, s2.Liked("prod-y"))

	// The slot holds one document with both sections.
	var doc document
	require.NoError(t, json.Unmarshal(slot.data, &doc))
	assert.Len(t, doc.Lines, 1)
	assert.Equal(t, []string{"prod-y"}, doc.Wishlist)
}

func TestStore_LoadCorruptDocumentStartsFresh(t *testing.T) {
	ctx := context.Background()
	slot := &memSlot{data: []byte("{not json")}

	s, err := New(ctx, slot)
	require.NoError(t, err)
	assert.Empty(t, s.Lines())
	assert.Empty(t, s.Wishlist())
}

func TestStore_LoadDeduplicatesWishlist(t *testing.T) {
	ctx := context.Background()
	data, err := json.Marshal(document{Wishlist: []string{"a", "a", "b"}})
	require.NoError(t, err)

	s, err := New(ctx, &memSlot{data: data})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.Wishlist())
}
