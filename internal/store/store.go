package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Ngoclama/ecommerce-store-sub000/internal/logger"
	"github.com/Ngoclama/ecommerce-store-sub000/internal/product"
	"github.com/Ngoclama/ecommerce-store-sub000/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultInventoryCeiling applies when the catalog does not report stock:
// the line is treated as effectively unconstrained.
const defaultInventoryCeiling = 999

// Store is the persisted local store: cart lines plus the wishlist id set,
// mirrored to a storage slot after every mutation. Cart operations are
// purely local; no network is involved until checkout.
type Store struct {
	mu       sync.Mutex
	slot     storage.Slot
	lines    []*Line
	wishlist []string
	log      *zap.Logger
}

// New loads the persisted document from the slot. An empty slot starts a
// fresh store; a corrupt document is discarded with a warning rather than
// blocking startup.
func New(ctx context.Context, slot storage.Slot) (*Store, error) {
	s := &Store{
		slot: slot,
		log:  logger.Named("store"),
	}

	data, err := slot.Load(ctx)
	if errors.Is(err, storage.ErrSlotEmpty) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadState, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("discarding corrupt persisted state", zap.Error(err))
		return s, nil
	}

	for i := range doc.Lines {
		line := doc.Lines[i]
		s.lines = append(s.lines, &line)
	}
	s.wishlist = dedupe(doc.Wishlist)

	return s, nil
}

// sameLine is the merge identity for cart lines: product id plus the size
// and color axes. Material does not participate.
func sameLine(l *Line, productID string, sel product.Selection) bool {
	return l.ProductID == productID &&
		l.SizeID == sel.SizeID &&
		l.ColorID == sel.ColorID
}

// AddItem merges into an existing line with the same identity, or creates a
// new line with a fresh id and add-time snapshots. A quantity that would
// exceed the inventory ceiling is rejected with the remaining room; the
// store is left unchanged.
func (s *Store) AddItem(ctx context.Context, p product.Product, sel product.Selection, quantity int) (*Line, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ceiling := defaultInventoryCeiling
	if p.Inventory != nil {
		ceiling = *p.Inventory
	}

	for _, l := range s.lines {
		if !sameLine(l, p.ID, sel) {
			continue
		}
		newTotal := l.Quantity + quantity
		if newTotal > l.Inventory {
			return nil, &CapacityError{Ceiling: l.Inventory, Remaining: l.Inventory - l.Quantity}
		}
		prev := l.Quantity
		l.Quantity = newTotal
		if err := s.persist(ctx); err != nil {
			l.Quantity = prev
			return nil, err
		}
		out := *l
		return &out, nil
	}

	if quantity > ceiling {
		return nil, &CapacityError{Ceiling: ceiling, Remaining: ceiling}
	}

	line := &Line{
		ID:            uuid.NewString(),
		ProductID:     p.ID,
		Name:          p.Name,
		UnitPrice:     p.Price,
		OriginalPrice: p.OriginalPrice,
		Quantity:      quantity,
		SizeID:        sel.SizeID,
		ColorID:       sel.ColorID,
		MaterialID:    sel.MaterialID,
		Inventory:     ceiling,
		Category:      p.Category,
		Images:        p.Images,
	}
	s.lines = append(s.lines, line)

	if err := s.persist(ctx); err != nil {
		s.lines = s.lines[:len(s.lines)-1]
		return nil, err
	}

	out := *line
	return &out, nil
}

// RemoveItem deletes the line unconditionally. Unknown ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, lineID)
}

func (s *Store) removeLocked(ctx context.Context, lineID string) error {
	for i, l := range s.lines {
		if l.ID != lineID {
			continue
		}
		removed := l
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		if err := s.persist(ctx); err != nil {
			s.lines = append(s.lines[:i], append([]*Line{removed}, s.lines[i:]...)...)
			return err
		}
		return nil
	}
	return nil
}

// RemoveAll empties the cart. Called after checkout completes; idempotent.
func (s *Store) RemoveAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return nil
	}
	prev := s.lines
	s.lines = nil
	if err := s.persist(ctx); err != nil {
		s.lines = prev
		return err
	}
	return nil
}

// SetQuantity clamps quantity to >= 0; zero removes the line. A value above
// the line's inventory ceiling is rejected and the line is untouched.
func (s *Store) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity < 0 {
		quantity = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity == 0 {
		return s.removeLocked(ctx, lineID)
	}

	for _, l := range s.lines {
		if l.ID != lineID {
			continue
		}
		if quantity > l.Inventory {
			return &CapacityError{Ceiling: l.Inventory, Remaining: l.Inventory - l.Quantity}
		}
		prev := l.Quantity
		l.Quantity = quantity
		if err := s.persist(ctx); err != nil {
			l.Quantity = prev
			return err
		}
		return nil
	}
	return ErrLineNotFound
}

// IncreaseQuantity bumps the line's quantity by one.
func (s *Store) IncreaseQuantity(ctx context.Context, lineID string) error {
	return s.SetQuantity(ctx, lineID, s.GetQuantity(lineID)+1)
}

// DecreaseQuantity lowers the line's quantity by one; at one it removes the
// line entirely.
func (s *Store) DecreaseQuantity(ctx context.Context, lineID string) error {
	q := s.GetQuantity(lineID)
	if q == 0 {
		return ErrLineNotFound
	}
	return s.SetQuantity(ctx, lineID, q-1)
}

// GetQuantity returns 0 for an unknown line id, never an error.
func (s *Store) GetQuantity(lineID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if l.ID == lineID {
			return l.Quantity
		}
	}
	return 0
}

// Lines returns a snapshot copy of the cart for display.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		out = append(out, *l)
	}
	return out
}

// Subtotal is the sum of unit price times quantity across all lines.
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, l := range s.lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// ----------------- Wishlist -----------------

// Liked reports whether the product id is in the local wishlist.
func (s *Store) Liked(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// ToggleWish flips local membership for the product id and returns the new
// state.
func (s *Store) ToggleWish(ctx context.Context, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setWishLocked(ctx, productID, !s.likedLocked(productID))
}

// SetWish forces membership for the product id to liked, returning the
// resulting state. Used by the reconciliation service when the server
// disagrees with an optimistic guess, and for per-product rollback.
func (s *Store) SetWish(ctx context.Context, productID string, liked bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setWishLocked(ctx, productID, liked)
}

func (s *Store) likedLocked(productID string) bool {
	for _, id := range s.wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

func (s *Store) setWishLocked(ctx context.Context, productID string, liked bool) (bool, error) {
	prev := s.wishlist
	if liked {
		if s.likedLocked(productID) {
			return true, nil
		}
		s.wishlist = append(append([]string{}, s.wishlist...), productID)
	} else {
		next := make([]string, 0, len(s.wishlist))
		for _, id := range s.wishlist {
			if id != productID {
				next = append(next, id)
			}
		}
		if len(next) == len(s.wishlist) {
			return false, nil
		}
		s.wishlist = next
	}

	if err := s.persist(ctx); err != nil {
		s.wishlist = prev
		return s.likedLocked(productID), err
	}
	return liked, nil
}

// Wishlist returns a snapshot copy of the liked product ids.
func (s *Store) Wishlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.wishlist...)
}

// ReplaceWishlist swaps the whole set for the given ids, deduplicated.
// Used by resync: the server list is authoritative, this is not a merge.
func (s *Store) ReplaceWishlist(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.wishlist
	s.wishlist = dedupe(ids)
	if err := s.persist(ctx); err != nil {
		s.wishlist = prev
		return err
	}
	return nil
}

// ClearWishlist empties the set. Sign-out path; idempotent.
func (s *Store) ClearWishlist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.wishlist) == 0 {
		return nil
	}
	prev := s.wishlist
	s.wishlist = nil
	if err := s.persist(ctx); err != nil {
		s.wishlist = prev
		return err
	}
	return nil
}

// ----------------- Persistence -----------------

func (s *Store) persist(ctx context.Context) error {
	doc := document{
		Lines:    make([]Line, 0, len(s.lines)),
		Wishlist: s.wishlist,
	}
	for _, l := range s.lines {
		doc.Lines = append(doc.Lines, *l)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveState, err)
	}
	if err := s.slot.Save(ctx, data); err != nil {
		s.log.Error("failed to persist state", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFailedSaveState, err)
	}
	return nil
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
