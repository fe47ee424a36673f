package wishlist

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Ngoclama/ecommerce-store-sub000/internal/logger"
	"github.com/Ngoclama/ecommerce-store-sub000/internal/session"
	"github.com/Ngoclama/ecommerce-store-sub000/internal/store"
	"go.uber.org/zap"
)

const defaultResyncInterval = 30 * time.Second

// Service reconciles the locally persisted wishlist with the remote one.
// Guests stop at the local mutation; authenticated toggles are confirmed
// against the server, with rollback on failure and periodic full resync.
type Service interface {
	// Toggle flips membership optimistically and returns the final state.
	// A non-nil error means the remote confirmation failed and local state
	// was rolled back; map it with Notice for display.
	Toggle(ctx context.Context, productID string) (bool, error)
	// Resync replaces the local wishlist with the deduplicated remote list
	// when they differ. No-op for guests.
	Resync(ctx context.Context) error
	// Run blocks, resyncing on start and on a fixed interval until ctx is
	// done. Suppressed while signed out; a sign-out clears the local set.
	Run(ctx context.Context)
}

type service struct {
	store    *store.Store
	client   Client
	session  session.Session
	interval time.Duration
	log      *zap.Logger

	mu          sync.Mutex
	inflight    map[string]struct{}
	lastRemote  []string
	hasRemote   bool
	wasSignedIn bool
}

// NewService creates a new reconciliation service.
func NewService(st *store.Store, client Client, sess session.Session, interval time.Duration) Service {
	if interval <= 0 {
		interval = defaultResyncInterval
	}
	return &service{
		store:    st,
		client:   client,
		session:  sess,
		interval: interval,
		log:      logger.Named("wishlist"),
		inflight: make(map[string]struct{}),
	}
}

func (s *service) Toggle(ctx context.Context, productID string) (bool, error) {
	prevLiked := s.store.Liked(productID)

	liked, err := s.store.ToggleWish(ctx, productID)
	if err != nil {
		return prevLiked, err
	}

	if !s.session.SignedIn() {
		return liked, nil
	}

	// Coalesce: while a confirm for this product is still in flight, a
	// second toggle keeps its optimistic state and skips the remote call.
	// The in-flight call's rollback is scoped to this product id only.
	if !s.acquire(productID) {
		return liked, nil
	}
	defer s.release(productID)

	token, err := s.session.Token(ctx)
	if err != nil {
		// Token source unavailable: guest behavior, local state stands.
		return liked, nil
	}

	action := ActionRemove
	if liked {
		action = ActionAdd
	}

	res, err := s.client.Mutate(ctx, token, productID, action)
	if err != nil {
		s.log.Warn("wishlist toggle failed, rolling back",
			zap.String("op", "toggle"),
			zap.String("product_id", productID),
			zap.Error(err),
		)
		if _, rbErr := s.store.SetWish(ctx, productID, prevLiked); rbErr != nil {
			s.log.Error("wishlist rollback failed",
				zap.String("product_id", productID),
				zap.Error(rbErr),
			)
		}
		return prevLiked, err
	}

	// Server wins when it disagrees with the optimistic guess.
	if res.IsLiked != nil && *res.IsLiked != liked {
		return s.store.SetWish(ctx, productID, *res.IsLiked)
	}
	return liked, nil
}

func (s *service) Resync(ctx context.Context) error {
	if !s.session.SignedIn() {
		return nil
	}

	token, err := s.session.Token(ctx)
	if err != nil {
		return nil
	}

	ids, err := s.client.List(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			// Session went stale mid-interval: drop to guest state.
			s.resetLastRemote()
			return s.store.ClearWishlist(ctx)
		}
		s.log.Warn("wishlist resync failed", zap.String("op", "resync"), zap.Error(err))
		return err
	}

	// The first successful fetch after sign-in always replaces: the local
	// set may hold guest-accumulated ids the server has never seen, and the
	// server is authoritative even when its list is empty.
	last, observed := s.lastRemoteSnapshot()
	if observed && sameSet(ids, last) {
		return nil
	}

	if err := s.store.ReplaceWishlist(ctx, ids); err != nil {
		return err
	}
	s.setLastRemote(ids)
	return nil
}

func (s *service) Run(ctx context.Context) {
	s.observeAuth(ctx)
	if err := s.Resync(ctx); err != nil {
		s.log.Warn("initial wishlist resync failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.observeAuth(ctx)
			if err := s.Resync(ctx); err != nil {
				s.log.Warn("wishlist resync failed", zap.Error(err))
			}
		}
	}
}

// observeAuth clears the local wishlist once on a signed-in to signed-out
// transition.
func (s *service) observeAuth(ctx context.Context) {
	signedIn := s.session.SignedIn()

	s.mu.Lock()
	signedOut := s.wasSignedIn && !signedIn
	s.wasSignedIn = signedIn
	if signedOut {
		s.lastRemote = nil
		s.hasRemote = false
	}
	s.mu.Unlock()

	if signedOut {
		if err := s.store.ClearWishlist(ctx); err != nil {
			s.log.Error("failed clearing wishlist on sign-out", zap.Error(err))
		}
	}
}

func (s *service) acquire(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[productID]; busy {
		return false
	}
	s.inflight[productID] = struct{}{}
	return true
}

func (s *service) release(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, productID)
}

func (s *service) lastRemoteSnapshot() ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRemote, s.hasRemote
}

func (s *service) setLastRemote(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRemote = ids
	s.hasRemote = true
}

func (s *service) resetLastRemote() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRemote = nil
	s.hasRemote = false
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string{}, a...)
	bs := append([]string{}, b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
