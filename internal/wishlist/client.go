package wishlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Ngoclama/ecommerce-store-sub000/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Toggle actions accepted by the wishlist endpoint.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionToggle = "toggle"
)

// Mutation rate: wishlist toggles are shopper-driven clicks, a small burst
// above a couple per second means a stuck key or a retry loop.
const (
	mutateLimit = rate.Limit(2)
	mutateBurst = 5
)

// MutateResult is the server's answer to a toggle: whether it succeeded and,
// when reported, the authoritative membership state.
type MutateResult struct {
	Success bool   `json:"success"`
	IsLiked *bool  `json:"isLiked,omitempty"`
	Message string `json:"message,omitempty"`
}

type listResponse struct {
	Success bool     `json:"success"`
	Data    []string `json:"data"`
	Message string   `json:"message,omitempty"`
}

// Client is the remote wishlist API boundary.
type Client interface {
	Mutate(ctx context.Context, token, productID, action string) (*MutateResult, error)
	List(ctx context.Context, token string) ([]string, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds the HTTP client for {base}/api/wishlist.
func NewClient(baseURL string, timeout time.Duration) Client {
	if baseURL == "" {
		logger.Named("wishlist").Warn("wishlist API base URL is empty")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(mutateLimit, mutateBurst),
	}
}

// Mutate posts a toggle to the server. The returned error is classified:
// ErrUnauthorized for 401, ErrAccountNotProvisioned for the 404 provisioning
// answer, ErrRemoteRejected for an explicit success:false.
func (c *client) Mutate(ctx context.Context, token, productID, action string) (*MutateResult, error) {
	log := logger.Named("wishlist").With(
		zap.String("product_id", productID),
		zap.String("action", action),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedSyncRemote, err)
	}

	body, err := json.Marshal(map[string]string{
		"productId": productID,
		"action":    action,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/wishlist", bytes.NewBuffer(body))
	if err != nil {
		log.Error("failed building wishlist request", zap.Error(err))
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("wishlist request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedSyncRemote, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedSyncRemote, err)
	}

	if err := classifyStatus(resp.StatusCode, bodyBytes); err != nil {
		log.Warn("wishlist mutation refused",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, err
	}

	var res MutateResult
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("failed decoding wishlist response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedSyncRemote, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrRemoteRejected, res.Message)
	}

	return &res, nil
}

// List fetches the complete set of liked product ids for the bearer.
func (c *client) List(ctx context.Context, token string) ([]string, error) {
	log := logger.Named("wishlist")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/wishlist", nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("wishlist fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedFetchRemote, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedFetchRemote, err)
	}

	if err := classifyStatus(resp.StatusCode, bodyBytes); err != nil {
		return nil, err
	}

	var res listResponse
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("failed decoding wishlist list", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedFetchRemote, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrRemoteRejected, res.Message)
	}

	return res.Data, nil
}

func classifyStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusNotFound && bytes.Contains(bytes.ToLower(body), []byte("not provisioned")):
		return ErrAccountNotProvisioned
	default:
		return fmt.Errorf("%w: status %d: %s", ErrFailedSyncRemote, status, string(body))
	}
}
