package storage

import (
	"context"
	"errors"
)

var (
	ErrSlotEmpty = errors.New("storage slot is empty")

	ErrFailedLoadSlot = errors.New("failed to load storage slot")
	ErrFailedSaveSlot = errors.New("failed to save storage slot")
)

// Slot is a single named durable key-value slot. The store serializes its
// whole state into it after every mutation and reads it back once at startup.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
