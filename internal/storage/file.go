package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Ngoclama/ecommerce-store-sub000/internal/logger"
	"go.uber.org/zap"
)

type fileSlot struct {
	path string
}

// NewFileSlot stores the document as a single JSON file at path.
func NewFileSlot(path string) Slot {
	return &fileSlot{path: path}
}

func (f *fileSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		logger.Named("storage").Error("failed reading slot file", zap.String("path", f.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadSlot, err)
	}
	if len(data) == 0 {
		return nil, ErrSlotEmpty
	}
	return data, nil
}

// Save writes through a temp file and renames, so a crash mid-write never
// leaves a truncated document behind.
func (f *fileSlot) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveSlot, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrFailedSaveSlot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrFailedSaveSlot, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrFailedSaveSlot, err)
	}
	return nil
}
