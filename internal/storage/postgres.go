package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type postgresSlot struct {
	db   *sql.DB
	name string
}

// NewPostgresSlot stores the document as a single row in the slots table,
// keyed by slot name.
//
//	CREATE TABLE IF NOT EXISTS slots (
//	    name       TEXT PRIMARY KEY,
//	    document   BYTEA NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
func NewPostgresSlot(db *sql.DB, name string) Slot {
	return &postgresSlot{db: db, name: name}
}

func (p *postgresSlot) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT document FROM slots WHERE name = $1
	`, p.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadSlot, err)
	}
	if len(data) == 0 {
		return nil, ErrSlotEmpty
	}
	return data, nil
}

func (p *postgresSlot) Save(ctx context.Context, data []byte) error {
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO slots (name, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name)
		DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
	`, p.name, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveSlot, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveSlot, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: no row written for slot %q", ErrFailedSaveSlot, p.name)
	}

	return nil
}
