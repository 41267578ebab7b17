package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"fridgetetris.app/internal/domain"
)

type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Create inserts entry. The caller supplies the id; CreatedAt is stamped here.
func (s *HistoryStore) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	entry.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, mode, backend, advice, fridge_key, groceries_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, string(entry.Mode), entry.Backend, entry.Advice, entry.FridgeKey, entry.GroceriesKey, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create history entry: %w", err)
	}
	return nil
}

func (s *HistoryStore) GetByID(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	entry := &domain.HistoryEntry{}
	var mode string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, mode, backend, advice, fridge_key, groceries_key, created_at
		FROM history WHERE id = ?
	`, id).Scan(&entry.ID, &mode, &entry.Backend, &entry.Advice, &entry.FridgeKey, &entry.GroceriesKey, &entry.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}

	entry.Mode = domain.Mode(mode)
	return entry, nil
}

// List returns the most recent entries, newest first.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, backend, advice, fridge_key, groceries_key, created_at
		FROM history ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var entries []*domain.HistoryEntry
	for rows.Next() {
		entry := &domain.HistoryEntry{}
		var mode string
		if err := rows.Scan(&entry.ID, &mode, &entry.Backend, &entry.Advice, &entry.FridgeKey, &entry.GroceriesKey, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.Mode = domain.Mode(mode)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}

func (s *HistoryStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM history WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("history entry not found")
	}
	return nil
}
