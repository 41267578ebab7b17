package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fridgetetris.app/internal/advisor"
	"fridgetetris.app/internal/domain"
	"fridgetetris.app/internal/imgconv"
	"fridgetetris.app/internal/photostore"
)

// Both images must be present before any encoding or network call is made.
var (
	ErrMissingFridge    = errors.New("fridge image is required")
	ErrMissingGroceries = errors.New("groceries image is required")
	ErrBadImage         = errors.New("could not process images")
)

// historyRepository is the subset of store.HistoryStore that Organizer requires.
type historyRepository interface {
	Create(ctx context.Context, entry *domain.HistoryEntry) error
	GetByID(ctx context.Context, id string) (*domain.HistoryEntry, error)
	List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error)
	Delete(ctx context.Context, id string) error
}

type Organizer struct {
	advisor  advisor.Advisor
	history  historyRepository
	photoStg photostore.PhotoStore
	logger   *slog.Logger
}

func NewOrganizer(adv advisor.Advisor, history historyRepository, photoStg photostore.PhotoStore, logger *slog.Logger) *Organizer {
	return &Organizer{
		advisor:  adv,
		history:  history,
		photoStg: photoStg,
		logger:   logger,
	}
}

// Organize runs one exchange: validate both images, encode them to base64
// PNG, ask the model for packing advice, and record the exchange. When the
// model returns no annotated image, the fridge photo is echoed back as the
// result image. On an advisor failure the returned advice still carries the
// fridge echo so callers can show it next to the error.
func (s *Organizer) Organize(ctx context.Context, fridge, groceries []byte, mode domain.Mode) (*domain.Advice, error) {
	if len(fridge) == 0 {
		return nil, ErrMissingFridge
	}
	if len(groceries) == 0 {
		return nil, ErrMissingGroceries
	}

	s.logger.Info("organize started", "mode", mode, "backend", s.advisor.Name(),
		"fridge_bytes", len(fridge), "groceries_bytes", len(groceries))

	fridgePNG, err := imgconv.ToPNG(fridge)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadImage, err)
	}
	groceriesPNG, err := imgconv.ToPNG(groceries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadImage, err)
	}

	fridgeB64 := base64.StdEncoding.EncodeToString(fridgePNG)

	advice, err := s.advisor.Advise(ctx, &advisor.Request{
		FridgeB64:    fridgeB64,
		GroceriesB64: base64.StdEncoding.EncodeToString(groceriesPNG),
		Mode:         mode,
	})
	if err != nil {
		// The fridge photo is still echoed alongside the error, the same
		// as on the no-image success path.
		return &domain.Advice{ImageB64: fridgeB64}, err
	}
	s.logger.Info("organize complete", "mode", mode, "advice_chars", len(advice.Text))

	if advice.ImageB64 == "" {
		advice.ImageB64 = fridgeB64
	}

	// Persistence is a convenience; its failure never fails the exchange.
	s.record(ctx, mode, advice.Text, fridgePNG, groceriesPNG)

	return advice, nil
}

// record stores both photos and the history row for the exchange.
func (s *Organizer) record(ctx context.Context, mode domain.Mode, adviceText string, fridgePNG, groceriesPNG []byte) {
	fridgeKey, err := s.photoStg.Save(ctx, "fridge", "image/png", bytes.NewReader(fridgePNG))
	if err != nil {
		s.logger.Error("failed to save fridge photo", "error", err)
		return
	}
	groceriesKey, err := s.photoStg.Save(ctx, "groceries", "image/png", bytes.NewReader(groceriesPNG))
	if err != nil {
		s.logger.Error("failed to save groceries photo", "error", err)
		_ = s.photoStg.Delete(ctx, fridgeKey)
		return
	}

	entry := &domain.HistoryEntry{
		ID:           uuid.NewString(),
		Mode:         mode,
		Backend:      s.advisor.Name(),
		Advice:       adviceText,
		FridgeKey:    fridgeKey,
		GroceriesKey: groceriesKey,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Error("failed to record history entry", "error", err)
		_ = s.photoStg.Delete(ctx, fridgeKey)
		_ = s.photoStg.Delete(ctx, groceriesKey)
	}
}

// History returns the most recent exchanges, newest first.
func (s *Organizer) History(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	return s.history.List(ctx, limit)
}

// DeleteHistory removes an exchange and its stored photos.
func (s *Organizer) DeleteHistory(ctx context.Context, id string) error {
	entry, err := s.history.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return nil
	}

	if err := s.history.Delete(ctx, id); err != nil {
		return err
	}

	for _, key := range []string{entry.FridgeKey, entry.GroceriesKey} {
		if err := s.photoStg.Delete(ctx, key); err != nil {
			s.logger.Error("failed to delete photo file", "storage_key", key, "error", err)
		}
	}
	return nil
}

func (s *Organizer) Backend() string {
	return s.advisor.Name()
}
