package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fridgetetris.app/internal/advisor"
	"fridgetetris.app/internal/domain"
)

// fakeAdvisor records calls and returns a canned advice or error.
type fakeAdvisor struct {
	mu     sync.Mutex
	calls  []*advisor.Request
	advice *domain.Advice
	err    error
}

func (f *fakeAdvisor) Name() string { return "fake" }

func (f *fakeAdvisor) Advise(_ context.Context, req *advisor.Request) (*domain.Advice, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	adv := *f.advice
	return &adv, nil
}

func (f *fakeAdvisor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// memHistory is an in-memory historyRepository.
type memHistory struct {
	mu      sync.Mutex
	entries []*domain.HistoryEntry
}

func (m *memHistory) Create(_ context.Context, e *domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memHistory) GetByID(_ context.Context, id string) (*domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (m *memHistory) List(_ context.Context, limit int) ([]*domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) < limit {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

func (m *memHistory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return errors.New("history entry not found")
}

// memPhotoStore is an in-memory photostore.PhotoStore.
type memPhotoStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	counter int
}

func newMemPhotoStore() *memPhotoStore {
	return &memPhotoStore{data: make(map[string][]byte)}
}

func (m *memPhotoStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	key := fmt.Sprintf("%s_%d.png", prefix, m.counter)
	m.data[key] = data
	return key, nil
}

func (m *memPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, "", fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), "image/png", nil
}

func (m *memPhotoStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestOrganizer(adv advisor.Advisor) (*Organizer, *memHistory, *memPhotoStore) {
	history := &memHistory{}
	photos := newMemPhotoStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOrganizer(adv, history, photos, logger), history, photos
}

func TestOrganizeMissingImagesShortCircuits(t *testing.T) {
	fake := &fakeAdvisor{advice: &domain.Advice{Text: "ok"}}
	s, history, _ := newTestOrganizer(fake)
	ctx := context.Background()

	_, err := s.Organize(ctx, nil, testPNG(t), domain.ModeNormal)
	assert.ErrorIs(t, err, ErrMissingFridge)

	_, err = s.Organize(ctx, testPNG(t), nil, domain.ModeNormal)
	assert.ErrorIs(t, err, ErrMissingGroceries)

	// No transport call and no history row for either failure.
	assert.Equal(t, 0, fake.callCount())
	assert.Empty(t, history.entries)
}

func TestOrganizeBadImageShortCircuits(t *testing.T) {
	fake := &fakeAdvisor{advice: &domain.Advice{Text: "ok"}}
	s, _, _ := newTestOrganizer(fake)

	_, err := s.Organize(context.Background(), []byte("junk"), testPNG(t), domain.ModeNormal)
	assert.ErrorIs(t, err, ErrBadImage)
	assert.Equal(t, 0, fake.callCount())
}

func TestOrganizeEchoesFridgeWhenNoImageReturned(t *testing.T) {
	fake := &fakeAdvisor{advice: &domain.Advice{Text: "Stack the yogurt."}}
	s, _, _ := newTestOrganizer(fake)

	advice, err := s.Organize(context.Background(), testPNG(t), testPNG(t), domain.ModeNormal)
	require.NoError(t, err)
	assert.Equal(t, "Stack the yogurt.", advice.Text)

	// The echoed image is the fridge photo the transport was given.
	require.Equal(t, 1, fake.callCount())
	assert.Equal(t, fake.calls[0].FridgeB64, advice.ImageB64)

	decoded, err := base64.StdEncoding.DecodeString(advice.ImageB64)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(decoded))
	require.NoError(t, err)
}

func TestOrganizeKeepsModelImage(t *testing.T) {
	fake := &fakeAdvisor{advice: &domain.Advice{Text: "done", ImageB64: "bW9kZWwtaW1hZ2U="}}
	s, _, _ := newTestOrganizer(fake)

	advice, err := s.Organize(context.Background(), testPNG(t), testPNG(t), domain.ModeChaos)
	require.NoError(t, err)
	assert.Equal(t, "bW9kZWwtaW1hZ2U=", advice.ImageB64)
}

func TestOrganizeRecordsHistory(t *testing.T) {
	fake := &fakeAdvisor{advice: &domain.Advice{Text: "Bottom shelf. All of it."}}
	s, history, photos := newTestOrganizer(fake)

	_, err := s.Organize(context.Background(), testPNG(t), testPNG(t), domain.ModeChaos)
	require.NoError(t, err)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, domain.ModeChaos, entry.Mode)
	assert.Equal(t, "fake", entry.Backend)
	assert.Equal(t, "Bottom shelf. All of it.", entry.Advice)
	assert.Contains(t, photos.data, entry.FridgeKey)
	assert.Contains(t, photos.data, entry.GroceriesKey)
}

func TestOrganizeAdvisorErrorNotRecorded(t *testing.T) {
	fake := &fakeAdvisor{err: errors.New("ollama returned status 500")}
	s, history, photos := newTestOrganizer(fake)

	advice, err := s.Organize(context.Background(), testPNG(t), testPNG(t), domain.ModeNormal)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Empty(t, history.entries)
	assert.Empty(t, photos.data)

	// The fridge photo is echoed back even though the model call failed.
	require.NotNil(t, advice)
	require.Equal(t, 1, fake.callCount())
	assert.Equal(t, fake.calls[0].FridgeB64, advice.ImageB64)
	assert.Empty(t, advice.Text)
}

func TestDeleteHistoryRemovesPhotos(t *testing.T) {
	fake := &fakeAdvisor{advice: &domain.Advice{Text: "ok"}}
	s, history, photos := newTestOrganizer(fake)
	ctx := context.Background()

	_, err := s.Organize(ctx, testPNG(t), testPNG(t), domain.ModeNormal)
	require.NoError(t, err)
	require.Len(t, history.entries, 1)
	id := history.entries[0].ID

	require.NoError(t, s.DeleteHistory(ctx, id))
	assert.Empty(t, history.entries)
	assert.Empty(t, photos.data)

	// Deleting an unknown id is a no-op.
	assert.NoError(t, s.DeleteHistory(ctx, "nope"))
}
