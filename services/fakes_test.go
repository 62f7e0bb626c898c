package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/poker-leaderboard/hub"
	"github.com/Dosada05/poker-leaderboard/leaderboard"
	"github.com/Dosada05/poker-leaderboard/models"
	"github.com/Dosada05/poker-leaderboard/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStandingRepository хранит записи в памяти; хуки *Fn подменяют поведение.
type fakeStandingRepository struct {
	mu        sync.Mutex
	standings map[string]models.PlayerStanding
	saves     int

	seriesQueries []string

	ListAllFn      func(ctx context.Context) ([]models.PlayerStanding, error)
	ListBySeriesFn func(ctx context.Context, series string) ([]models.PlayerStanding, error)
	SaveBatchFn    func(ctx context.Context, records []models.PlayerStanding) error
}

func newFakeRepo(seed ...models.PlayerStanding) *fakeStandingRepository {
	r := &fakeStandingRepository{standings: make(map[string]models.PlayerStanding)}
	for _, s := range seed {
		r.standings[s.ID] = s
	}
	return r
}

func (r *fakeStandingRepository) ListAll(ctx context.Context) ([]models.PlayerStanding, error) {
	if r.ListAllFn != nil {
		return r.ListAllFn(ctx)
	}
	return r.snapshot(), nil
}

func (r *fakeStandingRepository) snapshot() []models.PlayerStanding {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.PlayerStanding, 0, len(r.standings))
	for _, s := range r.standings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Updated.Equal(out[j].Updated) {
			return out[i].Updated.After(out[j].Updated)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeStandingRepository) ListBySeries(ctx context.Context, series string) ([]models.PlayerStanding, error) {
	r.mu.Lock()
	r.seriesQueries = append(r.seriesQueries, series)
	r.mu.Unlock()
	if r.ListBySeriesFn != nil {
		return r.ListBySeriesFn(ctx, series)
	}
	return leaderboard.FilterSeries(r.snapshot(), series), nil
}

func (r *fakeStandingRepository) SaveBatch(ctx context.Context, records []models.PlayerStanding) error {
	if r.SaveBatchFn != nil {
		return r.SaveBatchFn(ctx, records)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	for _, s := range records {
		r.standings[s.ID] = s
	}
	return nil
}

func (r *fakeStandingRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.standings, id)
	return nil
}

type broadcastCall struct {
	Room string
	Msg  hub.Message
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (b *fakeBroadcaster) BroadcastToRoom(room string, msg hub.Message) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, broadcastCall{Room: room, Msg: msg})
	return 1
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (u *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = data
	u.types[key] = contentType
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key), ETag: fmt.Sprintf("etag-%d", len(data))}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func fixedIngest(now time.Time) leaderboard.IngestOptions {
	n := 0
	return leaderboard.IngestOptions{
		Now: func() time.Time { return now },
		NewID: func() string {
			n++
			return fmt.Sprintf("00000000-0000-0000-0000-%012d", n)
		},
	}
}
