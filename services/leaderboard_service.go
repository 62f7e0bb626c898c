package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/poker-leaderboard/hub"
	"github.com/Dosada05/poker-leaderboard/leaderboard"
	"github.com/Dosada05/poker-leaderboard/metrics"
	"github.com/Dosada05/poker-leaderboard/models"
	"github.com/Dosada05/poker-leaderboard/repositories"
)

// Broadcaster доставляет сообщения подписчикам серии (реализуется hub.Hub).
type Broadcaster interface {
	BroadcastToRoom(room string, msg hub.Message) int
}

type SubmitResult struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Series    []string `json:"series"`
}

type RankingView struct {
	Series        string                  `json:"series"`
	LatestUpdated time.Time               `json:"latest_updated"`
	UpdatedLabel  string                  `json:"updated_label"`
	Rows          []models.RankedStanding `json:"rows"`
}

type BoardView struct {
	Index   leaderboard.SeriesIndex `json:"index"`
	Ranking *RankingView            `json:"ranking"`
	Players []string                `json:"players"`
	Places  []models.Place          `json:"places"`
}

type LeaderboardService interface {
	SubmitResults(ctx context.Context, raw []models.RawResultRow) (*SubmitResult, error)
	SeriesIndex(ctx context.Context, preselect string) (leaderboard.SeriesIndex, error)
	Ranking(ctx context.Context, series string) (*RankingView, error)
	Board(ctx context.Context, preselect string) (*BoardView, error)
	PointsChart(ctx context.Context, series string) ([]byte, error)
}

type LeaderboardOption func(*leaderboardService)

// WithIngestOptions подменяет часы и генератор идентификаторов (для тестов).
func WithIngestOptions(opts leaderboard.IngestOptions) LeaderboardOption {
	return func(s *leaderboardService) { s.ingest = opts }
}

type leaderboardService struct {
	repo        repositories.StandingRepository
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      *slog.Logger
	ingest      leaderboard.IngestOptions

	// submitMu сериализует циклы чтение-слияние-запись в пределах процесса.
	submitMu sync.Mutex
}

func NewLeaderboardService(
	repo repositories.StandingRepository,
	broadcaster Broadcaster,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...LeaderboardOption,
) LeaderboardService {
	s := &leaderboardService{
		repo:        repo,
		broadcaster: broadcaster,
		metrics:     m,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *leaderboardService) SubmitResults(ctx context.Context, raw []models.RawResultRow) (*SubmitResult, error) {
	started := time.Now()
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	current, err := s.repo.ListAll(ctx)
	if err != nil {
		s.recordSubmission(metrics.OutcomeFailed, 0, 0, started)
		return nil, fmt.Errorf("failed to load standings snapshot: %w", err)
	}

	result, err := leaderboard.Ingest(raw, leaderboard.NewSnapshot(current), s.ingest)
	if err != nil {
		if errors.Is(err, leaderboard.ErrInternalConsistency) {
			s.logger.Error("internal consistency violation during ingest", slog.Any("error", err), slog.Int("rows", len(raw)))
			s.recordSubmission(metrics.OutcomeFailed, 0, 0, started)
		} else {
			s.recordSubmission(metrics.OutcomeRejected, 0, 0, started)
		}
		return nil, err
	}

	records := result.Standings()
	if err := s.repo.SaveBatch(ctx, records); err != nil {
		s.recordSubmission(metrics.OutcomeFailed, 0, 0, started)
		if errors.Is(err, repositories.ErrStandingIdentityConflict) {
			return nil, fmt.Errorf("%w: %v", ErrStandingConflict, err)
		}
		return nil, fmt.Errorf("failed to persist standings: %w", err)
	}

	created, updated := result.Counts()
	s.recordSubmission(metrics.OutcomeOK, created, updated, started)
	s.logger.Info("results batch ingested",
		slog.Int("processed", len(records)),
		slog.Int("created", created),
		slog.Int("updated", updated),
		slog.Any("series", result.Series()),
	)

	s.broadcast(applyRecords(current, records), result.Series())

	return &SubmitResult{
		Processed: len(records),
		Created:   created,
		Updated:   updated,
		Series:    result.Series(),
	}, nil
}

func (s *leaderboardService) recordSubmission(outcome string, created, updated int, started time.Time) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(outcome, created, updated, time.Since(started))
	}
}

// broadcast рассылает обновлённую таблицу каждой затронутой серии.
func (s *leaderboardService) broadcast(all []models.PlayerStanding, series []string) {
	if s.broadcaster == nil {
		return
	}
	delivered := 0
	for _, name := range series {
		view := rankingFor(all, name)
		delivered += s.broadcaster.BroadcastToRoom(leaderboard.SeriesKey(name), hub.Message{
			Type:    hub.MessageStandingsUpdated,
			Payload: view,
		})
	}
	if s.metrics != nil {
		s.metrics.RecordLiveUpdates(delivered)
	}
}

// applyRecords накладывает сохранённые записи на снимок, с которым их сливали.
func applyRecords(current, records []models.PlayerStanding) []models.PlayerStanding {
	byID := make(map[string]int, len(current))
	out := make([]models.PlayerStanding, len(current), len(current)+len(records))
	copy(out, current)
	for i, st := range out {
		byID[st.ID] = i
	}
	for _, rec := range records {
		if i, ok := byID[rec.ID]; ok {
			out[i] = rec
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (s *leaderboardService) SeriesIndex(ctx context.Context, preselect string) (leaderboard.SeriesIndex, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return leaderboard.SeriesIndex{}, fmt.Errorf("failed to load standings: %w", err)
	}
	return leaderboard.BuildSeriesIndex(all, preselect), nil
}

// Ranking ранжирует одну серию. Пустое имя означает серию по умолчанию
// (самую свежую), для неё нужен весь список.
func (s *leaderboardService) Ranking(ctx context.Context, series string) (*RankingView, error) {
	series = strings.TrimSpace(series)
	if series == "" {
		all, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load standings: %w", err)
		}
		return rankingFor(all, leaderboard.BuildSeriesIndex(all, "").Default), nil
	}

	members, err := s.repo.ListBySeries(ctx, series)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings of series %q: %w", series, err)
	}
	if len(members) == 0 {
		return nil, &leaderboard.UnknownSeriesError{Series: []string{series}}
	}
	// Отображаемое имя серии берём из сохранённых записей, а не из запроса.
	return rankingFor(members, leaderboard.BuildSeriesIndex(members, "").Default), nil
}

func rankingFor(all []models.PlayerStanding, series string) *RankingView {
	view := &RankingView{Series: series, Rows: []models.RankedStanding{}}
	if series == "" {
		view.UpdatedLabel = UpdatedLabel(time.Time{})
		return view
	}
	members := leaderboard.FilterSeries(all, series)
	view.LatestUpdated = leaderboard.LatestUpdated(members)
	view.UpdatedLabel = UpdatedLabel(view.LatestUpdated)
	view.Rows = leaderboard.Rank(members)
	return view
}

// UpdatedLabel форматирует дату обновления серии для страницы.
func UpdatedLabel(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.UTC().Format("1/2/2006")
}

func (s *leaderboardService) Board(ctx context.Context, preselect string) (*BoardView, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}

	ix := leaderboard.BuildSeriesIndex(all, preselect)
	return &BoardView{
		Index:   ix,
		Ranking: rankingFor(all, ix.Default),
		Players: playerNames(all),
		Places:  models.Places,
	}, nil
}

// playerNames перечисляет известных игроков по одному разу без учёта регистра.
func playerNames(all []models.PlayerStanding) []string {
	seen := make(map[string]struct{}, len(all))
	names := make([]string, 0, len(all))
	for _, st := range all {
		key := leaderboard.Fold(st.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, st.Name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		fi, fj := leaderboard.Fold(names[i]), leaderboard.Fold(names[j])
		if fi != fj {
			return fi < fj
		}
		return names[i] < names[j]
	})
	return names
}

func (s *leaderboardService) PointsChart(ctx context.Context, series string) ([]byte, error) {
	view, err := s.Ranking(ctx, series)
	if err != nil {
		return nil, err
	}
	png, err := renderPointsChart(view.Series, view.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to render points chart: %w", err)
	}
	return png, nil
}
