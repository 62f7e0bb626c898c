package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/poker-leaderboard/leaderboard"
	"github.com/Dosada05/poker-leaderboard/metrics"
	"github.com/Dosada05/poker-leaderboard/models"
	"github.com/Dosada05/poker-leaderboard/repositories"
	"github.com/Dosada05/poker-leaderboard/storage"
)

type ExportPayload struct {
	Data      []byte
	MediaType string
	Filename  string
	Rows      int
}

type ExportService interface {
	Export(ctx context.Context, series []string, format leaderboard.Format) (*ExportPayload, error)
	Publish(ctx context.Context, series []string, format leaderboard.Format) (*storage.UploadResult, error)
	PublishAll(ctx context.Context) ([]storage.UploadResult, error)
}

// snapshotFormats публикуются PublishAll для каждой серии.
var snapshotFormats = []leaderboard.Format{leaderboard.FormatCSV, leaderboard.FormatJSON}

const publishConcurrency = 4

type exportService struct {
	repo     repositories.StandingRepository
	uploader storage.FileUploader // nil, если публикация не настроена
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewExportService(repo repositories.StandingRepository, uploader storage.FileUploader, m *metrics.Metrics, logger *slog.Logger) ExportService {
	return &exportService{
		repo:     repo,
		uploader: uploader,
		metrics:  m,
		logger:   logger,
	}
}

func (s *exportService) Export(ctx context.Context, series []string, format leaderboard.Format) (*ExportPayload, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}

	res, err := leaderboard.Export(all, series, format)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordExport(string(res.Format))
	}

	return &ExportPayload{
		Data:      res.Data,
		MediaType: res.MediaType,
		Filename:  ExportFilename(series, res.Format),
		Rows:      res.Rows,
	}, nil
}

// ExportFilename строит имя вида "<slug серий>-standings.<ext>".
func ExportFilename(series []string, format leaderboard.Format) string {
	return seriesSlug(series) + "-standings." + format.Extension()
}

func seriesSlug(series []string) string {
	parts := make([]string, 0, len(series))
	for _, name := range series {
		if name = strings.TrimSpace(name); name != "" {
			parts = append(parts, name)
		}
	}
	base := slug.Make(strings.Join(parts, " "))
	if base == "" {
		base = "series"
	}
	return base
}

// snapshotSlugs даёт каждой серии (по ключу) свой префикс объекта. Если slug
// нескольких серий совпал ("Winter 2026" и "Winter-2026"), к нему добавляется
// короткий стабильный хеш ключа серии.
func snapshotSlugs(series []models.SeriesSummary) map[string]string {
	bases := make(map[string]string, len(series))
	taken := make(map[string]int, len(series))
	for _, s := range series {
		base := seriesSlug([]string{s.Series})
		bases[s.Key] = base
		taken[base]++
	}
	for key, base := range bases {
		if taken[base] > 1 {
			bases[key] = base + "-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()[:8]
		}
	}
	return bases
}

func (s *exportService) Publish(ctx context.Context, series []string, format leaderboard.Format) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrPublishingDisabled
	}

	payload, err := s.Export(ctx, series, format)
	if err != nil {
		return nil, err
	}

	res, err := s.uploader.Upload(ctx, payload.Filename, payload.MediaType, bytes.NewReader(payload.Data))
	if err != nil {
		s.recordPublish(metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to publish export %s: %w", payload.Filename, err)
	}
	s.recordPublish(metrics.OutcomeOK)
	s.logger.Info("export published", slog.String("key", res.Key), slog.String("location", res.Location), slog.Int("rows", payload.Rows))
	return res, nil
}

func (s *exportService) recordPublish(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordPublish(outcome)
	}
}

// PublishAll выгружает снимок каждой серии во всех форматах snapshotFormats.
func (s *exportService) PublishAll(ctx context.Context) ([]storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrPublishingDisabled
	}

	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}
	ix := leaderboard.BuildSeriesIndex(all, "")
	slugs := snapshotSlugs(ix.Series)

	results := make([]storage.UploadResult, len(ix.Series)*len(snapshotFormats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(publishConcurrency)

	for i, summary := range ix.Series {
		for j, format := range snapshotFormats {
			slot := i*len(snapshotFormats) + j
			series, format := summary.Series, format
			key := slugs[summary.Key] + "-standings." + format.Extension()
			g.Go(func() error {
				res, err := leaderboard.Export(all, []string{series}, format)
				if err != nil {
					return err
				}
				uploaded, err := s.uploader.Upload(gctx, key, res.MediaType, bytes.NewReader(res.Data))
				if err != nil {
					s.recordPublish(metrics.OutcomeFailed)
					return fmt.Errorf("failed to publish %s: %w", key, err)
				}
				s.recordPublish(metrics.OutcomeOK)
				results[slot] = *uploaded
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Info("standings snapshot published", slog.Int("series", len(ix.Series)), slog.Int("objects", len(results)))
	return results, nil
}
