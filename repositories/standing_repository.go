package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Dosada05/poker-leaderboard/models"
)

var (
	ErrStandingNotFound         = errors.New("player standing not found")
	ErrStandingIdentityConflict = errors.New("player standing identity conflict")
)

type StandingRepository interface {
	ListAll(ctx context.Context) ([]models.PlayerStanding, error)
	ListBySeries(ctx context.Context, series string) ([]models.PlayerStanding, error)
	SaveBatch(ctx context.Context, records []models.PlayerStanding) error
	Delete(ctx context.Context, id string) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

const standingColumns = `id, name, series, points, results, updated`

func (r *postgresStandingRepository) ListAll(ctx context.Context) ([]models.PlayerStanding, error) {
	query := `SELECT ` + standingColumns + ` FROM player_standings ORDER BY updated DESC, id`
	return r.list(ctx, r.db, query)
}

// ListBySeries сравнивает серию без учёта регистра, как и уникальный индекс.
func (r *postgresStandingRepository) ListBySeries(ctx context.Context, series string) ([]models.PlayerStanding, error) {
	query := `SELECT ` + standingColumns + ` FROM player_standings
		WHERE lower(series) = lower($1)
		ORDER BY points DESC, lower(name), id`
	return r.list(ctx, r.db, query, strings.TrimSpace(series))
}

func (r *postgresStandingRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.PlayerStanding, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query player standings: %w", err)
	}
	defer rows.Close()

	standings := make([]models.PlayerStanding, 0)
	for rows.Next() {
		s, err := scanStanding(rows)
		if err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player standings: %w", err)
	}
	return standings, nil
}

// SaveBatch записывает все записи пакета в одной транзакции: либо все, либо ничего.
func (r *postgresStandingRepository) SaveBatch(ctx context.Context, records []models.PlayerStanding) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SaveBatch failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
			if err != nil {
				err = fmt.Errorf("SaveBatch failed to commit: %w", err)
			}
		}
	}()

	if err = upsertStandings(ctx, tx, records); err != nil {
		return err
	}
	return nil
}

func upsertStandings(ctx context.Context, exec SQLExecutor, records []models.PlayerStanding) error {
	query := `
		INSERT INTO player_standings (` + standingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			points = EXCLUDED.points,
			results = EXCLUDED.results,
			updated = EXCLUDED.updated`

	for _, s := range records {
		_, err := exec.ExecContext(ctx, query,
			s.ID, s.Name, s.Series, s.Points, s.Results.String(), s.Updated.UTC(),
		)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("%w: %q in %q", ErrStandingIdentityConflict, s.Name, s.Series)
			}
			return fmt.Errorf("failed to upsert standing %s: %w", s.ID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM player_standings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete standing %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}

func scanStanding(rowScanner interface{ Scan(...interface{}) error }) (models.PlayerStanding, error) {
	var (
		s       models.PlayerStanding
		results sql.NullString
	)
	err := rowScanner.Scan(&s.ID, &s.Name, &s.Series, &s.Points, &results, &s.Updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, ErrStandingNotFound
		}
		return s, fmt.Errorf("failed to scan player standing: %w", err)
	}
	s.Results = models.ParseResults(results.String)
	s.Updated = s.Updated.UTC()
	return s, nil
}
