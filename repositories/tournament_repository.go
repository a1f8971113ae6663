package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/goldsprint/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentConflict = errors.New("tournament snapshot conflict")
)

type TournamentRepository interface {
	// Save inserts the tournament or replaces its stored snapshot.
	Save(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	ListByStatus(ctx context.Context, statuses []models.TournamentStatus) ([]*models.Tournament, error)
	Delete(ctx context.Context, id string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Save(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	snapshot, err := EncodeSnapshot(t)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tournaments (id, name, status, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    status = EXCLUDED.status,
		    snapshot = EXCLUDED.snapshot,
		    updated_at = EXCLUDED.updated_at`

	_, err = r.getExecutor(exec).ExecContext(ctx, query,
		t.ID, t.Name, t.Status, string(snapshot), t.CreatedAt, t.UpdatedAt,
	)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT snapshot FROM tournaments WHERE id = $1`

	var snapshot []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&snapshot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %s: %w", id, err)
	}
	return DecodeSnapshot(snapshot)
}

func (r *postgresTournamentRepository) ListByStatus(ctx context.Context, statuses []models.TournamentStatus) ([]*models.Tournament, error) {
	query := `SELECT snapshot FROM tournaments ORDER BY updated_at DESC`
	args := []interface{}{}
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query = `SELECT snapshot FROM tournaments WHERE status = ANY($1) ORDER BY updated_at DESC`
		args = append(args, pq.Array(values))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var snapshot []byte
		if scanErr := rows.Scan(&snapshot); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		t, decodeErr := DecodeSnapshot(snapshot)
		if decodeErr != nil {
			return nil, decodeErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505", "40001": // unique_violation, serialization_failure
			return fmt.Errorf("%w: %s", ErrTournamentConflict, pqErr.Message)
		}
	}
	return fmt.Errorf("failed to save tournament: %w", err)
}
