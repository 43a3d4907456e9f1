package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "clipforge/internal/pkg/errors"
)

// PGStore is the PostgreSQL-backed job record store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps a pgx pool as a Store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Create(ctx context.Context, j *Job) error {
	propsJSON, err := json.Marshal(j.Props)
	if err != nil {
		return fmt.Errorf("marshal props: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO render_jobs
			(id, owner_id, title, template_id, props, status, progress,
			 duration_frames, fps, width, height, created_at)
		VALUES ($1,$2,$3,$4,$5::jsonb,$6,$7,$8,$9,$10,$11,$12)
	`, j.ID, j.OwnerID, j.Title, j.TemplateID, propsJSON, j.Status, j.Progress,
		j.DurationFrames, j.FPS, j.Width, j.Height, j.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert render job: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*Job, error) {
	return s.scanOne(ctx, `
		SELECT id, owner_id, title, template_id, props, status, progress,
		       COALESCE(artifact_url,''), COALESCE(error_text,''),
		       duration_frames, fps, width, height, created_at, completed_at
		FROM render_jobs WHERE id=$1
	`, id)
}

func (s *PGStore) GetOwned(ctx context.Context, id, ownerID string) (*Job, error) {
	return s.scanOne(ctx, `
		SELECT id, owner_id, title, template_id, props, status, progress,
		       COALESCE(artifact_url,''), COALESCE(error_text,''),
		       duration_frames, fps, width, height, created_at, completed_at
		FROM render_jobs WHERE id=$1 AND owner_id=$2
	`, id, ownerID)
}

func (s *PGStore) ListOwned(ctx context.Context, ownerID string, limit int) ([]Job, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, title, template_id, props, status, progress,
		       COALESCE(artifact_url,''), COALESCE(error_text,''),
		       duration_frames, fps, width, height, created_at, completed_at
		FROM render_jobs
		WHERE owner_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list render jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (s *PGStore) MarkRendering(ctx context.Context, id string, progress int) error {
	cmd, err := s.pool.Exec(ctx, `
		UPDATE render_jobs
		SET status=$2, progress=GREATEST(progress,$3)
		WHERE id=$1 AND status=$4
	`, id, StatusRendering, progress, StatusPending)
	if err != nil {
		return fmt.Errorf("mark rendering: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NotFound("pending job", id)
	}
	return nil
}

func (s *PGStore) SetProgress(ctx context.Context, id string, progress int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE render_jobs
		SET progress=GREATEST(progress,$2)
		WHERE id=$1 AND status=$3
	`, id, progress, StatusRendering)
	if err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

func (s *PGStore) Complete(ctx context.Context, id, artifactURL string) error {
	cmd, err := s.pool.Exec(ctx, `
		UPDATE render_jobs
		SET status=$2, progress=100, artifact_url=$3, error_text=NULL, completed_at=NOW()
		WHERE id=$1 AND status=$4
	`, id, StatusCompleted, artifactURL, StatusRendering)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NotFound("rendering job", id)
	}
	return nil
}

func (s *PGStore) Fail(ctx context.Context, id, message string) error {
	if len(message) > 2000 {
		message = message[:2000]
	}
	cmd, err := s.pool.Exec(ctx, `
		UPDATE render_jobs
		SET status=$2, error_text=$3, artifact_url=NULL
		WHERE id=$1 AND status IN ($4,$5)
	`, id, StatusFailed, message, StatusPending, StatusRendering)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NotFound("active job", id)
	}
	return nil
}

func (s *PGStore) scanOne(ctx context.Context, query string, args ...any) (*Job, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query render job: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.NotFound("job", fmt.Sprint(args[0]))
	}
	return scanJob(rows)
}

func scanJob(row pgx.Row) (*Job, error) {
	var (
		j         Job
		propsJSON []byte
	)
	err := row.Scan(
		&j.ID, &j.OwnerID, &j.Title, &j.TemplateID, &propsJSON,
		&j.Status, &j.Progress, &j.ArtifactURL, &j.ErrorMessage,
		&j.DurationFrames, &j.FPS, &j.Width, &j.Height,
		&j.CreatedAt, &j.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan render job: %w", err)
	}
	if len(propsJSON) > 0 {
		if err := json.Unmarshal(propsJSON, &j.Props); err != nil {
			return nil, fmt.Errorf("decode props: %w", err)
		}
	}
	return &j, nil
}
