package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/sqlinline"
)

// MoodboardRepositoryPG implements domain.MoodboardRepository on PostgreSQL.
type MoodboardRepositoryPG struct {
	sql      infra.SQLExecutor
	replacer *strings.Replacer
}

// NewMoodboardRepositoryPG binds the repository to a history table. The name
// is quoted, so any configured table name is safe to interpolate.
func NewMoodboardRepositoryPG(sql infra.SQLExecutor, table string) *MoodboardRepositoryPG {
	return &MoodboardRepositoryPG{
		sql: sql,
		replacer: strings.NewReplacer(
			"{{table}}", pq.QuoteIdentifier(table),
			"{{index}}", pq.QuoteIdentifier(table+"_moodboard_idx"),
		),
	}
}

func (r *MoodboardRepositoryPG) query(q string) string {
	return r.replacer.Replace(q)
}

// EnsureSchema creates the history table and its lookup index.
func (r *MoodboardRepositoryPG) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{sqlinline.QEnsureMoodboardHistory, sqlinline.QEnsureMoodboardHistoryIndex} {
		if _, err := r.sql.Exec(ctx, r.query(q)); err != nil {
			return fmt.Errorf("repo: ensure moodboard schema: %w", err)
		}
	}
	return nil
}

func (r *MoodboardRepositoryPG) Put(ctx context.Context, a domain.GeneratedAsset) error {
	tag, err := r.sql.Exec(ctx, r.query(sqlinline.QInsertMoodboardImage),
		a.ID, a.MoodboardID, a.FullPrompt, a.Prompt, a.GeneratedDate, a.Base64,
		a.Original, a.Thumbnail, a.PartType, a.Bucket, a.Key, a.AssetType, a.Style)
	if err != nil {
		return fmt.Errorf("repo: insert moodboard image: %w: %w", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("repo: insert moodboard image affected %d rows: %w", tag.RowsAffected(), domain.ErrPersistence)
	}
	return nil
}

func (r *MoodboardRepositoryPG) ListByMoodboard(ctx context.Context, moodboardID string) ([]domain.GeneratedAsset, error) {
	rows, err := r.sql.Query(ctx, r.query(sqlinline.QListMoodboardImages), moodboardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := []domain.GeneratedAsset{}
	for rows.Next() {
		var a domain.GeneratedAsset
		if err := rows.Scan(&a.ID, &a.MoodboardID, &a.FullPrompt, &a.Prompt, &a.GeneratedDate, &a.Base64,
			&a.Original, &a.Thumbnail, &a.PartType, &a.Bucket, &a.Key, &a.AssetType, &a.Style); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}

var _ domain.MoodboardRepository = (*MoodboardRepositoryPG)(nil)
