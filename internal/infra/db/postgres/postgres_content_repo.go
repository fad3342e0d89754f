// File: internal/infra/db/postgres/postgres_content_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"cjk-assistant/internal/domain"
	"cjk-assistant/internal/domain/model"
	"cjk-assistant/internal/domain/ports/repository"
)

var _ repository.ContentRepository = (*ContentRepo)(nil)

// ContentRepo reads the published content of the centre's site (blog posts,
// activities, member roll) to feed context snapshots. Strictly read-only; the
// CRUD side of these tables belongs to the site, not to the assistant.
type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

func (r *ContentRepo) RecentPublishedArticles(ctx context.Context, limit int) ([]model.ArticleSummary, error) {
	const q = `
SELECT b.title,
       COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username),
       COALESCE(c.name, 'Sans catégorie')
FROM blog_posts b
JOIN users u ON u.id = b.author_id
LEFT JOIN blog_categories c ON c.id = b.category_id
WHERE b.is_published
ORDER BY b.created_at DESC
LIMIT $1;`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: articles: %v", domain.ErrContextUnavailable, err)
	}
	defer rows.Close()

	var out []model.ArticleSummary
	for rows.Next() {
		var a model.ArticleSummary
		if err := rows.Scan(&a.Title, &a.Author, &a.Category); err != nil {
			return nil, fmt.Errorf("%w: articles scan: %v", domain.ErrContextUnavailable, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: articles rows: %v", domain.ErrContextUnavailable, err)
	}
	return out, nil
}

// activityTypeLabels mirrors the site's display labels for activity codes.
var activityTypeLabels = map[string]string{
	"sport":     "Sport",
	"culture":   "Culture",
	"formation": "Formation",
	"paix":      "Paix et Réconciliation",
	"autre":     "Autre",
}

func (r *ContentRepo) RecentPublishedActivities(ctx context.Context, limit int) ([]model.ActivitySummary, error) {
	const q = `
SELECT title, activity_type, to_char(date_activite, 'DD/MM/YYYY')
FROM activities
WHERE is_published
ORDER BY date_activite DESC
LIMIT $1;`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: activities: %v", domain.ErrContextUnavailable, err)
	}
	defer rows.Close()

	var out []model.ActivitySummary
	for rows.Next() {
		var a model.ActivitySummary
		var code string
		if err := rows.Scan(&a.Title, &code, &a.Date); err != nil {
			return nil, fmt.Errorf("%w: activities scan: %v", domain.ErrContextUnavailable, err)
		}
		if label, ok := activityTypeLabels[code]; ok {
			a.Type = label
		} else {
			a.Type = code
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: activities rows: %v", domain.ErrContextUnavailable, err)
	}
	return out, nil
}

func (r *ContentRepo) ActiveMemberCount(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM members WHERE is_active_member;`
	var n int
	if err := r.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: member count: %v", domain.ErrContextUnavailable, err)
	}
	return n, nil
}
