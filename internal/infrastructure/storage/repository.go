package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/ports"
)

// ErrNotFound is returned when an update targets a missing article.
var ErrNotFound = errors.New("article not found")

// timestamps are stored as fixed width UTC text so they compare correctly as strings
const timeLayout = "2006-01-02T15:04:05.000000Z"

var articleFields = []string{
	"url", "source_domain", "language",
	"title_original", "full_text_original", "title_translated", "full_text_translated",
	"translation_metadata", "summary", "categories",
	"relevance_score", "weighted_score", "impact_score",
	"content_hash", "status", "requires_review", "reviewer_notes",
	"published_at", "fetched_at",
}

// Repository persists articles into SQLite or Postgres.
type Repository struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
}

var _ ports.Repository = (*Repository)(nil)

// Open connects to driver ("sqlite" or "postgres") and creates the schema.
func Open(ctx context.Context, driver, dsn string) (*Repository, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case "sqlite", "":
		driver = "sqlite"
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// one connection keeps :memory: databases alive and serialises writers
		db.SetMaxOpenConns(1)
	case "postgres":
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	repo := NewRepository(db, driver)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewRepository wires an existing sql.DB.
func NewRepository(db *sql.DB, driver string) *Repository {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == "postgres" {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &Repository{db: db, driver: driver, builder: builder}
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Migrate creates tables and indexes if missing.
func (r *Repository) Migrate(ctx context.Context) error {
	if r.driver == "sqlite" {
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
			if _, err := r.db.ExecContext(ctx, pragma); err != nil {
				return fmt.Errorf("apply %s: %w", pragma, err)
			}
		}
	}

	floatType := "REAL"
	if r.driver == "postgres" {
		floatType = "DOUBLE PRECISION"
	}
	for _, stmt := range schema {
		if strings.Contains(stmt, "%[1]s") {
			stmt = fmt.Sprintf(stmt, floatType)
		}
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ExistingURLs returns the subset of urls already stored.
func (r *Repository) ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	result := map[string]bool{}
	if len(urls) == 0 {
		return result, nil
	}

	query := r.builder.Select("url").From("articles")
	if r.driver == "postgres" {
		query = query.Where(sq.Expr("url = ANY(?)", pq.StringArray(urls)))
	} else {
		query = query.Where(sq.Eq{"url": urls})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// Upsert inserts the article or replaces every stored field of an existing URL.
func (r *Repository) Upsert(ctx context.Context, article domain.Article) error {
	values, err := articleValues(article)
	if err != nil {
		return err
	}

	updates := make([]string, 0, len(articleFields)-1)
	for _, f := range articleFields[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", f, f))
	}

	sqlStr, args, err := r.builder.Insert("articles").
		Columns(articleFields...).
		Values(values...).
		Suffix("ON CONFLICT (url) DO UPDATE SET " + strings.Join(updates, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("upsert article %s: %w", article.URL, err)
	}
	return nil
}

// ListCandidates returns categorized, non-rejected articles fetched at or after since.
func (r *Repository) ListCandidates(ctx context.Context, since time.Time) ([]domain.Article, error) {
	sqlStr, args, err := r.builder.Select(articleFields...).
		From("articles").
		Where(sq.And{
			sq.NotEq{"categories": nil},
			sq.NotEq{"categories": []string{"", "[]", "null"}},
			sq.NotEq{"status": string(domain.StatusRejected)},
			sq.GtOrEq{"fetched_at": formatTime(since)},
		}).
		OrderBy("fetched_at", "url").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []domain.Article
	for rows.Next() {
		art, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, art)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// Get loads one article by URL.
func (r *Repository) Get(ctx context.Context, url string) (domain.Article, error) {
	sqlStr, args, err := r.builder.Select(articleFields...).From("articles").Where(sq.Eq{"url": url}).ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return domain.Article{}, fmt.Errorf("query article: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Article{}, fmt.Errorf("rows iteration: %w", err)
		}
		return domain.Article{}, ErrNotFound
	}
	return scanArticle(rows)
}

// UpdateImpact stores the ranker's impact score and review status.
func (r *Repository) UpdateImpact(ctx context.Context, url string, impact float64, status domain.ReviewStatus) error {
	sqlStr, args, err := r.builder.Update("articles").
		Set("impact_score", impact).
		Set("status", string(status)).
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update impact %s: %w", url, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update impact %s: %w", url, ErrNotFound)
	}
	return nil
}

// RecordRun stores an audit row for a generated report.
func (r *Repository) RecordRun(ctx context.Context, run domain.ReportRun) error {
	sqlStr, args, err := r.builder.Insert("report_runs").
		Columns("id", "generated_at", "path", "selected", "considered", "pages").
		Values(run.ID, formatTime(run.GeneratedAt), run.Path, run.Selected, run.Considered, run.Pages).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// Runs lists report runs, newest first.
func (r *Repository) Runs(ctx context.Context) ([]domain.ReportRun, error) {
	sqlStr, args, err := r.builder.Select("id", "generated_at", "path", "selected", "considered", "pages").
		From("report_runs").
		OrderBy("generated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []domain.ReportRun
	for rows.Next() {
		var (
			run       domain.ReportRun
			generated string
		)
		if err := rows.Scan(&run.ID, &generated, &run.Path, &run.Selected, &run.Considered, &run.Pages); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.GeneratedAt = parseTime(generated)
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// Stats counts stored, categorized and translated articles plus per-category and per-status totals.
func (r *Repository) Stats(ctx context.Context) (domain.Stats, error) {
	stats := domain.Stats{
		Distribution: map[string]int{},
		ByStatus:     map[domain.ReviewStatus]int{},
	}

	sqlStr, args, err := r.builder.Select("categories", "title_translated", "status").From("articles").ToSql()
	if err != nil {
		return stats, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return stats, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var categories, translated, status sql.NullString
		if err := rows.Scan(&categories, &translated, &status); err != nil {
			return stats, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total++
		if strings.TrimSpace(translated.String) != "" {
			stats.Translated++
		}
		if status.Valid {
			stats.ByStatus[domain.ReviewStatus(status.String)]++
		}

		cats, err := decodeCategories(categories.String)
		if err != nil {
			return stats, err
		}
		if len(cats) > 0 {
			stats.Categorized++
		}
		for _, c := range cats {
			stats.Distribution[c]++
		}
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("rows iteration: %w", err)
	}
	return stats, nil
}

// Clear deletes every article and report run.
func (r *Repository) Clear(ctx context.Context) error {
	for _, table := range []string{"articles", "report_runs"} {
		sqlStr, args, err := r.builder.Delete(table).ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func articleValues(a domain.Article) ([]any, error) {
	categories := a.Categories
	if categories == nil {
		categories = []string{}
	}
	catsJSON, err := json.Marshal(categories)
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}

	var metaJSON any
	if len(a.TranslationMetadata) > 0 {
		raw, err := json.Marshal(a.TranslationMetadata)
		if err != nil {
			return nil, fmt.Errorf("marshal translation metadata: %w", err)
		}
		metaJSON = string(raw)
	}

	var published any
	if !a.PublishedAt.IsZero() {
		published = formatTime(a.PublishedAt)
	}

	fetched := a.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now()
	}

	status := a.Status
	if status == "" {
		status = domain.StatusPendingReview
	}

	requiresReview := 0
	if a.RequiresReview {
		requiresReview = 1
	}

	return []any{
		a.URL, a.SourceDomain, a.Language,
		a.TitleOriginal, a.FullTextOriginal, a.TitleTranslated, a.FullTextTranslated,
		metaJSON, a.Summary, string(catsJSON),
		a.RelevanceScore, a.WeightedScore, a.ImpactScore,
		a.ContentHash, string(status), requiresReview, a.ReviewerNotes,
		published, formatTime(fetched),
	}, nil
}

func scanArticle(rows *sql.Rows) (domain.Article, error) {
	var (
		a                                    domain.Article
		language, titleOrig, textOrig        sql.NullString
		titleTr, textTr, meta, summary, cats sql.NullString
		hash, status, notes, published       sql.NullString
		relevance, impact                    sql.NullFloat64
		weighted, requiresReview             sql.NullInt64
		fetched                              string
	)
	if err := rows.Scan(
		&a.URL, &a.SourceDomain, &language,
		&titleOrig, &textOrig, &titleTr, &textTr,
		&meta, &summary, &cats,
		&relevance, &weighted, &impact,
		&hash, &status, &requiresReview, &notes,
		&published, &fetched,
	); err != nil {
		return a, fmt.Errorf("scan article: %w", err)
	}

	a.Language = language.String
	a.TitleOriginal = titleOrig.String
	a.FullTextOriginal = textOrig.String
	a.TitleTranslated = titleTr.String
	a.FullTextTranslated = textTr.String
	a.Summary = summary.String
	a.RelevanceScore = relevance.Float64
	a.WeightedScore = int(weighted.Int64)
	a.ImpactScore = impact.Float64
	a.ContentHash = hash.String
	a.Status = domain.ReviewStatus(status.String)
	a.RequiresReview = requiresReview.Int64 != 0
	a.ReviewerNotes = notes.String
	a.FetchedAt = parseTime(fetched)
	if published.Valid {
		a.PublishedAt = parseTime(published.String)
	}

	categories, err := decodeCategories(cats.String)
	if err != nil {
		return a, err
	}
	a.Categories = categories

	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &a.TranslationMetadata); err != nil {
			return a, fmt.Errorf("decode translation metadata for %s: %w", a.URL, err)
		}
	}
	return a, nil
}

func decodeCategories(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" || raw == "null" {
		return nil, nil
	}
	var cats []string
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if len(cats) == 0 {
		return nil, nil
	}
	return cats, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

func ensureDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	return nil
}
