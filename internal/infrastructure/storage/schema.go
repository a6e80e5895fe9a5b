package storage

const articleColumns = `
	url TEXT PRIMARY KEY,
	source_domain TEXT NOT NULL,
	language TEXT,
	title_original TEXT,
	full_text_original TEXT,
	title_translated TEXT,
	full_text_translated TEXT,
	translation_metadata TEXT,
	summary TEXT,
	categories TEXT,
	relevance_score %[1]s,
	weighted_score INTEGER,
	impact_score %[1]s,
	content_hash TEXT,
	status TEXT,
	requires_review INTEGER,
	reviewer_notes TEXT,
	published_at TEXT,
	fetched_at TEXT NOT NULL`

var schema = []string{
	"CREATE TABLE IF NOT EXISTS articles (" + articleColumns + "\n)",
	"CREATE INDEX IF NOT EXISTS idx_articles_fetched_at ON articles(fetched_at)",
	"CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status)",
	`CREATE TABLE IF NOT EXISTS report_runs (
	id TEXT PRIMARY KEY,
	generated_at TEXT NOT NULL,
	path TEXT NOT NULL,
	selected INTEGER NOT NULL,
	considered INTEGER NOT NULL,
	pages INTEGER NOT NULL
)`,
}
