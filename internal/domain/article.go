package domain

import (
	"slices"
	"strings"
	"time"
)

// Category names assigned by the classifier.
const (
	CategoryElection   = "Election"
	CategoryGovernance = "Governance"
)

// Article is the unit of work flowing from scraping to the weekly report.
type Article struct {
	URL          string
	SourceDomain string
	Language     string

	TitleOriginal       string
	TitleTranslated     string
	FullTextOriginal    string
	FullTextTranslated  string
	TranslationMetadata map[string]string
	Summary             string

	PublishedAt time.Time
	FetchedAt   time.Time

	Categories     []string
	RelevanceScore float64
	WeightedScore  int
	// ImpactScore is assigned by the ranker and is meaningless before it.
	ImpactScore float64

	ContentHash    string
	Status         ReviewStatus
	RequiresReview bool
	ReviewerNotes  string
}

// DisplayTitle prefers the translated title over the original one.
func (a Article) DisplayTitle() string {
	if strings.TrimSpace(a.TitleTranslated) != "" {
		return a.TitleTranslated
	}
	return a.TitleOriginal
}

// ScoringText returns the translated text when present.
func (a Article) ScoringText() string {
	if strings.TrimSpace(a.FullTextTranslated) != "" {
		return a.FullTextTranslated
	}
	return a.FullTextOriginal
}

// HasCategory reports whether the article carries the given category.
func (a Article) HasCategory(name string) bool {
	return slices.Contains(a.Categories, name)
}

// ReviewStatus enumerates the storage review workflow.
type ReviewStatus string

const (
	StatusPendingReview ReviewStatus = "pending_review"
	StatusVerified      ReviewStatus = "verified"
	StatusRejected      ReviewStatus = "rejected"
)

// Candidate is a discovered article link not yet fetched.
type Candidate struct {
	URL          string
	SourceDomain string
	SiteName     string
	Language     string
	// Title and Summary are filled by feed based scanners.
	Title       string
	Summary     string
	PublishedAt time.Time
}
