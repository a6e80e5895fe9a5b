package domain

import (
	"fmt"
	"sort"
	"time"
)

// ReportFilePrefix starts every generated report file name.
const ReportFilePrefix = "GovernanceWeekly_"

// Section is one category block of the weekly report.
type Section struct {
	Category string
	Articles []Article
}

// Report is everything the renderer needs to draw the weekly PDF.
type Report struct {
	Title       string
	Subtitle    string
	Blurb       string
	PeriodStart time.Time
	PeriodEnd   time.Time
	GeneratedAt time.Time
	Sections    []Section
}

// ArticleCount returns the number of entries across all sections.
func (r Report) ArticleCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Articles)
	}
	return n
}

// Filename returns the report file name for the generation day.
func (r Report) Filename() string {
	return ReportFilePrefix + r.GeneratedAt.Format("20060102") + ".pdf"
}

// DateRange formats the covered period as "Jan 2 - Jan 9, 2026".
func (r Report) DateRange() string {
	return fmt.Sprintf("%s - %s", r.PeriodStart.Format("Jan 2"), r.PeriodEnd.Format("Jan 2, 2006"))
}

// GroupByCategory places every article under each of its categories.
// Election comes first, Governance second, any other category after in name order.
// Articles inside a section are sorted by impact descending.
func GroupByCategory(articles []Article) []Section {
	buckets := map[string][]Article{}
	for _, a := range articles {
		for _, cat := range a.Categories {
			buckets[cat] = append(buckets[cat], a)
		}
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := categoryRank(names[i]), categoryRank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		list := buckets[name]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].ImpactScore > list[j].ImpactScore
		})
		sections = append(sections, Section{Category: name, Articles: list})
	}
	return sections
}

func categoryRank(name string) int {
	switch name {
	case CategoryElection:
		return 0
	case CategoryGovernance:
		return 1
	default:
		return 2
	}
}

// ReportRun is the audit row stored for each generated report.
type ReportRun struct {
	ID          string
	GeneratedAt time.Time
	Path        string
	Selected    int
	Considered  int
	Pages       int
}

// Stats summarises the article store.
type Stats struct {
	Total        int
	Categorized  int
	Translated   int
	Distribution map[string]int
	ByStatus     map[ReviewStatus]int
}
