package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/ports"
)

type stubSource struct {
	candidates []domain.Candidate
	err        error
	calls      int
}

func (s *stubSource) FetchCandidates(context.Context, time.Time) ([]domain.Candidate, error) {
	s.calls++
	return s.candidates, s.err
}

type stubFetcher map[string]string

func (f stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	page, ok := f[url]
	if !ok {
		return nil, errors.New("status 404")
	}
	return []byte(page), nil
}

type stubExtractor map[string]ports.Extracted

func (e stubExtractor) Extract(pageURL string, _ []byte) (ports.Extracted, error) {
	out, ok := e[pageURL]
	if !ok {
		return ports.Extracted{}, errors.New("no readable content")
	}
	return out, nil
}

type stubTranslator map[string]string

func (stubTranslator) Backend() string { return "stub" }

func (t stubTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	out, ok := t[text]
	if !ok {
		return text, errors.New("all translation backends failed")
	}
	return out, nil
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(_ context.Context, a domain.Article) (string, error) {
	return "Summary: " + a.DisplayTitle(), nil
}

type memRepo struct {
	mu       sync.Mutex
	articles map[string]domain.Article
	updated  map[string]float64
	statuses map[string]domain.ReviewStatus
	runs     []domain.ReportRun
	since    time.Time
}

var _ ports.Repository = (*memRepo)(nil)

func newMemRepo(articles ...domain.Article) *memRepo {
	r := &memRepo{
		articles: map[string]domain.Article{},
		updated:  map[string]float64{},
		statuses: map[string]domain.ReviewStatus{},
	}
	for _, a := range articles {
		r.articles[a.URL] = a
	}
	return r
}

func (r *memRepo) ExistingURLs(_ context.Context, urls []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for _, u := range urls {
		if _, ok := r.articles[u]; ok {
			out[u] = true
		}
	}
	return out, nil
}

func (r *memRepo) Upsert(_ context.Context, a domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles[a.URL] = a
	return nil
}

func (r *memRepo) ListCandidates(_ context.Context, since time.Time) ([]domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.since = since
	var out []domain.Article
	for _, a := range r.articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out, nil
}

func (r *memRepo) UpdateImpact(_ context.Context, url string, impact float64, status domain.ReviewStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated[url] = impact
	r.statuses[url] = status
	return nil
}

func (r *memRepo) RecordRun(_ context.Context, run domain.ReportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *memRepo) Stats(context.Context) (domain.Stats, error) {
	return domain.Stats{Total: len(r.articles)}, nil
}

func (r *memRepo) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles = map[string]domain.Article{}
	return nil
}

type stubRenderer struct {
	reports []domain.Report
}

func (s *stubRenderer) Render(w io.Writer, report domain.Report) error {
	s.reports = append(s.reports, report)
	_, err := io.WriteString(w, "%PDF-1.3 stub")
	return err
}

type stubNotifier struct {
	digests []string
	err     error
}

func (n *stubNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return n.err
}

type stubDriver struct {
	specs   []string
	jobs    []func(time.Time)
	started bool
	stopped bool
}

func (d *stubDriver) Add(spec string, job func(time.Time)) error {
	if spec == "bad" {
		return errors.New("bad spec")
	}
	d.specs = append(d.specs, spec)
	d.jobs = append(d.jobs, job)
	return nil
}

func (d *stubDriver) Start(context.Context) error {
	d.started = true
	return nil
}

func (d *stubDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}
