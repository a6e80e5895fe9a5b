package scanner

import (
	"context"
	"testing"

	"GovernanceWeekly/internal/domain"
)

type stubScanner struct{ name string }

func (s stubScanner) Name() string { return s.name }

func (s stubScanner) Scan(context.Context, Request) ([]domain.Candidate, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(stubScanner{name: "homepage"})
	reg.Register(stubScanner{name: "feed"})

	got, err := reg.Resolve("feed")
	if err != nil {
		t.Fatalf("resolve feed: %v", err)
	}
	if got.Name() != "feed" {
		t.Fatalf("unexpected scanner %s", got.Name())
	}

	if _, err := reg.Resolve("arxiv"); err == nil {
		t.Fatalf("expected error for unknown scanner")
	}
}
