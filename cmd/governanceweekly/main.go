package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"GovernanceWeekly/internal/app"
	"GovernanceWeekly/internal/config"
	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/logging"
)

func main() {
	mode := flag.String("mode", "run", "collect | report | run | schedule | stats")
	fresh := flag.Bool("fresh-start", false, "delete stored articles and old reports before running")
	configPath := flag.String("config", "", "path to YAML config (defaults to $GOVERNANCE_WEEKLY_CONFIG)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if *configPath != "" {
		cfg = config.LoadFile(*configPath)
	}
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if *fresh {
		if err := application.FreshStart(ctx); err != nil {
			logger.Error("fresh start failed", "error", err)
			os.Exit(1)
		}
	}

	if err := run(ctx, application, *mode); err != nil {
		logger.Error("application stopped", "mode", *mode, "error", err)
		application.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, application *app.Application, mode string) error {
	switch mode {
	case "collect":
		stats, err := application.Collect(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("discovered %d, new %d, failed %d, relevant %d\n",
			stats.Discovered, stats.Fetched, stats.Failed, stats.Passed)
		return nil
	case "report":
		res, err := application.Report(ctx)
		if err != nil {
			return err
		}
		printReport(res.Path, len(res.Selected), res.Considered)
		return nil
	case "run":
		res, err := application.Run(ctx)
		if err != nil {
			return err
		}
		printReport(res.Path, len(res.Selected), res.Considered)
		return nil
	case "schedule":
		return application.Schedule(ctx)
	case "stats":
		stats, err := application.Stats(ctx)
		if err != nil {
			return err
		}
		printStats(stats)
		return nil
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func printReport(path string, selected, considered int) {
	if path == "" {
		fmt.Printf("no articles selected from %d candidates, report not written\n", considered)
		return
	}
	fmt.Printf("report %s: %d of %d candidates\n", path, selected, considered)
}

func printStats(stats domain.Stats) {
	fmt.Printf("total articles: %d\n", stats.Total)
	fmt.Printf("categorized:    %d\n", stats.Categorized)
	fmt.Printf("translated:     %d\n", stats.Translated)

	cats := make([]string, 0, len(stats.Distribution))
	for cat := range stats.Distribution {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		fmt.Printf("  %-12s %d\n", cat, stats.Distribution[cat])
	}
}
