// bolso-report renders the PDF report from the local database without
// going through the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"bolso/internal/budget"
	"bolso/internal/config"
	applog "bolso/internal/log"
	"bolso/internal/period"
	"bolso/internal/report"
	"bolso/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelWarn,
		Component: applog.ComponentReport,
	})
	applog.SetDefault(logger)

	periodFlag := flag.String("period", "month", "report window: month, quarter or year")
	outFlag := flag.String("out", "", "output path (default: generated file name in the current directory)")
	flag.Parse()

	kind := period.Kind(*periodFlag)
	if !kind.Valid() {
		fmt.Fprintf(os.Stderr, "invalid period %q: want month, quarter or year\n", *periodFlag)
		os.Exit(2)
	}

	cfg := config.Load()

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database %s: %v\n", cfg.SQLiteDBPath, err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := repo.LoadSnapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load snapshot: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	window := period.Resolve(kind, now)
	data := report.Data{
		Profile:      snap.Profile,
		Transactions: budget.Filter(snap.Transactions, window),
		Goals:        snap.Goals,
		Window:       window,
		Now:          now,
	}

	out := *outFlag
	if out == "" {
		out = report.FileName(snap.Profile.Name, now)
	}
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(out)), 0755); err != nil && filepath.Dir(out) != "." {
		fmt.Fprintf(os.Stderr, "create output directory: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", out, err)
		os.Exit(1)
	}

	if err := report.Compose(data, f); err != nil {
		f.Close()
		os.Remove(out)
		fmt.Fprintf(os.Stderr, "compose report: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", out, err)
		os.Exit(1)
	}

	fmt.Println(out)
}
