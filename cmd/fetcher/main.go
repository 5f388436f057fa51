package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vtavares/claimfetch/internal/bootstrap"
	"github.com/vtavares/claimfetch/internal/config"
	"github.com/vtavares/claimfetch/internal/core/domain"
	"github.com/vtavares/claimfetch/internal/core/ports"
	"github.com/vtavares/claimfetch/internal/observability/logging"
)

func main() {
	var (
		claimsPath = flag.String("claims", "", "xlsx file with a Processo column listing the claims to fetch")
		category   = flag.String("category", "auto", "claim category: auto or eletrico")
		driver     = flag.String("driver", "", "auto category driver: browser (default) or api")
		budget     = flag.Bool("budget", false, "also export the budget report for each claim (browser driver only)")
	)
	flag.Parse()

	if *claimsPath == "" {
		log.Fatal("missing -claims: path to the claim spreadsheet")
	}

	// Credentials come from the environment only; they are never accepted as
	// flags and never written anywhere.
	creds := domain.Credentials{
		Login:  os.Getenv("PORTAL_LOGIN"),
		Secret: os.Getenv("PORTAL_PASSWORD"),
	}
	if creds.Login == "" || creds.Secret == "" {
		log.Fatal("PORTAL_LOGIN and PORTAL_PASSWORD must be set")
	}

	req := ports.RunRequest{
		Credentials:   creds,
		IncludeBudget: *budget,
	}
	switch *category {
	case "auto":
		req.Category = domain.CategoryAuto
	case "eletrico", "eletrica":
		req.Category = domain.CategoryElectrical
	default:
		log.Fatalf("unknown category %q", *category)
	}
	switch *driver {
	case "", "browser":
		req.Driver = domain.DriverBrowser
	case "api":
		req.Driver = domain.DriverAPI
	default:
		log.Fatalf("unknown driver %q", *driver)
	}

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", app.Metrics.Handler())
		if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
			app.Log.Warn("metrics listener stopped", "error", err)
		}
	}()

	claims, err := app.Sheets.ReadClaims(*claimsPath)
	if err != nil {
		log.Fatalf("read claims: %v", err)
	}
	if len(claims) == 0 {
		log.Fatal("claim spreadsheet has no claims")
	}
	req.Claims = claims

	report, runErr := app.Runner.Run(ctx, req)

	runLog := logging.RunLogger(app.Log, report.RunID, string(report.Category))
	runLog.Info("batch finished",
		"claims", len(report.Outcomes),
		"problems", len(report.ProblemClaims()),
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	)

	printReport(report)

	if app.Runs != nil && len(report.Outcomes) > 0 {
		if err := app.Runs.SaveRun(context.Background(), report); err != nil {
			runLog.Error("save run report", "error", err)
		}
	}

	if runErr != nil {
		log.Fatalf("batch aborted: %v", runErr)
	}
	if len(report.ProblemClaims()) > 0 {
		os.Exit(1)
	}
}

func printReport(report domain.RunReport) {
	fmt.Println()
	fmt.Printf("%-15s %-10s %s\n", "SINISTRO", "DOCS", "SITUAÇÃO")
	for _, outcome := range report.Outcomes {
		status := "ok"
		if outcome.Problem {
			status = "PROBLEMA: " + outcome.Reason
		}
		fmt.Printf("%-15s %-10d %s\n", outcome.ClaimID, outcome.DocumentsDownloaded, status)
	}
}
