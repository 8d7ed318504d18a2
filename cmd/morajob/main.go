// Command morajob runs one mora recalculation pass over every loan with open
// installments and exits. It is meant to be scheduled once per day.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/internal/application/dto"
	"github.com/bibbank/loanengine/internal/application/usecase"
	"github.com/bibbank/loanengine/internal/domain/service"
	"github.com/bibbank/loanengine/internal/infrastructure/config"
	"github.com/bibbank/loanengine/internal/infrastructure/messaging"
	pgRepo "github.com/bibbank/loanengine/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/loanengine/pkg/observability"
	pkgpostgres "github.com/bibbank/loanengine/pkg/postgres"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("morajob failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("morajob", flag.ContinueOnError)
	asOfFlag := fs.String("as-of", "", "evaluation date as YYYY-MM-DD (default: today, UTC)")
	rateFlag := fs.String("daily-rate", "", "daily mora rate as a fraction (default: MORA_DAILY_RATE)")
	envFile := fs.String("env-file", ".env", "dotenv file to load before reading the environment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		return err
	}
	cfg := config.Load()
	logger := observability.InitLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	req, err := batchRequest(*asOfFlag, *rateFlag, cfg.Mora.DailyRate, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := pkgpostgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	publisher, closePublisher, err := messaging.NewPublisher(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closePublisher() }() //nolint:errcheck // best-effort flush

	calculator := service.NewMoraCalculator(service.MoraPolicy{PromoteOverduePending: cfg.Mora.PromotePending})
	uc := usecase.NewRecalculateMoraUseCase(pgRepo.NewInstallmentRepo(pool), publisher, calculator, nil, logger, cfg.Mora.Workers)

	resp, err := uc.Execute(ctx, req)
	logger.Info("mora batch finished",
		"as_of", resp.AsOf.Format(time.DateOnly),
		"loans_seen", resp.LoansSeen,
		"loans_updated", resp.LoansUpdated,
		"loans_unchanged", resp.LoansUnchanged,
		"installments_updated", resp.InstallmentsUpdated,
		"total_delta", resp.TotalDelta.StringFixed(2),
		"failures", len(resp.Failures),
		"cancelled", resp.Cancelled,
	)
	return err
}

// batchRequest resolves flag overrides against the configured defaults.
func batchRequest(asOf, rate string, defaultRate decimal.Decimal, now time.Time) (dto.MoraBatchRequest, error) {
	req := dto.MoraBatchRequest{
		AsOf:      now.UTC(),
		DailyRate: defaultRate,
	}
	if asOf != "" {
		t, err := time.Parse(time.DateOnly, asOf)
		if err != nil {
			return dto.MoraBatchRequest{}, fmt.Errorf("parse -as-of: %w", err)
		}
		req.AsOf = t
	}
	if rate != "" {
		d, err := decimal.NewFromString(rate)
		if err != nil {
			return dto.MoraBatchRequest{}, fmt.Errorf("parse -daily-rate: %w", err)
		}
		req.DailyRate = d
	}
	return req, nil
}
