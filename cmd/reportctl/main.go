package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-result-api/internal/cli"
	"github.com/noah-isme/gema-result-api/internal/config"
	"github.com/noah-isme/gema-result-api/internal/database"
	"github.com/noah-isme/gema-result-api/internal/printing"
	"github.com/noah-isme/gema-result-api/internal/render"
	"github.com/noah-isme/gema-result-api/internal/repository"
	"github.com/noah-isme/gema-result-api/internal/result"
	"github.com/noah-isme/gema-result-api/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := cli.NewRootCommand(loader(logger)).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loader(logger zerolog.Logger) cli.Loader {
	return func(ctx context.Context) (cli.Dependencies, error) {
		cfg, err := config.Load()
		if err != nil {
			return cli.Dependencies{}, fmt.Errorf("load configuration: %w", err)
		}

		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return cli.Dependencies{}, err
		}

		renderer, err := render.New()
		if err != nil {
			return cli.Dependencies{}, fmt.Errorf("load report templates: %w", err)
		}
		// Files are opened later by a person, so no print dialog is triggered.
		printer := printing.NewOrchestrator(renderer, printing.Options{SettleTimeout: cfg.PrintSettleTimeout}, logger)

		students := repository.NewStudentRepository(db)
		school := result.School{
			Name:    cfg.School.Name,
			Address: cfg.School.Address,
			Motto:   cfg.School.Motto,
			Phone:   cfg.School.Phone,
			Email:   cfg.School.Email,
			LogoURL: cfg.School.LogoURL,
		}

		return cli.Dependencies{
			Results: service.NewResultService(
				students,
				repository.NewAssessmentRepository(db),
				repository.NewResultSheetRepository(db),
				repository.NewAttendanceRepository(db),
				printer,
				school,
				logger,
			),
			Students: students,
		}, nil
	}
}
