// Command extracto-render renders one period to the artifact store and exits.
//
// Environment: STATEMENT_START and STATEMENT_END (ISO dates, default the
// previous calendar month), STATEMENT_MONTHLY=true to split the period into
// one document per month, plus the usual extracto configuration.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"extracto/internal/backend"
	"extracto/internal/cli"
	"extracto/internal/config"
	"extracto/internal/core"
	"extracto/internal/log"
	"extracto/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	os.Exit(run(logger, cfg, time.Now(), os.Stdout))
}

// run renders the configured period and prints one ref per line to out. It
// returns the process exit code once every resource has been released.
func run(logger *log.Logger, cfg *config.Config, now time.Time, out io.Writer) int {
	p, err := periodFromEnv(now)
	if err != nil {
		logger.Error("Invalid statement period", log.FieldError, err)
		return 1
	}
	monthly, _ := strconv.ParseBool(os.Getenv("STATEMENT_MONTHLY"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		return 1
	}
	res, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		return 1
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()

	gen, err := cli.NewGenerator(logger, cfg)
	if err != nil {
		logger.Error("Failed to create statement generator", log.FieldError, err)
		return 1
	}

	w := worker.NewStatementWorker(res.Source, res.Artifacts, gen, cfg.WorkerConcurrency, logger)
	refs, err := w.Render(ctx, p, "", monthly)
	if err != nil {
		logger.Error("Statement rendering failed", log.FieldError, err, log.FieldPeriod, p.String())
		return 1
	}
	for _, ref := range refs {
		fmt.Fprintln(out, ref)
	}
	return 0
}

// periodFromEnv reads STATEMENT_START/STATEMENT_END, defaulting to the
// calendar month before now.
func periodFromEnv(now time.Time) (core.Period, error) {
	start := strings.TrimSpace(os.Getenv("STATEMENT_START"))
	end := strings.TrimSpace(os.Getenv("STATEMENT_END"))
	if start == "" && end == "" {
		first := core.MonthOf(core.DateOf(now)).Start
		return core.MonthOf(core.Date{Time: first.AddDate(0, 0, -1)}), nil
	}
	if start == "" || end == "" {
		return core.Period{}, fmt.Errorf("STATEMENT_START and STATEMENT_END must be set together")
	}
	s, err := core.ParseDate(start)
	if err != nil {
		return core.Period{}, fmt.Errorf("STATEMENT_START: %w", err)
	}
	e, err := core.ParseDate(end)
	if err != nil {
		return core.Period{}, fmt.Errorf("STATEMENT_END: %w", err)
	}
	return core.NewPeriod(s, e)
}
