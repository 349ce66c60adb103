// Package cmd implements the CLI application to manage a portfolio.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	portfolio "github.com/JScottR45/PortfolioAnalyzer"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&dividendCmd{}, "transactions")
	c.Register(&undoCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")

	c.Register(&summaryCmd{}, "reports")
	c.Register(&allocationsCmd{}, "reports")
	c.Register(&statsCmd{}, "reports")
	c.Register(&performanceCmd{}, "reports")

	c.Register(&refreshCmd{}, "market data")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var recordsDir = flag.String("records-dir", defaultRecordsDir(), "Path to the folder holding the record streams")
var verbose = flag.Bool("v", false, "Enable debug logging")

func defaultRecordsDir() string {
	if dir := os.Getenv("PA_RECORDS_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portfolio"
	}
	return filepath.Join(home, ".portfolio")
}

func logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// openLedger opens the record streams, rebuilds the ledger and refreshes
// stale market data. A failed refresh is reported but does not block the
// command: the ledger still serves the data it has.
func openLedger(ctx context.Context) (*portfolio.Store, *portfolio.Ledger, error) {
	log := logger()
	store, err := portfolio.OpenStore(*recordsDir, log)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := store.Load(portfolio.NewYahooGateway(log), log)
	if err != nil {
		return nil, nil, err
	}
	if _, err := ledger.Refresh(ctx, false); err != nil {
		log.Warn().Err(err).Msg("market data refresh failed")
	}
	return store, ledger, nil
}

// saveLedger persists the ledger if it holds unsaved changes.
func saveLedger(store *portfolio.Store, ledger *portfolio.Ledger) subcommands.ExitStatus {
	if err := store.Save(ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// normalizeTicker uppercases and validates a ticker symbol: one to four
// characters, letters and digits only.
func normalizeTicker(s string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if len(t) == 0 || len(t) > 4 {
		return "", errors.New("ticker must be one to four characters")
	}
	for _, r := range t {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("ticker %q holds invalid characters", t)
		}
	}
	return t, nil
}

// parseAmount reads a positive dollar amount, tolerating a leading $.
func parseAmount(s string) (float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	var v float64
	if _, err := fmt.Sscanf(s, "%g", &v); err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %g", v)
	}
	return v, nil
}
