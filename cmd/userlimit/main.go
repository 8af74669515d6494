package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"voicebot/internal/adapter/repo"
	"voicebot/internal/domain"
	"voicebot/internal/infra"
	"voicebot/internal/ledger"
)

func main() {
	var (
		userFlag    string
		freezeFlag  string
		limitFlag   int
		creditFlag  int
		paymentFlag string
	)

	flag.StringVar(&userFlag, "user", "", "user ID to inspect or update")
	flag.StringVar(&freezeFlag, "freeze", "", "set the frozen flag (true or false)")
	flag.IntVar(&limitFlag, "limit", -1, "override the recurring free allowance (set <0 to keep current value)")
	flag.IntVar(&creditFlag, "credit", 0, "credit purchased requests (requires -payment)")
	flag.StringVar(&paymentFlag, "payment", "", "payment transaction id for -credit")
	flag.Parse()

	userID := strings.TrimSpace(userFlag)
	if userID == "" {
		exitWithError(errors.New("-user is required"))
	}
	if creditFlag > 0 && strings.TrimSpace(paymentFlag) == "" {
		exitWithError(errors.New("-credit requires -payment"))
	}

	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}
	freeLimit := domain.DefaultFreeLimit
	if v := strings.TrimSpace(os.Getenv("FREE_LIMIT")); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &freeLimit); err != nil {
			exitWithError(fmt.Errorf("invalid FREE_LIMIT: %w", err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "userlimit").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	led := ledger.New(
		repo.NewLimitRepository(runner, freeLimit),
		repo.NewHistoryRepository(runner),
		ledger.Config{},
		logger,
	)

	if freezeFlag != "" {
		frozen, err := parseBool(freezeFlag)
		if err != nil {
			exitWithError(err)
		}
		if err := led.SetFrozen(ctx, userID, frozen); err != nil {
			exitWithError(fmt.Errorf("failed to update frozen flag: %w", err))
		}
	}
	if limitFlag >= 0 {
		if err := led.SetFreeLimit(ctx, userID, limitFlag); err != nil {
			exitWithError(fmt.Errorf("failed to update free limit: %w", err))
		}
	}
	if creditFlag > 0 {
		err := led.AddPurchased(ctx, userID, creditFlag, strings.TrimSpace(paymentFlag))
		if errors.Is(err, domain.ErrDuplicateOperation) {
			fmt.Printf("payment %s already credited, skipping\n", paymentFlag)
		} else if err != nil {
			exitWithError(fmt.Errorf("failed to credit purchase: %w", err))
		}
	}

	limit, err := led.GetLimit(ctx, userID)
	if err != nil {
		exitWithError(fmt.Errorf("failed to load user: %w", err))
	}

	fmt.Printf("User %s\n", limit.UserID)
	fmt.Printf("used=%d purchased=%d free_limit=%d left=%d frozen=%v\n",
		limit.Used, limit.Purchased, limit.FreeLimit, limit.Left(), limit.Frozen)
	fmt.Printf("last_free_reset=%s\n", limit.LastFreeReset.UTC().Format(time.RFC3339))
	if !limit.LastRequest.IsZero() {
		fmt.Printf("last_request=%s\n", limit.LastRequest.UTC().Format(time.RFC3339))
	}
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid -freeze value %q", v)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
