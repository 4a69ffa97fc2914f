// Command keygen mints license keys into the local registry. Trial keys
// carry a trial length in days; keys without one grant a permanent
// license on activation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"tankhah/internal/cli"
	"tankhah/internal/license"
)

func main() {
	count := flag.Int("count", 1, "number of keys to generate")
	trialDays := flag.Int("trial-days", 0, "trial length in days, 0 for permanent keys")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger("keygen")

	if *count < 1 {
		logger.Error("Count must be at least 1", "count", *count)
		os.Exit(1)
	}
	if *trialDays < 0 {
		logger.Error("Trial days must not be negative", "trial_days", *trialDays)
		os.Exit(1)
	}

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	keyType := license.TypePermanent
	if *trialDays > 0 {
		keyType = license.TypeTrial
	}

	ctx := context.Background()
	registry := repo.Licenses()
	for i := 0; i < *count; i++ {
		entry := &license.KeyEntry{
			Key:       license.GenerateKey(keyType),
			TrialDays: *trialDays,
			CreatedAt: time.Now(),
		}
		if err := registry.Insert(ctx, entry); err != nil {
			logger.Error("Failed to insert license key", "error", err)
			os.Exit(1)
		}
		fmt.Println(entry.Key)
	}

	logger.Info("License keys generated", "count", *count, "type", string(keyType))
}
