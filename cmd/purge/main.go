package main

import (
	"context"
	"flag"
	"os"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/klassbok/internal/app"
)

// purge removes a student for good, together with attendance and messages.
func main() {
	var (
		configPath = flag.String("config", "config.toml", "Path to config file")
		id         = flag.Int64("id", 0, "Student id to purge")
	)
	flag.Parse()

	if *id <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	store, err := app.NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	student, err := store.GetStudent(ctx, *id)
	if err != nil {
		logger.Error.Fatalf("Failed to find student %d: %v", *id, err)
	}

	if err := store.PurgeStudent(ctx, *id); err != nil {
		logger.Error.Fatalf("Failed to purge student %d: %v", *id, err)
	}

	logger.Info.Printf("Purged student %d (%s, roll no %s)", student.ID, student.Name, student.RollNo)
}
