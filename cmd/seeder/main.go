package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/locvowork/employee_management_sample/console/internal/bootstrap"
	"github.com/locvowork/employee_management_sample/console/internal/logger"
	"github.com/locvowork/employee_management_sample/console/internal/seed"
)

func main() {
	action := flag.String("action", "seed", "Action to perform: seed, clear")
	preset := flag.String("preset", "medium", "Data preset: small, medium, large, xlarge")
	count := flag.Int("count", 0, "Number of employees (overrides preset)")
	archivedOnly := flag.Bool("archived-only", false, "Clear only archived employees")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("🚀 Employee Data Seeder")
	fmt.Println(strings.Repeat("=", 50))

	fmt.Println("📡 Initializing application...")
	app := bootstrap.NewApp(nil)
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application: %v", err)
		log.Fatal(err)
	}
	defer app.Close()

	seeder := app.NewSeeder()

	switch *action {
	case "seed":
		performSeed(ctx, seeder, *preset, *count)

	case "clear":
		performClear(ctx, seeder, *archivedOnly)

	default:
		fmt.Printf("❌ Unknown action: %s\n", *action)
		flag.PrintDefaults()
	}

	fmt.Println("\n✅ Done!")
}

func performSeed(ctx context.Context, seeder *seed.DataSeeder, preset string, count int) {
	if count > 0 {
		fmt.Printf("📊 Using custom count: %d employees\n", count)
	} else {
		count = seed.GetPresetConfig(seed.SeedPreset(preset))
		fmt.Printf("📊 Using preset: %s\n", preset)
	}

	if _, err := seeder.SeedData(ctx, count); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}

func performClear(ctx context.Context, seeder *seed.DataSeeder, archivedOnly bool) {
	if archivedOnly {
		fmt.Println("⚠️  This will permanently delete all archived employees!")
	} else {
		fmt.Println("⚠️  This will permanently delete every employee!")
	}
	fmt.Print("Continue? (yes/no): ")

	var response string
	fmt.Scanln(&response)

	if response == "yes" {
		if _, err := seeder.ClearData(ctx, archivedOnly); err != nil {
			log.Fatalf("❌ Clear failed: %v", err)
		}
	} else {
		fmt.Println("Cancelled.")
	}
}
