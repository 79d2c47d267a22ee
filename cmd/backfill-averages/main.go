// backfill-averages writes daily averages for completed UTC days that have
// hourly snapshots but no average, e.g. after the server was down at midnight.
//
// Usage: backfill-averages -db=<path> [-regions=us,eu] [-dry-run] [-execute]
//
// The tool:
// 1. Finds every past UTC day with hourly snapshots for each region
// 2. Skips days that already have a daily average
// 3. Prints the average it would write (-dry-run) or writes it (-execute)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Koodattu/fyralath-data-tracker/internal/database"
	"github.com/Koodattu/fyralath-data-tracker/internal/models"
	"github.com/Koodattu/fyralath-data-tracker/internal/services"
)

func main() {
	dbPath := flag.String("db", "", "Path to SQLite database (required)")
	regionList := flag.String("regions", "us,eu,tw,kr", "Comma separated regions to backfill")
	dryRun := flag.Bool("dry-run", false, "Preview averages without modifying database")
	execute := flag.Bool("execute", false, "Write the missing averages (required to make changes)")
	flag.Parse()

	if *dbPath == "" {
		fmt.Println("Usage: backfill-averages -db=<path> [options]")
		fmt.Println("")
		fmt.Println("Writes missing daily averages from stored hourly snapshots.")
		fmt.Println("")
		fmt.Println("Options:")
		fmt.Println("  -db       Path to SQLite database (required)")
		fmt.Println("  -regions  Comma separated regions (default us,eu,tw,kr)")
		fmt.Println("  -dry-run  Preview averages without modifying database")
		fmt.Println("  -execute  Write the missing averages")
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Println("  backfill-averages -db=./fyralath.db -dry-run")
		fmt.Println("  backfill-averages -db=./fyralath.db -regions=eu -execute")
		os.Exit(1)
	}

	if *dryRun == *execute {
		fmt.Println("Error: Must specify either -dry-run or -execute")
		os.Exit(1)
	}

	regions, err := models.ParseRegions(*regionList)
	if err != nil {
		log.Fatalf("Invalid -regions %q: %v", *regionList, err)
	}

	db, err := database.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rollup := services.NewRollupAggregator(database.NewStore(db))
	now := time.Now().UTC()

	total := 0
	for _, region := range regions {
		averages, err := rollup.Backfill(ctx, region, now, *dryRun)
		for _, a := range averages {
			fmt.Printf("  %s %s: %d copper from %d snapshots\n", region, a.Date, a.AverageCost, a.Samples)
		}
		total += len(averages)
		if err != nil {
			log.Fatalf("Backfill of %s failed: %v", region, err)
		}
		log.Printf("%s: %d missing daily averages", region, len(averages))
	}

	if *dryRun {
		fmt.Printf("\nDry run: %d averages would be written. Re-run with -execute to apply.\n", total)
		return
	}
	fmt.Printf("\nWrote %d daily averages.\n", total)
}
