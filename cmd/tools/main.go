package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"foodbank-finder/internal/catalog"
	"foodbank-finder/internal/db"
	"foodbank-finder/internal/models"
	"foodbank-finder/internal/source"
)

func main() {
	// Sub-commands
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	os.Args = os.Args[1:] // Shift args for flag parsing

	switch cmd {
	case "validate":
		validateDataset()
	case "seed":
		seedSampleData()
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: tools <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  validate  Check a region CSV and report adopted vs dropped rows")
	fmt.Println("  seed      Seed the attendance database with sample entries")
}

func validateDataset() {
	csvPath := flag.String("csv", "", "Path to region CSV")
	region := flag.String("region", "region", "Region tag used for record ids")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("missing -csv path")
	}

	rows, err := source.CSVLoader{}.Load(context.Background(), *csvPath)
	if err != nil {
		log.Fatalf("Failed to load CSV: %v", err)
	}

	records, dropped := catalog.Normalize(*region, rows)

	log.Printf("Rows: %d, adopted: %d, dropped: %d", len(rows), len(records), dropped)

	// Re-run per row to name what each dropped row is missing
	for i, row := range rows {
		if _, rowDropped := catalog.Normalize(*region, []source.Row{row}); rowDropped == 1 {
			reason := "unparseable coordinates"
			if row["Name"] == "" || row["Name"] == "null" || row["Name"] == "undefined" {
				reason = "missing name"
			}
			log.Printf("  row %d dropped: %s (name=%q lat=%q lng=%q)",
				i+2, reason, row["Name"], row["Latitude"], row["Longitude"])
		}
	}

	boroughs := make(map[string]int)
	for _, r := range records {
		if r.Borough != "" {
			boroughs[r.Borough]++
		}
	}
	log.Printf("Boroughs: %d distinct", len(boroughs))
}

func seedSampleData() {
	dbPath := flag.String("db", "data/foodbank-finder.db", "Database path")
	flag.Parse()

	database, err := db.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	now := time.Now()
	samples := []models.AttendanceEntry{
		{Date: now.AddDate(0, 0, -2).Format("2006-01-02"), EventName: "Piccadilly Gardens Outreach", Town: "Manchester", PeopleServed: 85, OutreachName: "Sample Volunteer", Notes: "seed data"},
		{Date: now.AddDate(0, 0, -1).Format("2006-01-02"), EventName: "Bolton Town Hall", Town: "Bolton", PeopleServed: 40, OutreachName: "Sample Volunteer", Notes: "seed data"},
		{Date: now.Format("2006-01-02"), EventName: "Liverpool City Centre", Town: "Liverpool", PeopleServed: 60, OutreachName: "Sample Volunteer", Notes: "seed data"},
	}

	for i := range samples {
		if err := database.LogAttendance(&samples[i], now); err != nil {
			log.Printf("Skipping sample %s: %v", samples[i].EventName, err)
		}
	}

	stats, err := database.AttendanceStats()
	if err != nil {
		log.Fatalf("Failed to read stats: %v", err)
	}
	log.Printf("Database seeded. Entries: %d, people served: %d", stats.TotalEntries, stats.TotalServed)
}
