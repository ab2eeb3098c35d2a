// seed inserts a test user and a week of workouts into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/domain"
	"github.com/ErlanBelekov/workout-tracker/internal/infrastructure/postgres"
)

const seedEmail = "seed@test.local"

type seedWorkout struct {
	daysAgo int
	hour    int
	minute  int
	name    string
}

var workouts = []seedWorkout{
	{0, 7, 0, "Morning Run"},
	{0, 18, 30, "Upper Body"},
	{1, 6, 45, "Leg Day"},
	{2, 12, 0, "Lunch Swim"},
	{3, 7, 15, "Cardio"},
	{3, 19, 0, "Yoga"},
	{4, 8, 0, "Push Day"},
	{5, 9, 30, "Long Ride"},
	{6, 7, 0, "Pull Day"},

	// Day edges, useful when checking the date filter
	{1, 0, 0, "Midnight Stretch"},
	{2, 23, 59, "Late Walk"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	if err := postgres.Migrate(dbURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL, 2)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	store := postgres.NewWorkoutRepository(pool)

	user, err := users.FindOrCreate(ctx, seedEmail)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	existing, err := store.ListOwned(ctx, user.ID, nil)
	if err != nil {
		log.Fatalf("list workouts: %v", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, w := range existing {
		seen[w.Name] = true
	}

	// Re-runs skip workouts that already exist by name.
	today := time.Now()
	var inserted, skipped int
	for _, w := range workouts {
		if seen[w.name] {
			skipped++
			continue
		}
		y, m, d := today.AddDate(0, 0, -w.daysAgo).Date()
		startedAt := time.Date(y, m, d, w.hour, w.minute, 0, 0, time.Local)

		if _, err := store.Insert(ctx, domain.NewWorkout{
			UserID:    user.ID,
			Name:      w.name,
			StartedAt: startedAt,
		}); err != nil {
			log.Fatalf("insert workout %q: %v", w.name, err)
		}
		inserted++
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:             %s\n", seedEmail)
	fmt.Printf("  User ID:          %s\n", user.ID)
	fmt.Printf("  Workouts created: %d  (skipped %d already existing)\n", inserted, skipped)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: get a JWT for the seed user:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/magic-link \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\"}'\n", seedEmail)
	fmt.Println()
	fmt.Println("    # Copy the token from the server log, then:")
	fmt.Println()
	fmt.Println("    curl -s 'http://localhost:8080/auth/verify?token=TOKEN'")
	fmt.Println("    # → {\"token\":\"eyJ...\"}")
	fmt.Println()
	fmt.Println("  Step 2: list today's workouts:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Printf("    curl -s 'http://localhost:8080/workouts?date=%s' -H \"Authorization: Bearer $JWT\"\n", today.Format(domain.DayLayout))
	fmt.Println()
	fmt.Println("  Step 3: rename one:")
	fmt.Println()
	fmt.Println("    curl -s -X PATCH http://localhost:8080/workouts/WORKOUT_ID \\")
	fmt.Println("      -H \"Authorization: Bearer $JWT\" -H 'Content-Type: application/json' \\")
	fmt.Println("      -d '{\"name\":\"Renamed\"}'")
}
