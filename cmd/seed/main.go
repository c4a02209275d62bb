// Command main runs the database seeder for Circles.
package main

import (
	"flag"
	"log"

	"circles/internal/config"
	"circles/internal/database"
	"circles/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numFriendships := flag.Int("friendships", 75, "Number of friendship requests to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d friendships, clean=%v\n", *numUsers, *numFriendships, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:       *numUsers,
		NumFriendships: *numFriendships,
		ShouldClean:    *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
}
