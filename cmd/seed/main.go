// Command main runs the database seeder for Engage.
package main

import (
	"flag"
	"log"

	"engage/internal/config"
	"engage/internal/database"
	"engage/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	batches := flag.Int("batches", 4, "Generation batches per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext demo passwords (dev fast mode)")
	flag.Parse()

	log.Printf("Seeding: %d users, %d batches each, clean=%v", *numUsers, *batches, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" || cfg.Env == "prod" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers:       *numUsers,
		BatchesPerUser: *batches,
		ShouldClean:    *shouldClean,
		SkipBcrypt:     *skipBcrypt,
	}
	if err := seed.Run(seed.NewFactory(db, opts), opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
