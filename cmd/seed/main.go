// Command seed runs the database seeder for Inkwell.
package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numPosts := flag.Int("posts", 30, "Number of posts to create")
	commentsPerPost := flag.Int("comments", 5, "Top-level comments per published post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	adminEmail := flag.String("admin-email", "", "Email for the seeded admin account")
	adminPassword := flag.String("admin-password", "", "Password for the seeded admin account")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, %d comments/post, clean=%v\n",
		*numUsers, *numPosts, *commentsPerPost, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *commentsPerPost,
		ShouldClean:     *shouldClean,
		AdminEmail:      *adminEmail,
		AdminPassword:   *adminPassword,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
