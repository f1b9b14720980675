package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// seed-user inserts a user row with a bcrypt-hashed password, for local
// setups and for creating the first moderator account.
//
// Usage: seed-user -username mod -password secret -moderator
func main() {
	username := flag.String("username", "", "username for the new account")
	password := flag.String("password", "", "plaintext password to hash")
	moderator := flag.Bool("moderator", false, "grant moderator privileges")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// No database configured; print the hash so it can be inserted by hand.
		fmt.Println(string(hash))
		return
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	var id int
	err = conn.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, is_moderator)
		VALUES ($1, $2, $3)
		RETURNING id`, *username, string(hash), *moderator).Scan(&id)
	if err != nil {
		log.Fatalf("Failed to insert user: %v", err)
	}

	fmt.Printf("created user %d (%s, moderator=%v)\n", id, *username, *moderator)
}
