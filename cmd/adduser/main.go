// cmd/adduser/main.go
// Creates an administrator account or resets its password. The username must
// also appear in ADMIN_USERS for admin routes to accept it.
//
// Usage:
//
//	go run ./cmd/adduser -username admin -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/padraicbc/cc6api/config"
	bundb "github.com/padraicbc/cc6api/db"
	"github.com/padraicbc/cc6api/handlers"
	"github.com/padraicbc/cc6api/models"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	flag.Parse()

	hash, err := handlers.HashPasswordForUser(*username, *password)
	if err != nil {
		log.Fatal("adduser: ", err)
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	ctx := context.Background()
	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables: ", err)
	}

	user := &models.User{Username: *username, Password: hash}
	if err := bundb.NewStore(db).SaveUser(ctx, user); err != nil {
		log.Fatal("save user: ", err)
	}

	if !cfg.IsAdmin(*username) {
		fmt.Printf("warning: %q is not listed in ADMIN_USERS\n", *username)
	}
	fmt.Printf("user %q saved\n", *username)
}
