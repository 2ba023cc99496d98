package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/safar/shopkeeper/internal/config"
	"github.com/safar/shopkeeper/internal/database"
	"github.com/safar/shopkeeper/internal/store/pgstore"
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}

	command := arguments[0]
	if err := pgstore.RunMigrations(db.DB, command, arguments[1:]...); err != nil {
		log.Fatalf("Run migrations: %v", err)
	}

	fmt.Printf("goose %s success\n", command)
}
