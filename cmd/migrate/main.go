package main

import (
	"context"
	"log"
	"os"

	"github.com/lingora/lingora/pkg/configuration"
	"github.com/lingora/lingora/pkg/schema"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	conf := configuration.Use()
	defer conf.Unload()

	migrator, err := schema.NewMigrator(conf.Database.Opts, conf.MigrationsDir)
	if err != nil {
		log.Fatalf("failed to initialize migrator: %v", err)
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	ctx := context.Background()
	switch command {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	case "status":
		err = migrator.Status(ctx)
	default:
		log.Fatalf("unknown command %q (expected up, down or status)", command)
	}
	if err != nil {
		log.Fatalf("migrate %s failed: %v", command, err)
	}
}
