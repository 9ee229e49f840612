package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/warbler/internal/flagx"
	"github.com/dmitrijs2005/warbler/internal/server"
	"github.com/dmitrijs2005/warbler/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(ctx, flagx.Positional(os.Args[1:], config.ValueFlags))
	app.Close()
	if err != nil {
		log.Fatalf("%v", err)
	}
}
