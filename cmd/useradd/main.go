package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/videotube/internal/cli"
	"github.com/dmitrijs2005/videotube/internal/server"
	"github.com/dmitrijs2005/videotube/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if _, err := cli.UserAdd(ctx, app.Users(), bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		log.Printf("%v", err)
		app.Close()
		os.Exit(1)
	}

}
