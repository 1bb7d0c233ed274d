package main

import (
	"context"
	"log"
	"os"

	"github.com/groceryapp/groceryclient/internal/buildinfo"
	"github.com/groceryapp/groceryclient/internal/client/cli"
	"github.com/groceryapp/groceryclient/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
