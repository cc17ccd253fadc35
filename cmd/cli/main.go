package main

import (
	"context"
	"log"
	"os"

	"github.com/prestobr/authd/internal/buildinfo"
	"github.com/prestobr/authd/internal/client/cli"
	"github.com/prestobr/authd/internal/client/config"
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
