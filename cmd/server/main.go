// Command server runs the onboarding HTTP API and its gRPC health endpoint.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/onboarding/internal/server"
	"github.com/dmitrijs2005/onboarding/internal/server/config"
)

func main() {
	ctx := context.Background()

	app, err := server.NewApp(ctx, config.LoadConfig())
	if err != nil {
		log.Fatalf("onboarding server: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("onboarding server: %v", err)
	}
}
