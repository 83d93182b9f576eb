package main

import (
	"context"
	"log"

	"github.com/Apurer/reseller-ops-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("reseller ops API stopped: %v", err)
	}
}
