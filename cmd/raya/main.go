package main

import (
	"context"
	"log"

	"github.com/sekawan-grup/raya/internal/app"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("❌ raya failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ raya failed: %v", err)
	}
}
