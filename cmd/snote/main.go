package main

import (
	"context"
	"log"

	"github.com/MrSnakeDoc/snote/internal/app"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("❌ snote failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ snote stopped with error: %v", err)
	}
}
