package main

import (
	"log"

	"extracker/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalf("failed to initialize the application: %v", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Printf("application stopped: %v", err)
	}
}
