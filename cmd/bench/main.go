package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/kick_computer/internal/app"
	"github.com/relabs-tech/kick_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./kick_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting kick-computer bench (mock sensors)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunBench(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
