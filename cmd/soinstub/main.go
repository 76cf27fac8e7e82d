package main

import (
	"log"

	"soin-client/internal/config"
	"soin-client/internal/stubserver"
)

func main() {
	// 1. Load env
	cfg := config.Load()

	// 2. Build the stub API with its seeded admin
	server := stubserver.New(cfg.JWTSecret)

	// 3. Serve
	log.Printf("SOIN stub API listening on %s (admin: %s / %s)",
		cfg.StubAddr, stubserver.SeedAdminEmail, stubserver.SeedAdminPassword)
	if err := server.Router().Run(cfg.StubAddr); err != nil {
		log.Fatalln(err)
	}
}
