package main

import (
	"log"

	"github.com/Ro-otman/vroomvtr/internal/config"
	"github.com/Ro-otman/vroomvtr/internal/db"
	"github.com/Ro-otman/vroomvtr/internal/model"
	"github.com/Ro-otman/vroomvtr/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(
		&model.User{},
		&model.Vendor{},
		&model.Car{},
		&model.Order{},
		&model.VerificationCodeSet{},
		&model.Conversation{},
		&model.Message{},
	); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	srv := server.New(conn, cfg)
	defer srv.Shutdown()

	addr := ":" + cfg.Port
	log.Printf("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
