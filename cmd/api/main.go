package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/dagudeloc/almacen/internal/config"
	"github.com/dagudeloc/almacen/internal/database"
	almacenHttp "github.com/dagudeloc/almacen/internal/http"
	receptionHandler "github.com/dagudeloc/almacen/internal/http/reception"
	productStore "github.com/dagudeloc/almacen/internal/product/store"
	"github.com/dagudeloc/almacen/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		products = productStore.New(db)
		sessions = session.New()
	)

	receptionH := receptionHandler.NewHandler(products, sessions, cfg.ERP.PurchaseType)

	router := almacenHttp.New(receptionH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
