package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"robot-route-service/internal/config"
	"robot-route-service/internal/middleware"
	"robot-route-service/internal/modules/auth"
	"robot-route-service/internal/modules/calculation"
	"robot-route-service/internal/modules/catalog"
	"robot-route-service/internal/modules/route"
	"robot-route-service/internal/platform/db"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// main is the application composition root: config, database pool, module
// wiring, HTTP server.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.InitSchema(ctx, pool); err != nil {
		log.Fatal(err)
	}

	authSvc := auth.NewService(auth.NewRepository(pool), cfg.JWTSecret)
	catalogSvc := catalog.NewService(catalog.NewRepository(pool))
	routeSvc := route.NewService(route.NewRepository(pool))
	calcSvc := calculation.NewService(routeSvc, cfg.CalculationURL, cfg.CalculationAPIKey)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	if cfg.ClientOrigin != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{cfg.ClientOrigin},
		}))
	}

	api := e.Group("/api")
	authed := e.Group("/api", middleware.JWT(cfg.JWTSecret))
	callbacks := e.Group("/api", middleware.CalculationKey(cfg.CalculationAPIKey))

	auth.NewHandler(authSvc).RegisterRoutes(api, authed)
	catalog.NewHandler(catalogSvc).RegisterRoutes(api)
	route.NewHandler(routeSvc).RegisterRoutes(authed, middleware.ModeratorOnly)
	calculation.NewHandler(calcSvc).RegisterRoutes(authed, callbacks)

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
