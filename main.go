package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"shop-telegram/config"
	"shop-telegram/db"
	"shop-telegram/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if err := db.Init(cfg.DB); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	switch cmd {
	case "migrate":
		if err := applyMigrations(context.Background(), true); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	case "seed":
		if err := runSeed(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, "seed:", err)
			os.Exit(1)
		}
	case "stats":
		if err := runStats(context.Background(), cfg); err != nil {
			fmt.Fprintln(os.Stderr, "stats:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: shop-telegram <migrate|seed|stats>")
		os.Exit(2)
	}
}

func runStats(ctx context.Context, cfg *config.Config) error {
	// Optional auto-migration for fresh DBs. Set AUTO_MIGRATE=1 to enable.
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		if err := applyMigrations(ctx, false); err != nil {
			return err
		}
	}

	repo := services.NewPostgresOrderRepository()
	orders := services.NewOrders(
		services.NewPostgresCatalog(),
		repo,
		services.NewPostgresCartStore(),
		services.NewTelegramNotifier(services.NewPostgresIntegrationStore(), repo),
	)
	orders.SetDefaultCurrency(cfg.Order.Currency)
	stats, err := orders.Statistics(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Orders:", stats.Total)
	for status, count := range stats.ByStatus {
		fmt.Printf("  %s: %d\n", status, count)
	}
	fmt.Println("Revenue (paid):", stats.TotalRevenue)
	fmt.Println("Average order value:", stats.AverageOrderValue)
	return nil
}
