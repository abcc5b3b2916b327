package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"shop-telegram/db"
)

// runSeed fills a fresh database with a demo product and, when the env vars
// are present, an active Telegram integration.
func runSeed(ctx context.Context) error {
	if err := applyMigrations(ctx, false); err != nil {
		return err
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		chatID := os.Getenv("TELEGRAM_CHAT_ID")
		_, err := db.Pool.Exec(ctx, `
			INSERT INTO integrations (id, type, name, is_active, settings, credentials)
			VALUES ($1, 'telegram', 'Main Telegram Bot', true,
				jsonb_build_object('chat_id', $2::text),
				jsonb_build_object('bot_token', $3::text))`,
			uuid.New().String(), chatID, token,
		)
		if err != nil {
			return fmt.Errorf("seed integration: %w", err)
		}
		fmt.Println("Telegram integration created.")
	} else {
		fmt.Println("TELEGRAM_BOT_TOKEN not set, skipping integration.")
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO products (id, name, slug, price_current, price_old, images)
		VALUES ($1, 'Derila Ergo Pillow', 'derila-ergo-pillow', 190.99, 289.99,
			'[{"url": "/Pod-1.svg", "alt": "Derila Ergo Pillow"}]')
		ON CONFLICT (slug) DO UPDATE SET
			price_current = EXCLUDED.price_current,
			price_old = EXCLUDED.price_old,
			updated_at = now()`,
		uuid.New().String(),
	)
	if err != nil {
		return fmt.Errorf("seed product: %w", err)
	}
	fmt.Println("Product created: Derila Ergo Pillow")
	return nil
}
