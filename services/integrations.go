package services

import (
	"context"
	"encoding/json"
	"fmt"

	"shop-telegram/db"
	"shop-telegram/models"
)

// IntegrationStore lists configured external channels.
type IntegrationStore interface {
	ListActiveByType(ctx context.Context, integrationType string) ([]*models.Integration, error)
}

// PostgresIntegrationStore reads the integrations table.
type PostgresIntegrationStore struct{}

func NewPostgresIntegrationStore() *PostgresIntegrationStore {
	return &PostgresIntegrationStore{}
}

func (s *PostgresIntegrationStore) ListActiveByType(ctx context.Context, integrationType string) ([]*models.Integration, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id::text, type, name, is_active, settings, credentials, created_at
		FROM integrations
		WHERE type = $1 AND is_active
		ORDER BY created_at`,
		integrationType,
	)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()

	var list []*models.Integration
	for rows.Next() {
		var in models.Integration
		var settingsJSON, credentialsJSON []byte
		if err := rows.Scan(&in.ID, &in.Type, &in.Name, &in.IsActive, &settingsJSON, &credentialsJSON, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		if len(settingsJSON) > 0 {
			if err := json.Unmarshal(settingsJSON, &in.Settings); err != nil {
				return nil, fmt.Errorf("unmarshal integration settings: %w", err)
			}
		}
		if len(credentialsJSON) > 0 {
			if err := json.Unmarshal(credentialsJSON, &in.Credentials); err != nil {
				return nil, fmt.Errorf("unmarshal integration credentials: %w", err)
			}
		}
		list = append(list, &in)
	}
	return list, rows.Err()
}
