package service

import (
	"database/sql"

	"github.com/madame-president/normaDB/internal/database"
	"github.com/madame-president/normaDB/internal/version"
)

// SystemService handles system-related operations across both durable
// stores.
type SystemService struct {
	txDB    *sql.DB
	priceDB *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(txDB, priceDB *sql.DB) *SystemService {
	return &SystemService{
		txDB:    txDB,
		priceDB: priceDB,
	}
}

// CheckHealth checks connectivity to both stores
func (s *SystemService) CheckHealth() error {
	if err := database.HealthCheck(s.txDB); err != nil {
		return err
	}
	return database.HealthCheck(s.priceDB)
}

// CheckVersion returns the application version
func (s *SystemService) CheckVersion() string {
	return version.Version
}
