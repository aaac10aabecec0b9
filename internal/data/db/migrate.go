package db

import (
	"fmt"

	types "github.com/yungbote/neurochat-backend/internal/domain"
)

func (s *Service) AutoMigrateAll() error {
	if err := s.db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	s.log.Info("Schema migrated", "tables", len(types.Models()))
	return nil
}
