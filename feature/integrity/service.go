package integrity

import (
	"context"

	"rewrite-manager/feature/catalog"
	"rewrite-manager/feature/rewrite"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service runs preflight checks against the catalog database.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// Models returns every table the regeneration jobs depend on.
func Models() []any {
	return append(catalog.Models(), rewrite.URLRewrite{})
}

// CheckSchema compares the catalog and url_rewrite tables with their models
// and logs every problem found.
func (s *Service) CheckSchema(ctx context.Context) (*SchemaReport, error) {
	report, err := CheckSchema(s.db.WithContext(ctx), Models()...)
	if err != nil {
		return nil, err
	}

	for _, msg := range report.Errors {
		s.logger.Error("Schema check error", zap.String("error", msg))
	}
	for table, tbl := range report.Tables {
		if len(tbl.MissingColumns) > 0 {
			s.logger.Warn("Missing columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
		}
		if len(tbl.TypeMismatches) > 0 {
			s.logger.Warn("Type mismatches", zap.String("table", table), zap.Strings("details", tbl.TypeMismatches))
		}
	}
	return report, nil
}
