package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"shipmerge/internal/domain"
	"shipmerge/internal/port"
)

type companyRegistryRepo struct {
	db *sqlx.DB
}

// NewCompanyRegistryRepo creates a new PostgreSQL-backed CompanyRegistry.
func NewCompanyRegistryRepo(db *sqlx.DB) port.CompanyRegistry {
	return &companyRegistryRepo{db: db}
}

func (r *companyRegistryRepo) FindByBIN(ctx context.Context, bin string) (*port.RegistryRecord, error) {
	var rec port.RegistryRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT bin, name_ru, address, updated_at
		 FROM company_registry
		 WHERE bin = $1`, bin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("companyRegistryRepo.FindByBIN: %w", err)
	}
	return &rec, nil
}

func (r *companyRegistryRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("companyRegistryRepo.Ping: %w", err)
	}
	return nil
}
