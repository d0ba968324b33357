package port

import (
	"context"
	"time"
)

// RegistryRecord is the official registration of a company keyed by its BIN.
type RegistryRecord struct {
	BIN       string    `db:"bin" json:"bin"`
	NameRu    string    `db:"name_ru" json:"nameRu"`
	Address   string    `db:"address" json:"address"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CompanyRegistry looks up companies in the official registry.
type CompanyRegistry interface {
	// FindByBIN returns domain.ErrNotFound when the BIN is not registered.
	FindByBIN(ctx context.Context, bin string) (*RegistryRecord, error)
	Ping(ctx context.Context) error
}
