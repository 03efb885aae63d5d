package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/mealmart/mealmart/internal/models"
	"github.com/mealmart/mealmart/internal/repository/postgres"
)

const (
	selectVendorByIDQuery = `
						SELECT id, name, email FROM vendors
						WHERE id = $1
`
)

// VendorRepository implements service.VendorRepository interface
type VendorRepository struct {
	db *postgres.DB
}

// NewVendorRepository creates new VendorRepository instance
func NewVendorRepository(db *postgres.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// GetVendorByID returns vendor by id
func (vr *VendorRepository) GetVendorByID(ctx context.Context, vendorID string) (*models.Vendor, error) {
	vendor := models.Vendor{}
	err := vr.db.QueryRow(ctx, selectVendorByIDQuery, vendorID).Scan(&vendor.ID, &vendor.Name, &vendor.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrVendorNotFound
		}
		return nil, err
	}

	return &vendor, nil
}
