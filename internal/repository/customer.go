package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/mealmart/mealmart/internal/models"
	"github.com/mealmart/mealmart/internal/repository/postgres"
)

const (
	selectCustomerByIDQuery = `
						SELECT id, name, email FROM customers
						WHERE id = $1
`
)

// CustomerRepository implements service.CustomerRepository interface
type CustomerRepository struct {
	db *postgres.DB
}

// NewCustomerRepository creates new CustomerRepository instance
func NewCustomerRepository(db *postgres.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetCustomerByID returns customer by id
func (cr *CustomerRepository) GetCustomerByID(ctx context.Context, customerID string) (*models.Customer, error) {
	customer := models.Customer{}
	err := cr.db.QueryRow(ctx, selectCustomerByIDQuery, customerID).Scan(&customer.ID, &customer.Name, &customer.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrCustomerNotFound
		}
		return nil, err
	}

	return &customer, nil
}
