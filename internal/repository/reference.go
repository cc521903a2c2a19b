package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/invoicing-api/internal/models"
)

// ReferenceStore reads the fixed client and product catalogs. No writes:
// reference data is seeded at startup and immutable through the API.
type ReferenceStore struct {
	db *gorm.DB
}

func NewReferenceStore(db *gorm.DB) *ReferenceStore {
	return &ReferenceStore{db: db}
}

func (s *ReferenceStore) GetClient(ctx context.Context, id uint) (models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).First(&client, id).Error
	return client, err
}

func (s *ReferenceStore) GetProduct(ctx context.Context, id uint) (models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	return product, err
}

func (s *ReferenceStore) ListClients(ctx context.Context) ([]models.Client, error) {
	clients := make([]models.Client, 0)
	err := s.db.WithContext(ctx).Order("id").Find(&clients).Error
	return clients, err
}

func (s *ReferenceStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := s.db.WithContext(ctx).Order("id").Find(&products).Error
	return products, err
}
