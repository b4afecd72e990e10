package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/internal/repo"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
)

// Repository reads product listing data used for shipping weights.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Create(product).Error
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindWeights returns the stored weight of every product in ids that has one.
// Products without a weight, or that do not exist, are absent from the map.
func (r *Repository) FindWeights(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	weights := make(map[uuid.UUID]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return weights, nil
	}

	var rows []models.Product
	if err := r.DB(ctx).
		Select("id", "weight_kg").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.WeightKg.Valid && row.WeightKg.Decimal.IsPositive() {
			weights[row.ID] = row.WeightKg.Decimal
		}
	}
	return weights, nil
}
