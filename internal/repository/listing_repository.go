package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/pkg/apperror"
)

var ErrListingNotFound = apperror.New(apperror.ErrCodeNotFound, "объявление не найдено")

// ListingRepository отвечает за объявления мастеров.
type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `
	id, provider_id, title, description, listing_type, proofing_required,
	price, is_active, created_at, updated_at
`

// Create сохраняет объявление.
func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (provider_id, title, description, listing_type, proofing_required, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + listingColumns + `
	`
	if err := r.db.GetContext(ctx, listing, query,
		listing.ProviderID,
		listing.Title,
		listing.Description,
		listing.ListingType,
		listing.ProofingRequired,
		listing.Price,
	); err != nil {
		return fmt.Errorf("listing repository: insert %w", err)
	}
	return nil
}

// GetByID возвращает объявление по идентификатору.
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	if err := r.db.GetContext(ctx, &listing, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("listing repository: get by id %w", err)
	}
	return &listing, nil
}

// ListByProvider возвращает объявления мастера.
func (r *ListingRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Listing, error) {
	var listings []models.Listing
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &listings, query, providerID, limit, offset); err != nil {
		return nil, fmt.Errorf("listing repository: list by provider %w", err)
	}
	return listings, nil
}

// SetActive включает или выключает объявление.
func (r *ListingRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE listings SET is_active = $2, updated_at = NOW() WHERE id = $1
	`, id, active)
	if err != nil {
		return fmt.Errorf("listing repository: set active %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("listing repository: rows affected %w", err)
	}
	if affected == 0 {
		return ErrListingNotFound
	}
	return nil
}
