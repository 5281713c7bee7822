package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/pkg/apperror"
	"github.com/ignatzorin/masterskaya-backend/internal/validation"
)

// ListingRepository описывает взаимодействие сервиса с хранилищем объявлений.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Listing, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ListingService содержит бизнес-логику объявлений мастеров.
type ListingService struct {
	repo ListingRepository
}

// NewListingService создаёт новый сервис объявлений.
func NewListingService(repo ListingRepository) *ListingService {
	return &ListingService{repo: repo}
}

// CreateListingInput описывает входные данные создания объявления.
type CreateListingInput struct {
	ProviderID       uuid.UUID
	Title            string
	Description      *string
	ListingType      string
	ProofingRequired bool
	Price            float64
}

// CreateListing создаёт объявление мастера.
func (s *ListingService) CreateListing(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	if err := validation.ValidateListingTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateListingDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if _, ok := models.ValidListingTypes[in.ListingType]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип объявления")
	}
	if err := validation.ValidateAmount(in.Price); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	listing := &models.Listing{
		ProviderID:       in.ProviderID,
		Title:            in.Title,
		Description:      in.Description,
		ListingType:      in.ListingType,
		ProofingRequired: in.ProofingRequired,
		Price:            in.Price,
		IsActive:         true,
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

// GetListing возвращает объявление по идентификатору.
func (s *ListingService) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// ListMyListings возвращает объявления мастера.
func (s *ListingService) ListMyListings(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByProvider(ctx, providerID, limit, offset)
}

// SetListingActive включает или выключает объявление.
func (s *ListingService) SetListingActive(ctx context.Context, listingID, providerID uuid.UUID, active bool) (*models.Listing, error) {
	listing, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if listing.ProviderID != providerID {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет прав на изменение этого объявления")
	}

	if err := s.repo.SetActive(ctx, listingID, active); err != nil {
		return nil, err
	}

	listing.IsActive = active

	return listing, nil
}
