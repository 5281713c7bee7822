package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/masterskaya-backend/internal/dto"
	"github.com/ignatzorin/masterskaya-backend/internal/http/handlers/common"
	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/service"
)

type ListingHandler struct {
	listings *service.ListingService
}

// NewListingHandler создаёт новый хэндлер.
func NewListingHandler(listings *service.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// CreateListing обрабатывает POST /listings.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	if role != models.RoleProvider && role != models.RoleAdmin {
		common.RespondForbidden(c, "создавать объявления могут только мастера")
		return
	}

	var req dto.CreateListingRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listing, err := h.listings.CreateListing(c.Request.Context(), service.CreateListingInput{
		ProviderID:       userID,
		Title:            req.Title,
		Description:      req.Description,
		ListingType:      req.ListingType,
		ProofingRequired: req.ProofingRequired,
		Price:            req.Price,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// GetListing обрабатывает GET /listings/:id.
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listing, err := h.listings.GetListing(c.Request.Context(), listingID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// ListMyListings обрабатывает GET /listings/my - объявления текущего мастера.
func (h *ListingHandler) ListMyListings(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	listings, err := h.listings.ListMyListings(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}

	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// SetListingActive обрабатывает PATCH /listings/:id/active.
func (h *ListingHandler) SetListingActive(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SetListingActiveRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listing, err := h.listings.SetListingActive(c.Request.Context(), listingID, userID, *req.IsActive)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}
