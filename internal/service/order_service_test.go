package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/repository"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, order *models.ProductionOrder) error {
	args := m.Called(ctx, order)
	if args.Error(0) == nil {
		order.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductionOrder), args.Error(1)
}

func (m *mockOrderRepo) ListByParticipant(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.ProductionOrder, int, error) {
	args := m.Called(ctx, userID, status, limit, offset)
	return args.Get(0).([]models.ProductionOrder), args.Int(1), args.Error(2)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, upd repository.StatusUpdate) (*models.ProductionOrder, error) {
	args := m.Called(ctx, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductionOrder), args.Error(1)
}

func (m *mockOrderRepo) CompleteAndRelease(ctx context.Context, orderID, actorID uuid.UUID, feeRate float64) (*models.ProductionOrder, *models.EscrowSplit, error) {
	args := m.Called(ctx, orderID, actorID, feeRate)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.ProductionOrder), args.Get(1).(*models.EscrowSplit), args.Error(2)
}

func (m *mockOrderRepo) CancelAndRefund(ctx context.Context, orderID, actorID uuid.UUID, reason string) (*models.ProductionOrder, error) {
	args := m.Called(ctx, orderID, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductionOrder), args.Error(1)
}

type mockListingReader struct {
	mock.Mock
}

func (m *mockListingReader) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

type mockTimelineReader struct {
	mock.Mock
}

func (m *mockTimelineReader) ListByOrder(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]models.TimelineEvent, error) {
	args := m.Called(ctx, orderID, limit, offset)
	return args.Get(0).([]models.TimelineEvent), args.Error(1)
}

func activeListing(providerID uuid.UUID) *models.Listing {
	return &models.Listing{
		ID:               uuid.New(),
		ProviderID:       providerID,
		Title:            "Гравировка на металле",
		ListingType:      models.ListingTypeCustomService,
		ProofingRequired: true,
		Price:            3000,
		IsActive:         true,
	}
}

func TestOrderService_PlaceOrder_Success(t *testing.T) {
	orders := new(mockOrderRepo)
	listings := new(mockListingReader)
	svc := NewOrderService(orders, listings, new(mockTimelineReader), 0.1)
	ctx := context.Background()

	customerID := uuid.New()
	providerID := uuid.New()
	listing := activeListing(providerID)

	listings.On("GetByID", ctx, listing.ID).Return(listing, nil)
	orders.On("Create", ctx, mock.AnythingOfType("*models.ProductionOrder")).Return(nil)

	order, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		CustomerID: customerID,
		ListingID:  listing.ID,
		Title:      "Гравировка ножа с дарственной надписью",
		Amount:     4500,
	})

	assert.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, models.OrderStatusPendingOrderReceived, order.Status)
	assert.Equal(t, customerID, order.CustomerID)
	assert.Equal(t, providerID, order.ProviderID)
	assert.True(t, order.ProofingRequired)
	assert.Equal(t, float64(4500), order.EscrowAmount)
	orders.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_ConsultationFirst(t *testing.T) {
	orders := new(mockOrderRepo)
	listings := new(mockListingReader)
	svc := NewOrderService(orders, listings, new(mockTimelineReader), 0.1)
	ctx := context.Background()

	listing := activeListing(uuid.New())
	listings.On("GetByID", ctx, listing.ID).Return(listing, nil)
	orders.On("Create", ctx, mock.AnythingOfType("*models.ProductionOrder")).Return(nil)

	order, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		CustomerID:            uuid.New(),
		ListingID:             listing.ID,
		Amount:                4500,
		ConsultationRequested: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendingConsultation, order.Status)
}

func TestOrderService_PlaceOrder_CatalogPriceIsFixed(t *testing.T) {
	orders := new(mockOrderRepo)
	listings := new(mockListingReader)
	svc := NewOrderService(orders, listings, new(mockTimelineReader), 0.1)
	ctx := context.Background()

	listing := activeListing(uuid.New())
	listing.ListingType = models.ListingTypeService
	listing.Price = 2500

	listings.On("GetByID", ctx, listing.ID).Return(listing, nil)
	orders.On("Create", ctx, mock.AnythingOfType("*models.ProductionOrder")).Return(nil)

	// Для каталожной услуги сумма из запроса игнорируется.
	order, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		CustomerID: uuid.New(),
		ListingID:  listing.ID,
		Amount:     99999,
	})

	assert.NoError(t, err)
	assert.Equal(t, float64(2500), order.EscrowAmount)
}

func TestOrderService_PlaceOrder_TitleDefaultsToListing(t *testing.T) {
	orders := new(mockOrderRepo)
	listings := new(mockListingReader)
	svc := NewOrderService(orders, listings, new(mockTimelineReader), 0.1)
	ctx := context.Background()

	listing := activeListing(uuid.New())
	listings.On("GetByID", ctx, listing.ID).Return(listing, nil)
	orders.On("Create", ctx, mock.AnythingOfType("*models.ProductionOrder")).Return(nil)

	order, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		CustomerID: uuid.New(),
		ListingID:  listing.ID,
		Amount:     4500,
	})

	assert.NoError(t, err)
	assert.Equal(t, listing.Title, order.Title)
}

func TestOrderService_PlaceOrder_InactiveListing(t *testing.T) {
	orders := new(mockOrderRepo)
	listings := new(mockListingReader)
	svc := NewOrderService(orders, listings, new(mockTimelineReader), 0.1)
	ctx := context.Background()

	listing := activeListing(uuid.New())
	listing.IsActive = false
	listings.On("GetByID", ctx, listing.ID).Return(listing, nil)

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		CustomerID: uuid.New(),
		ListingID:  listing.ID,
		Amount:     4500,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "недоступно")
}

func TestOrderService_PlaceOrder_OwnListing(t *testing.T) {
	orders := new(mockOrderRepo)
	listings := new(mockListingReader)
	svc := NewOrderService(orders, listings, new(mockTimelineReader), 0.1)
	ctx := context.Background()

	providerID := uuid.New()
	listing := activeListing(providerID)
	listings.On("GetByID", ctx, listing.ID).Return(listing, nil)

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		CustomerID: providerID,
		ListingID:  listing.ID,
		Amount:     4500,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "собственное объявление")
}

func TestOrderService_PlaceOrder_ListingNotFound(t *testing.T) {
	orders := new(mockOrderRepo)
	listings := new(mockListingReader)
	svc := NewOrderService(orders, listings, new(mockTimelineReader), 0.1)
	ctx := context.Background()

	listingID := uuid.New()
	listings.On("GetByID", ctx, listingID).Return(nil, repository.ErrListingNotFound)

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		CustomerID: uuid.New(),
		ListingID:  listingID,
		Amount:     4500,
	})

	assert.ErrorIs(t, err, repository.ErrListingNotFound)
}

func TestOrderService_GetOrder_Participants(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	customerID := uuid.New()
	providerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: customerID,
		ProviderID: providerID,
		Status:     models.OrderStatusInProduction,
	}
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	got, err := svc.GetOrder(ctx, order.ID, customerID, models.RoleCustomer)
	assert.NoError(t, err)
	assert.Equal(t, order, got)

	_, err = svc.GetOrder(ctx, order.ID, providerID, models.RoleProvider)
	assert.NoError(t, err)

	_, err = svc.GetOrder(ctx, order.ID, uuid.New(), models.RoleAdmin)
	assert.NoError(t, err)
}

func TestOrderService_GetOrder_Forbidden(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
	}
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.GetOrder(ctx, order.ID, uuid.New(), models.RoleCustomer)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет доступа")
}

func TestOrderService_ListMyOrders_UnknownStatus(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	_, _, err := svc.ListMyOrders(ctx, uuid.New(), "delivering", 20, 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "неизвестный статус")
}

func TestOrderService_ListMyOrders_DefaultsPagination(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()
	userID := uuid.New()

	orders.On("ListByParticipant", ctx, userID, "", 20, 0).Return([]models.ProductionOrder{}, 0, nil)

	_, total, err := svc.ListMyOrders(ctx, userID, "", 0, -5)
	assert.NoError(t, err)
	assert.Equal(t, 0, total)
	orders.AssertExpectations(t)
}

func TestOrderService_GetTimeline(t *testing.T) {
	orders := new(mockOrderRepo)
	timeline := new(mockTimelineReader)
	svc := NewOrderService(orders, new(mockListingReader), timeline, 0.1)
	ctx := context.Background()

	customerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: customerID,
		ProviderID: uuid.New(),
	}
	events := []models.TimelineEvent{
		{ID: uuid.New(), EventType: models.TimelineEventProductionStarted},
		{ID: uuid.New(), EventType: models.TimelineEventOrderCreated},
	}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	timeline.On("ListByOrder", ctx, order.ID, 50, 0).Return(events, nil)

	got, err := svc.GetTimeline(ctx, order.ID, customerID, models.RoleCustomer, 0, 0)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestOrderService_GetTimeline_Forbidden(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
	}
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.GetTimeline(ctx, order.ID, uuid.New(), models.RoleCustomer, 0, 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет доступа")
}

func TestOrderService_CloseConsultation(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	providerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: providerID,
		Status:     models.OrderStatusPendingConsultation,
	}
	updated := &models.ProductionOrder{ID: order.ID, Status: models.OrderStatusPendingOrderReceived}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, mock.MatchedBy(func(upd repository.StatusUpdate) bool {
		return upd.OrderID == order.ID && upd.ActorID == providerID &&
			upd.ToStatus == models.OrderStatusPendingOrderReceived
	})).Return(updated, nil)

	got, err := svc.CloseConsultation(ctx, order.ID, providerID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendingOrderReceived, got.Status)
}

func TestOrderService_CloseConsultation_NotProvider(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
		Status:     models.OrderStatusPendingConsultation,
	}
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.CloseConsultation(ctx, order.ID, uuid.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет прав")
}

func TestOrderService_StartProduction_ProofGate(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	providerID := uuid.New()
	order := &models.ProductionOrder{
		ID:               uuid.New(),
		CustomerID:       uuid.New(),
		ProviderID:       providerID,
		Status:           models.OrderStatusOrderReceived,
		ProofingRequired: true,
	}
	updated := &models.ProductionOrder{ID: order.ID, Status: models.OrderStatusInProduction}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, mock.MatchedBy(func(upd repository.StatusUpdate) bool {
		return upd.ToStatus == models.OrderStatusInProduction && upd.RequireApprovedProof
	})).Return(updated, nil)

	got, err := svc.StartProduction(ctx, order.ID, providerID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProduction, got.Status)
	orders.AssertExpectations(t)
}

func TestOrderService_StartProduction_NoProofingNeeded(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	providerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: providerID,
		Status:     models.OrderStatusOrderReceived,
	}
	updated := &models.ProductionOrder{ID: order.ID, Status: models.OrderStatusInProduction}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, mock.MatchedBy(func(upd repository.StatusUpdate) bool {
		return upd.ToStatus == models.OrderStatusInProduction && !upd.RequireApprovedProof
	})).Return(updated, nil)

	_, err := svc.StartProduction(ctx, order.ID, providerID)
	assert.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestOrderService_ConfirmReceipt_InvalidTransition(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	providerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: providerID,
		Status:     models.OrderStatusShipped,
	}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, mock.AnythingOfType("repository.StatusUpdate")).Return(nil, repository.ErrInvalidTransition)

	_, err := svc.ConfirmReceipt(ctx, order.ID, providerID)
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestOrderService_MarkShipped_WithTracking(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	providerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: providerID,
		Status:     models.OrderStatusReadyForDelivery,
	}
	tracking := "RU123456789"
	carrier := "Почта России"
	updated := &models.ProductionOrder{
		ID:             order.ID,
		Status:         models.OrderStatusShipped,
		TrackingNumber: &tracking,
		Carrier:        &carrier,
	}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, mock.MatchedBy(func(upd repository.StatusUpdate) bool {
		return upd.ToStatus == models.OrderStatusShipped &&
			upd.TrackingNumber != nil && *upd.TrackingNumber == tracking
	})).Return(updated, nil)

	got, err := svc.MarkShipped(ctx, order.ID, providerID, &tracking, &carrier)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.Status)
	assert.Equal(t, tracking, *got.TrackingNumber)
}

func TestOrderService_CompleteOrder_ByCustomer(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	customerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: customerID,
		ProviderID: uuid.New(),
		Status:     models.OrderStatusShipped,
	}
	completed := &models.ProductionOrder{ID: order.ID, Status: models.OrderStatusCompleted}
	split := &models.EscrowSplit{ProviderAmount: 2700, PlatformFee: 300}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("CompleteAndRelease", ctx, order.ID, customerID, 0.1).Return(completed, split, nil)

	got, gotSplit, err := svc.CompleteOrder(ctx, order.ID, customerID, models.RoleCustomer)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)
	assert.Equal(t, float64(2700), gotSplit.ProviderAmount)
	assert.Equal(t, float64(300), gotSplit.PlatformFee)
}

func TestOrderService_CompleteOrder_ByAdmin(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	adminID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
		Status:     models.OrderStatusShipped,
	}
	completed := &models.ProductionOrder{ID: order.ID, Status: models.OrderStatusCompleted}
	split := &models.EscrowSplit{ProviderAmount: 2700, PlatformFee: 300}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("CompleteAndRelease", ctx, order.ID, adminID, 0.1).Return(completed, split, nil)

	_, _, err := svc.CompleteOrder(ctx, order.ID, adminID, models.RoleAdmin)
	assert.NoError(t, err)
}

func TestOrderService_CompleteOrder_ProviderForbidden(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	providerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: providerID,
		Status:     models.OrderStatusShipped,
	}
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, _, err := svc.CompleteOrder(ctx, order.ID, providerID, models.RoleProvider)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "только заказчик")
}

func TestOrderService_CancelOrder_ByProvider(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	providerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: providerID,
		Status:     models.OrderStatusInProduction,
	}
	reason := "Нет нужных материалов"
	cancelled := &models.ProductionOrder{ID: order.ID, Status: models.OrderStatusCancelled, CancelReason: &reason}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("CancelAndRefund", ctx, order.ID, providerID, reason).Return(cancelled, nil)

	got, err := svc.CancelOrder(ctx, order.ID, providerID, models.RoleProvider, reason)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
}

func TestOrderService_CancelOrder_Stranger(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
		Status:     models.OrderStatusInProduction,
	}
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.CancelOrder(ctx, order.ID, uuid.New(), models.RoleCustomer, "Передумал")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет прав")
}

func TestOrderService_CancelOrder_EmptyReason(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()

	_, err := svc.CancelOrder(ctx, uuid.New(), uuid.New(), models.RoleCustomer, "   ")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "причина обязательна")
}

func TestOrderService_CancelOrder_NotFound(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockListingReader), new(mockTimelineReader), 0.1)
	ctx := context.Background()
	orderID := uuid.New()

	orders.On("GetByID", ctx, orderID).Return(nil, repository.ErrOrderNotFound)

	_, err := svc.CancelOrder(ctx, orderID, uuid.New(), models.RoleCustomer, "Передумал")
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}
