package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/repository"
)

type mockEscrowRepo struct {
	mock.Mock
}

func (m *mockEscrowRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductionOrder), args.Error(1)
}

func (m *mockEscrowRepo) ReleaseEscrow(ctx context.Context, orderID uuid.UUID, feeRate float64) (*models.EscrowSplit, error) {
	args := m.Called(ctx, orderID, feeRate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscrowSplit), args.Error(1)
}

func TestEscrowService_Release(t *testing.T) {
	repo := new(mockEscrowRepo)
	svc := NewEscrowService(repo, 0.1)
	ctx := context.Background()
	orderID := uuid.New()

	expected := &models.EscrowSplit{ProviderAmount: 900, PlatformFee: 100}
	repo.On("ReleaseEscrow", ctx, orderID, 0.1).Return(expected, nil)

	split, err := svc.Release(ctx, orderID)
	assert.NoError(t, err)
	assert.Equal(t, expected, split)
	repo.AssertExpectations(t)
}

func TestEscrowService_Release_Repeated(t *testing.T) {
	repo := new(mockEscrowRepo)
	svc := NewEscrowService(repo, 0.1)
	ctx := context.Background()
	orderID := uuid.New()

	// Хранилище отдаёт сохранённое разделение, выплата не повторяется.
	saved := &models.EscrowSplit{ProviderAmount: 900, PlatformFee: 100}
	repo.On("ReleaseEscrow", ctx, orderID, 0.1).Return(saved, nil).Twice()

	first, err := svc.Release(ctx, orderID)
	assert.NoError(t, err)

	second, err := svc.Release(ctx, orderID)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEscrowService_Release_NotCompleted(t *testing.T) {
	repo := new(mockEscrowRepo)
	svc := NewEscrowService(repo, 0.1)
	ctx := context.Background()
	orderID := uuid.New()

	repo.On("ReleaseEscrow", ctx, orderID, 0.1).Return(nil, repository.ErrInvalidTransition)

	_, err := svc.Release(ctx, orderID)
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestEscrowService_GetState(t *testing.T) {
	repo := new(mockEscrowRepo)
	svc := NewEscrowService(repo, 0.1)
	ctx := context.Background()

	customerID := uuid.New()
	order := &models.ProductionOrder{
		ID:                  uuid.New(),
		CustomerID:          customerID,
		ProviderID:          uuid.New(),
		Status:              models.OrderStatusInProduction,
		EscrowAmount:        5000,
		EscrowRefundedTotal: 1200,
	}
	repo.On("GetByID", ctx, order.ID).Return(order, nil)

	state, err := svc.GetState(ctx, order.ID, customerID, models.RoleCustomer)
	assert.NoError(t, err)
	assert.Equal(t, float64(5000), state.Amount)
	assert.Equal(t, float64(1200), state.RefundedTotal)
	assert.Equal(t, float64(3800), state.Remaining)
	assert.Nil(t, state.ReleasedAt)
}

func TestEscrowService_GetState_AfterRelease(t *testing.T) {
	repo := new(mockEscrowRepo)
	svc := NewEscrowService(repo, 0.1)
	ctx := context.Background()

	providerID := uuid.New()
	releasedAt := time.Now()
	providerAmount := 4500.0
	platformFee := 500.0
	order := &models.ProductionOrder{
		ID:               uuid.New(),
		CustomerID:       uuid.New(),
		ProviderID:       providerID,
		Status:           models.OrderStatusCompleted,
		EscrowAmount:     5000,
		EscrowReleasedAt: &releasedAt,
		ProviderAmount:   &providerAmount,
		PlatformFee:      &platformFee,
	}
	repo.On("GetByID", ctx, order.ID).Return(order, nil)

	state, err := svc.GetState(ctx, order.ID, providerID, models.RoleProvider)
	assert.NoError(t, err)
	assert.NotNil(t, state.ReleasedAt)
	assert.Equal(t, providerAmount, *state.ProviderAmount)
	assert.Equal(t, platformFee, *state.PlatformFee)
}

func TestEscrowService_GetState_Forbidden(t *testing.T) {
	repo := new(mockEscrowRepo)
	svc := NewEscrowService(repo, 0.1)
	ctx := context.Background()

	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
	}
	repo.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.GetState(ctx, order.ID, uuid.New(), models.RoleProvider)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет доступа")
}
