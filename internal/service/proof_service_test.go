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

type mockProofRepo struct {
	mock.Mock
}

func (m *mockProofRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProofSubmission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProofSubmission), args.Error(1)
}

func (m *mockProofRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.ProofSubmission, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.ProofSubmission), args.Error(1)
}

func (m *mockProofRepo) Submit(ctx context.Context, orderID, providerID uuid.UUID, comment *string, fileKeys []string) (*models.ProofSubmission, error) {
	args := m.Called(ctx, orderID, providerID, comment, fileKeys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProofSubmission), args.Error(1)
}

func (m *mockProofRepo) Resolve(ctx context.Context, proofID, customerID uuid.UUID, decision string, comment *string) (*models.ProofSubmission, error) {
	args := m.Called(ctx, proofID, customerID, decision, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProofSubmission), args.Error(1)
}

type mockOrderReaderForProofs struct {
	mock.Mock
}

func (m *mockOrderReaderForProofs) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductionOrder), args.Error(1)
}

func TestProofService_SubmitProof(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	providerID := uuid.New()
	order := &models.ProductionOrder{
		ID:               uuid.New(),
		CustomerID:       uuid.New(),
		ProviderID:       providerID,
		Status:           models.OrderStatusOrderReceived,
		ProofingRequired: true,
	}
	comment := "Первый вариант макета"
	files := []string{"proofs/engraving_v1.png"}
	expected := &models.ProofSubmission{
		ID:            uuid.New(),
		OrderID:       order.ID,
		ProviderID:    providerID,
		VersionNumber: 1,
		Status:        models.ProofStatusPending,
	}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	proofs.On("Submit", ctx, order.ID, providerID, &comment, files).Return(expected, nil)

	proof, err := svc.SubmitProof(ctx, SubmitProofInput{
		OrderID:    order.ID,
		ProviderID: providerID,
		Comment:    &comment,
		FileKeys:   files,
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, proof.VersionNumber)
	assert.Equal(t, models.ProofStatusPending, proof.Status)
	proofs.AssertExpectations(t)
}

func TestProofService_SubmitProof_NotProvider(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
		Status:     models.OrderStatusOrderReceived,
	}
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.SubmitProof(ctx, SubmitProofInput{
		OrderID:    order.ID,
		ProviderID: uuid.New(),
		FileKeys:   []string{"proofs/v1.png"},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет прав")
}

func TestProofService_SubmitProof_TooManyFiles(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	files := make([]string, 21)
	for i := range files {
		files[i] = "proofs/v1.png"
	}

	_, err := svc.SubmitProof(ctx, SubmitProofInput{
		OrderID:    uuid.New(),
		ProviderID: uuid.New(),
		FileKeys:   files,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "количество файлов")
}

func TestProofService_SubmitProof_EmptyFileKey(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	_, err := svc.SubmitProof(ctx, SubmitProofInput{
		OrderID:    uuid.New(),
		ProviderID: uuid.New(),
		FileKeys:   []string{"  "},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "не может быть пустым")
}

func TestProofService_SubmitProof_AlreadyPending(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	providerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: providerID,
		Status:     models.OrderStatusPendingApproval,
	}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	proofs.On("Submit", ctx, order.ID, providerID, (*string)(nil), []string{"proofs/v2.png"}).
		Return(nil, repository.ErrProofAlreadyPending)

	_, err := svc.SubmitProof(ctx, SubmitProofInput{
		OrderID:    order.ID,
		ProviderID: providerID,
		FileKeys:   []string{"proofs/v2.png"},
	})

	assert.ErrorIs(t, err, repository.ErrProofAlreadyPending)
}

func TestProofService_ResolveProof_Approve(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	customerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: customerID,
		ProviderID: uuid.New(),
		Status:     models.OrderStatusPendingApproval,
	}
	proof := &models.ProofSubmission{
		ID:            uuid.New(),
		OrderID:       order.ID,
		VersionNumber: 2,
		Status:        models.ProofStatusPending,
	}
	resolved := &models.ProofSubmission{
		ID:            proof.ID,
		OrderID:       order.ID,
		VersionNumber: 2,
		Status:        models.ProofStatusApproved,
	}

	proofs.On("GetByID", ctx, proof.ID).Return(proof, nil)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	proofs.On("Resolve", ctx, proof.ID, customerID, models.ProofDecisionApprove, (*string)(nil)).Return(resolved, nil)

	got, err := svc.ResolveProof(ctx, proof.ID, customerID, models.ProofDecisionApprove, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.ProofStatusApproved, got.Status)
	assert.True(t, got.IsResolved())
}

func TestProofService_ResolveProof_InvalidDecision(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	_, err := svc.ResolveProof(ctx, uuid.New(), uuid.New(), "maybe", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "некорректное решение")
}

func TestProofService_ResolveProof_NotCustomer(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	providerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: providerID,
		Status:     models.OrderStatusPendingApproval,
	}
	proof := &models.ProofSubmission{ID: uuid.New(), OrderID: order.ID, Status: models.ProofStatusPending}

	proofs.On("GetByID", ctx, proof.ID).Return(proof, nil)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	// Мастер не может сам одобрить свой макет.
	_, err := svc.ResolveProof(ctx, proof.ID, providerID, models.ProofDecisionApprove, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "только заказчик")
}

func TestProofService_ResolveProof_StaleVersion(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	customerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: customerID,
		ProviderID: uuid.New(),
	}
	proof := &models.ProofSubmission{ID: uuid.New(), OrderID: order.ID, VersionNumber: 1, Status: models.ProofStatusPending}

	proofs.On("GetByID", ctx, proof.ID).Return(proof, nil)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	proofs.On("Resolve", ctx, proof.ID, customerID, models.ProofDecisionReject, (*string)(nil)).
		Return(nil, repository.ErrStaleProof)

	_, err := svc.ResolveProof(ctx, proof.ID, customerID, models.ProofDecisionReject, nil)
	assert.ErrorIs(t, err, repository.ErrStaleProof)
}

func TestProofService_GetProof_AdminAllowed(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
	}
	proof := &models.ProofSubmission{ID: uuid.New(), OrderID: order.ID, Status: models.ProofStatusApproved}

	proofs.On("GetByID", ctx, proof.ID).Return(proof, nil)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	got, err := svc.GetProof(ctx, proof.ID, uuid.New(), models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, proof, got)
}

func TestProofService_GetProof_Forbidden(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
	}
	proof := &models.ProofSubmission{ID: uuid.New(), OrderID: order.ID}

	proofs.On("GetByID", ctx, proof.ID).Return(proof, nil)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.GetProof(ctx, proof.ID, uuid.New(), models.RoleCustomer)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет доступа")
}

func TestProofService_ListProofs(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	customerID := uuid.New()
	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: customerID,
		ProviderID: uuid.New(),
	}
	versions := []models.ProofSubmission{
		{ID: uuid.New(), VersionNumber: 2, Status: models.ProofStatusPending},
		{ID: uuid.New(), VersionNumber: 1, Status: models.ProofStatusRevisionRequested},
	}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	proofs.On("ListByOrder", ctx, order.ID).Return(versions, nil)

	got, err := svc.ListProofs(ctx, order.ID, customerID, models.RoleCustomer)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestProofService_ListProofs_Forbidden(t *testing.T) {
	proofs := new(mockProofRepo)
	orders := new(mockOrderReaderForProofs)
	svc := NewProofService(proofs, orders)
	ctx := context.Background()

	order := &models.ProductionOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
	}
	orders.On("GetByID", ctx, order.ID).Return(order, nil)

	_, err := svc.ListProofs(ctx, order.ID, uuid.New(), models.RoleProvider)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет доступа")
}
