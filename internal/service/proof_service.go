package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/pkg/apperror"
	"github.com/ignatzorin/masterskaya-backend/internal/validation"
)

// ProofRepository описывает взаимодействие сервиса с хранилищем макетов.
type ProofRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProofSubmission, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.ProofSubmission, error)
	Submit(ctx context.Context, orderID, providerID uuid.UUID, comment *string, fileKeys []string) (*models.ProofSubmission, error)
	Resolve(ctx context.Context, proofID, customerID uuid.UUID, decision string, comment *string) (*models.ProofSubmission, error)
}

// ProofService содержит бизнес-логику согласования макетов.
type ProofService struct {
	repo   ProofRepository
	orders OrderReader
}

// NewProofService создаёт новый сервис макетов.
func NewProofService(repo ProofRepository, orders OrderReader) *ProofService {
	return &ProofService{
		repo:   repo,
		orders: orders,
	}
}

// SubmitProofInput описывает входные данные отправки макета.
type SubmitProofInput struct {
	OrderID    uuid.UUID
	ProviderID uuid.UUID
	Comment    *string
	FileKeys   []string
}

// SubmitProof отправляет новую версию макета на согласование.
// Номер версии выдаёт хранилище под блокировкой заказа, поэтому версии
// растут без пропусков даже при конкурентных отправках.
func (s *ProofService) SubmitProof(ctx context.Context, in SubmitProofInput) (*models.ProofSubmission, error) {
	if err := validation.ValidateComment(in.Comment); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateProofFiles(in.FileKeys); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	if order.ProviderID != in.ProviderID {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет прав на отправку макета по этому заказу")
	}

	return s.repo.Submit(ctx, in.OrderID, in.ProviderID, in.Comment, in.FileKeys)
}

// ResolveProof выносит решение заказчика по последней отправленной версии макета.
func (s *ProofService) ResolveProof(ctx context.Context, proofID, customerID uuid.UUID, decision string, comment *string) (*models.ProofSubmission, error) {
	if _, ok := models.ValidProofDecisions[decision]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректное решение по макету")
	}
	if err := validation.ValidateComment(comment); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	proof, err := s.repo.GetByID(ctx, proofID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, proof.OrderID)
	if err != nil {
		return nil, err
	}

	if order.CustomerID != customerID {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "решение по макету выносит только заказчик")
	}

	return s.repo.Resolve(ctx, proofID, customerID, decision, comment)
}

// GetProof возвращает версию макета участникам заказа.
func (s *ProofService) GetProof(ctx context.Context, proofID, viewerID uuid.UUID, viewerRole string) (*models.ProofSubmission, error) {
	proof, err := s.repo.GetByID(ctx, proofID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, proof.OrderID)
	if err != nil {
		return nil, err
	}

	if !canViewOrder(order, viewerID, viewerRole) {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет доступа к этому макету")
	}

	return proof, nil
}

// ListProofs возвращает все версии макетов заказа от новых к старым.
func (s *ProofService) ListProofs(ctx context.Context, orderID, viewerID uuid.UUID, viewerRole string) ([]models.ProofSubmission, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !canViewOrder(order, viewerID, viewerRole) {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет доступа к этому заказу")
	}

	return s.repo.ListByOrder(ctx, orderID)
}
