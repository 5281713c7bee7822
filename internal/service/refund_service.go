package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/pkg/apperror"
	"github.com/ignatzorin/masterskaya-backend/internal/validation"
)

// RefundRepository описывает взаимодействие сервиса с хранилищем возвратов.
type RefundRepository interface {
	Create(ctx context.Context, req *models.RefundRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.RefundRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.RefundRequest, error)
	Resolve(ctx context.Context, requestID, resolverID uuid.UUID, decision string, response *string) (*models.RefundRequest, error)
}

// RefundService содержит бизнес-логику возвратов удержанных средств.
type RefundService struct {
	repo   RefundRepository
	orders OrderReader
}

// NewRefundService создаёт новый сервис возвратов.
func NewRefundService(repo RefundRepository, orders OrderReader) *RefundService {
	return &RefundService{
		repo:   repo,
		orders: orders,
	}
}

// RequestRefundInput описывает входные данные запроса на возврат.
type RequestRefundInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Amount     float64
	Reason     string
}

// RequestRefund создаёт запрос заказчика на возврат части удержанной суммы.
// Сумма проверяется против невозвращённого остатка под блокировкой заказа,
// поэтому сумма одобренных возвратов никогда не превысит удержание.
func (s *RefundService) RequestRefund(ctx context.Context, in RequestRefundInput) (*models.RefundRequest, error) {
	if err := validation.ValidateAmount(in.Amount); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateReason(in.Reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	if order.CustomerID != in.CustomerID {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "запросить возврат может только заказчик")
	}

	req := &models.RefundRequest{
		OrderID:    in.OrderID,
		CustomerID: in.CustomerID,
		Amount:     in.Amount,
		Reason:     in.Reason,
		Status:     models.RefundStatusPending,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// RespondToRefund выносит решение мастера или администратора по запросу.
// Одобрение списывает сумму с удержания и завершает запрос в одной транзакции.
func (s *RefundService) RespondToRefund(ctx context.Context, requestID, actorID uuid.UUID, actorRole, decision string, response *string) (*models.RefundRequest, error) {
	if decision != models.RefundDecisionApprove && decision != models.RefundDecisionReject {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректное решение по возврату")
	}
	if err := validation.ValidateComment(response); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if order.ProviderID != actorID && actorRole != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет прав отвечать на этот запрос")
	}

	return s.repo.Resolve(ctx, requestID, actorID, decision, response)
}

// GetRefund возвращает запрос на возврат участникам заказа.
func (s *RefundService) GetRefund(ctx context.Context, requestID, viewerID uuid.UUID, viewerRole string) (*models.RefundRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if !canViewOrder(order, viewerID, viewerRole) {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет доступа к этому запросу")
	}

	return req, nil
}

// ListRefunds возвращает запросы на возврат по заказу.
func (s *RefundService) ListRefunds(ctx context.Context, orderID, viewerID uuid.UUID, viewerRole string) ([]models.RefundRequest, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !canViewOrder(order, viewerID, viewerRole) {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет доступа к этому заказу")
	}

	return s.repo.ListByOrder(ctx, orderID)
}

// ListMyRefunds возвращает запросы по заказам, где пользователь участвует.
func (s *RefundService) ListMyRefunds(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.RefundRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByUser(ctx, userID, limit, offset)
}
