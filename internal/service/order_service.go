package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/pkg/apperror"
	"github.com/ignatzorin/masterskaya-backend/internal/repository"
	"github.com/ignatzorin/masterskaya-backend/internal/validation"
)

// OrderRepository описывает взаимодействие сервиса с хранилищем заказов.
type OrderRepository interface {
	Create(ctx context.Context, order *models.ProductionOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.ProductionOrder, int, error)
	UpdateStatus(ctx context.Context, upd repository.StatusUpdate) (*models.ProductionOrder, error)
	CompleteAndRelease(ctx context.Context, orderID, actorID uuid.UUID, feeRate float64) (*models.ProductionOrder, *models.EscrowSplit, error)
	CancelAndRefund(ctx context.Context, orderID, actorID uuid.UUID, reason string) (*models.ProductionOrder, error)
}

// ListingReader описывает чтение объявлений при оформлении заказа.
type ListingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// TimelineReader описывает чтение хронологии заказа.
type TimelineReader interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]models.TimelineEvent, error)
}

// OrderReader описывает чтение заказов смежными сервисами для проверок доступа.
type OrderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error)
}

// OrderService содержит бизнес-логику жизненного цикла производственных заказов.
type OrderService struct {
	repo     OrderRepository
	listings ListingReader
	timeline TimelineReader
	feeRate  float64
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(repo OrderRepository, listings ListingReader, timeline TimelineReader, feeRate float64) *OrderService {
	return &OrderService{
		repo:     repo,
		listings: listings,
		timeline: timeline,
		feeRate:  feeRate,
	}
}

// PlaceOrderInput описывает входные данные оформления заказа.
type PlaceOrderInput struct {
	CustomerID            uuid.UUID
	ListingID             uuid.UUID
	Title                 string
	Requirements          *string
	Amount                float64
	ConsultationRequested bool
}

// PlaceOrder оформляет заказ по объявлению мастера и удерживает оплату.
// Сумма удержания фиксируется в момент создания, дальше ей распоряжается
// только движок: выплата мастеру или возвраты заказчику.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.ProductionOrder, error) {
	listing, err := s.listings.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, fmt.Errorf("order service: не найдено объявление: %w", err)
	}

	if !listing.IsActive {
		return nil, apperror.New(apperror.ErrCodeValidation, "объявление недоступно для заказа")
	}

	if listing.ProviderID == in.CustomerID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя оформить заказ на собственное объявление")
	}

	title := in.Title
	if title == "" {
		title = listing.Title
	}
	if err := validation.ValidateOrderTitle(title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if err := validation.ValidateRequirements(in.Requirements); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	// Для каталожных услуг сумма берётся из объявления,
	// для индивидуальных заказов допускается согласованная сумма.
	amount := in.Amount
	if amount == 0 || listing.ListingType == models.ListingTypeService {
		amount = listing.Price
	}
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	status := models.OrderStatusPendingOrderReceived
	if in.ConsultationRequested {
		status = models.OrderStatusPendingConsultation
	}

	order := &models.ProductionOrder{
		ListingID:        listing.ID,
		CustomerID:       in.CustomerID,
		ProviderID:       listing.ProviderID,
		Title:            title,
		Requirements:     in.Requirements,
		Status:           status,
		ProofingRequired: listing.ProofingRequired,
		EscrowAmount:     amount,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrder возвращает заказ, видимый его участникам и администраторам.
func (s *OrderService) GetOrder(ctx context.Context, orderID, viewerID uuid.UUID, viewerRole string) (*models.ProductionOrder, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !canViewOrder(order, viewerID, viewerRole) {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет доступа к этому заказу")
	}

	return order, nil
}

// ListMyOrders возвращает заказы пользователя как заказчика и как мастера.
func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.ProductionOrder, int, error) {
	if status != "" && !models.OrderStatus(status).IsValid() {
		return nil, 0, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный статус %q", status))
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByParticipant(ctx, userID, status, limit, offset)
}

// GetTimeline возвращает хронологию заказа от новых событий к старым.
func (s *OrderService) GetTimeline(ctx context.Context, orderID, viewerID uuid.UUID, viewerRole string, limit, offset int) ([]models.TimelineEvent, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !canViewOrder(order, viewerID, viewerRole) {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет доступа к этому заказу")
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.timeline.ListByOrder(ctx, orderID, limit, offset)
}

// CloseConsultation завершает консультацию и передаёт заказ на подтверждение мастеру.
func (s *OrderService) CloseConsultation(ctx context.Context, orderID, providerID uuid.UUID) (*models.ProductionOrder, error) {
	if _, err := s.providerOrder(ctx, orderID, providerID); err != nil {
		return nil, err
	}

	return s.repo.UpdateStatus(ctx, repository.StatusUpdate{
		OrderID:     orderID,
		ActorID:     providerID,
		ToStatus:    models.OrderStatusPendingOrderReceived,
		Description: "Консультация завершена, заказ ожидает подтверждения мастера",
	})
}

// ConfirmReceipt подтверждает, что мастер принял заказ в работу.
func (s *OrderService) ConfirmReceipt(ctx context.Context, orderID, providerID uuid.UUID) (*models.ProductionOrder, error) {
	if _, err := s.providerOrder(ctx, orderID, providerID); err != nil {
		return nil, err
	}

	return s.repo.UpdateStatus(ctx, repository.StatusUpdate{
		OrderID:     orderID,
		ActorID:     providerID,
		ToStatus:    models.OrderStatusOrderReceived,
		Description: "Мастер подтвердил получение заказа",
	})
}

// StartProduction переводит заказ в производство. Для заказов с согласованием
// макета переход закрыт, пока последняя версия макета не одобрена.
func (s *OrderService) StartProduction(ctx context.Context, orderID, providerID uuid.UUID) (*models.ProductionOrder, error) {
	order, err := s.providerOrder(ctx, orderID, providerID)
	if err != nil {
		return nil, err
	}

	policy := models.NewProofingPolicy(order.ProofingRequired)

	return s.repo.UpdateStatus(ctx, repository.StatusUpdate{
		OrderID:              orderID,
		ActorID:              providerID,
		ToStatus:             models.OrderStatusInProduction,
		Description:          "Заказ взят в производство",
		RequireApprovedProof: policy.RequiresApprovedProof(),
	})
}

// MarkReadyForDelivery отмечает заказ готовым к отправке.
func (s *OrderService) MarkReadyForDelivery(ctx context.Context, orderID, providerID uuid.UUID) (*models.ProductionOrder, error) {
	order, err := s.providerOrder(ctx, orderID, providerID)
	if err != nil {
		return nil, err
	}

	policy := models.NewProofingPolicy(order.ProofingRequired)

	return s.repo.UpdateStatus(ctx, repository.StatusUpdate{
		OrderID:              orderID,
		ActorID:              providerID,
		ToStatus:             models.OrderStatusReadyForDelivery,
		Description:          "Заказ готов к отправке",
		RequireApprovedProof: policy.RequiresApprovedProof(),
	})
}

// MarkShipped отмечает заказ отправленным с необязательным трек-номером.
func (s *OrderService) MarkShipped(ctx context.Context, orderID, providerID uuid.UUID, trackingNumber, carrier *string) (*models.ProductionOrder, error) {
	if _, err := s.providerOrder(ctx, orderID, providerID); err != nil {
		return nil, err
	}

	description := "Заказ отправлен"
	if trackingNumber != nil && *trackingNumber != "" {
		description = fmt.Sprintf("Заказ отправлен, трек-номер %s", *trackingNumber)
	}

	return s.repo.UpdateStatus(ctx, repository.StatusUpdate{
		OrderID:        orderID,
		ActorID:        providerID,
		ToStatus:       models.OrderStatusShipped,
		Description:    description,
		TrackingNumber: trackingNumber,
		Carrier:        carrier,
	})
}

// CompleteOrder подтверждает получение заказа и выплачивает удержанные средства
// мастеру за вычетом комиссии платформы. Статус и выплата меняются атомарно.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID, actorID uuid.UUID, actorRole string) (*models.ProductionOrder, *models.EscrowSplit, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	if order.CustomerID != actorID && actorRole != models.RoleAdmin {
		return nil, nil, apperror.New(apperror.ErrCodePermissionDenied, "подтвердить получение может только заказчик")
	}

	return s.repo.CompleteAndRelease(ctx, orderID, actorID, s.feeRate)
}

// CancelOrder отменяет заказ из любого нетерминального статуса и возвращает
// заказчику невозвращённый остаток удержанных средств.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, actorID uuid.UUID, actorRole, reason string) (*models.ProductionOrder, error) {
	if err := validation.ValidateReason(reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.CustomerID != actorID && order.ProviderID != actorID && actorRole != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет прав на отмену этого заказа")
	}

	return s.repo.CancelAndRefund(ctx, orderID, actorID, reason)
}

// providerOrder загружает заказ и проверяет, что действие выполняет его мастер.
func (s *OrderService) providerOrder(ctx context.Context, orderID, providerID uuid.UUID) (*models.ProductionOrder, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.ProviderID != providerID {
		return nil, apperror.New(apperror.ErrCodePermissionDenied, "у вас нет прав на управление этим заказом")
	}

	return order, nil
}

func canViewOrder(order *models.ProductionOrder, viewerID uuid.UUID, viewerRole string) bool {
	return order.CustomerID == viewerID || order.ProviderID == viewerID || viewerRole == models.RoleAdmin
}
