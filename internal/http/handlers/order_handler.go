package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/masterskaya-backend/internal/dto"
	"github.com/ignatzorin/masterskaya-backend/internal/http/handlers/common"
	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/service"
	"github.com/ignatzorin/masterskaya-backend/internal/ws"
)

type OrderHandler struct {
	orders *service.OrderService
	hub    *ws.Hub
}

// NewOrderHandler создаёт новый хэндлер.
func NewOrderHandler(orders *service.OrderService, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{orders: orders, hub: hub}
}

// PlaceOrder обрабатывает POST /orders.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
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
	if role != models.RoleCustomer && role != models.RoleAdmin {
		common.RespondForbidden(c, "оформлять заказы могут только заказчики")
		return
	}

	var req dto.PlaceOrderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listingID, err := req.ParseListingID()
	if err != nil {
		common.RespondBadRequest(c, "listing_id содержит некорректный UUID")
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		CustomerID:            userID,
		ListingID:             listingID,
		Title:                 req.Title,
		Requirements:          req.Requirements,
		Amount:                req.Amount,
		ConsultationRequested: req.ConsultationRequested,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}

	timeline, errTl := h.orders.GetTimeline(c.Request.Context(), order.ID, userID, role, 0, 0)
	if errTl != nil {
		timeline = []models.TimelineEvent{}
	}

	if h.hub != nil {
		_ = h.hub.BroadcastToUser(order.ProviderID, ws.EventOrderCreated, gin.H{
			"order":   order,
			"message": "Новый заказ по вашему объявлению",
		})
	}

	c.JSON(http.StatusCreated, dto.NewOrderResponse(order, timeline))
}

// GetOrder обрабатывает GET /orders/:id.
func (h *OrderHandler) GetOrder(c *gin.Context) {
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

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID, userID, role)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	timeline, errTl := h.orders.GetTimeline(c.Request.Context(), orderID, userID, role, 0, 0)
	if errTl != nil {
		timeline = []models.TimelineEvent{}
	}

	c.JSON(http.StatusOK, dto.NewOrderResponse(order, timeline))
}

// ListMyOrders обрабатывает GET /orders/my - возвращает заказы текущего пользователя.
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	orders, total, err := h.orders.ListMyOrders(c.Request.Context(), userID, c.Query("status"), limit, offset)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if orders == nil {
		orders = []models.ProductionOrder{}
	}

	c.JSON(http.StatusOK, dto.PaginatedOrdersResponse{
		Data: orders,
		Pagination: dto.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(orders) < total,
		},
	})
}

// GetTimeline обрабатывает GET /orders/:id/timeline.
func (h *OrderHandler) GetTimeline(c *gin.Context) {
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

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	events, err := h.orders.GetTimeline(c.Request.Context(), orderID, userID, role, limit, offset)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if events == nil {
		events = []models.TimelineEvent{}
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}

// CloseConsultation обрабатывает POST /orders/:id/close-consultation.
func (h *OrderHandler) CloseConsultation(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.CloseConsultation(c.Request.Context(), orderID, userID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.notifyStatusChanged(userID, order, "Консультация по заказу завершена")
	c.JSON(http.StatusOK, order)
}

// ConfirmReceipt обрабатывает POST /orders/:id/confirm-receipt.
func (h *OrderHandler) ConfirmReceipt(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.ConfirmReceipt(c.Request.Context(), orderID, userID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.notifyStatusChanged(userID, order, "Мастер подтвердил получение заказа")
	c.JSON(http.StatusOK, order)
}

// StartProduction обрабатывает POST /orders/:id/start-production.
func (h *OrderHandler) StartProduction(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.StartProduction(c.Request.Context(), orderID, userID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.notifyStatusChanged(userID, order, "Заказ взят в производство")
	c.JSON(http.StatusOK, order)
}

// MarkReadyForDelivery обрабатывает POST /orders/:id/ready-for-delivery.
func (h *OrderHandler) MarkReadyForDelivery(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.MarkReadyForDelivery(c.Request.Context(), orderID, userID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.notifyStatusChanged(userID, order, "Заказ готов к отправке")
	c.JSON(http.StatusOK, order)
}

// MarkShipped обрабатывает POST /orders/:id/ship.
func (h *OrderHandler) MarkShipped(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ShipOrderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.MarkShipped(c.Request.Context(), orderID, userID, req.TrackingNumber, req.Carrier)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.notifyStatusChanged(userID, order, "Заказ отправлен")
	c.JSON(http.StatusOK, order)
}

// CompleteOrder обрабатывает POST /orders/:id/complete.
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
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

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, split, err := h.orders.CompleteOrder(c.Request.Context(), orderID, userID, role)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.notifyStatusChanged(userID, order, "Заказ завершён, средства выплачены мастеру")
	c.JSON(http.StatusOK, dto.CompleteOrderResponse{Order: order, EscrowSplit: split})
}

// CancelOrder обрабатывает POST /orders/:id/cancel.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
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

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CancelOrderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), orderID, userID, role, req.Reason)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	h.notifyStatusChanged(userID, order, "Заказ отменён")
	c.JSON(http.StatusOK, order)
}

// notifyStatusChanged шлёт второму участнику заказа событие о смене статуса.
func (h *OrderHandler) notifyStatusChanged(actorID uuid.UUID, order *models.ProductionOrder, message string) {
	if h.hub == nil {
		return
	}

	payload := gin.H{
		"order_id": order.ID,
		"status":   order.Status,
		"message":  message,
	}
	if order.CustomerID == actorID {
		_ = h.hub.BroadcastToUser(order.ProviderID, ws.EventOrderStatusChanged, payload)
	} else {
		_ = h.hub.BroadcastToUser(order.CustomerID, ws.EventOrderStatusChanged, payload)
	}
}
