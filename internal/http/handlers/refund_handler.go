package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/masterskaya-backend/internal/dto"
	"github.com/ignatzorin/masterskaya-backend/internal/http/handlers/common"
	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/service"
	"github.com/ignatzorin/masterskaya-backend/internal/ws"
)

type RefundHandler struct {
	refunds *service.RefundService
	orders  *service.OrderService
	hub     *ws.Hub
}

// NewRefundHandler создаёт новый хэндлер.
func NewRefundHandler(refunds *service.RefundService, orders *service.OrderService, hub *ws.Hub) *RefundHandler {
	return &RefundHandler{refunds: refunds, orders: orders, hub: hub}
}

// RequestRefund обрабатывает POST /orders/:id/refunds.
func (h *RefundHandler) RequestRefund(c *gin.Context) {
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

	var req dto.RequestRefundRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	refund, err := h.refunds.RequestRefund(c.Request.Context(), service.RequestRefundInput{
		OrderID:    orderID,
		CustomerID: userID,
		Amount:     req.Amount,
		Reason:     req.Reason,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}

	if h.hub != nil {
		role, errRole := common.CurrentUserRole(c)
		if errRole == nil {
			order, errOrder := h.orders.GetOrder(c.Request.Context(), orderID, userID, role)
			if errOrder == nil {
				_ = h.hub.BroadcastToUser(order.ProviderID, ws.EventRefundRequested, gin.H{
					"refund":  refund,
					"message": "Заказчик запросил возврат средств",
				})
			}
		}
	}

	c.JSON(http.StatusCreated, refund)
}

// RespondToRefund обрабатывает POST /refunds/:id/respond.
func (h *RefundHandler) RespondToRefund(c *gin.Context) {
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

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RespondRefundRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	refund, err := h.refunds.RespondToRefund(c.Request.Context(), requestID, userID, role, req.Decision, req.Response)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	if h.hub != nil {
		_ = h.hub.BroadcastToUser(refund.CustomerID, ws.EventRefundResolved, gin.H{
			"refund":   refund,
			"decision": req.Decision,
			"message":  "По вашему запросу на возврат принято решение",
		})
	}

	c.JSON(http.StatusOK, refund)
}

// GetRefund обрабатывает GET /refunds/:id.
func (h *RefundHandler) GetRefund(c *gin.Context) {
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

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	refund, err := h.refunds.GetRefund(c.Request.Context(), requestID, userID, role)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, refund)
}

// ListRefunds обрабатывает GET /orders/:id/refunds - запросы на возврат по заказу.
func (h *RefundHandler) ListRefunds(c *gin.Context) {
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

	refunds, err := h.refunds.ListRefunds(c.Request.Context(), orderID, userID, role)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if refunds == nil {
		refunds = []models.RefundRequest{}
	}

	c.JSON(http.StatusOK, gin.H{"data": refunds})
}

// ListMyRefunds обрабатывает GET /refunds/my - запросы текущего заказчика.
func (h *RefundHandler) ListMyRefunds(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	refunds, err := h.refunds.ListMyRefunds(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if refunds == nil {
		refunds = []models.RefundRequest{}
	}

	c.JSON(http.StatusOK, gin.H{"data": refunds})
}
