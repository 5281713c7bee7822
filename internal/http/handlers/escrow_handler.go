package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/masterskaya-backend/internal/http/handlers/common"
	"github.com/ignatzorin/masterskaya-backend/internal/models"
	"github.com/ignatzorin/masterskaya-backend/internal/service"
)

type EscrowHandler struct {
	escrow *service.EscrowService
}

// NewEscrowHandler создаёт новый хэндлер.
func NewEscrowHandler(escrow *service.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrow: escrow}
}

// GetEscrowState обрабатывает GET /orders/:id/escrow.
func (h *EscrowHandler) GetEscrowState(c *gin.Context) {
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

	state, err := h.escrow.GetState(c.Request.Context(), orderID, userID, role)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// ReleaseEscrow обрабатывает POST /orders/:id/escrow/release.
// Ручной запуск выплаты для разбора инцидентов: основная выплата происходит
// при подтверждении доставки, повторный запуск возвращает сохранённый расчёт.
func (h *EscrowHandler) ReleaseEscrow(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	if role != models.RoleAdmin {
		common.RespondForbidden(c, "запускать выплату может только администратор")
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	split, err := h.escrow.Release(c.Request.Context(), orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "выплата по заказу проведена",
		"escrow_split": split,
	})
}
