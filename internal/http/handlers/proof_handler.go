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

type ProofHandler struct {
	proofs *service.ProofService
	orders *service.OrderService
	hub    *ws.Hub
}

// NewProofHandler создаёт новый хэндлер.
func NewProofHandler(proofs *service.ProofService, orders *service.OrderService, hub *ws.Hub) *ProofHandler {
	return &ProofHandler{proofs: proofs, orders: orders, hub: hub}
}

// SubmitProof обрабатывает POST /orders/:id/proofs.
func (h *ProofHandler) SubmitProof(c *gin.Context) {
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

	var req dto.SubmitProofRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proof, err := h.proofs.SubmitProof(c.Request.Context(), service.SubmitProofInput{
		OrderID:    orderID,
		ProviderID: userID,
		Comment:    req.Comment,
		FileKeys:   req.FileKeys,
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
				_ = h.hub.BroadcastToUser(order.CustomerID, ws.EventProofSubmitted, gin.H{
					"proof":   proof,
					"message": "Мастер отправил макет на согласование",
				})
			}
		}
	}

	c.JSON(http.StatusCreated, proof)
}

// ResolveProof обрабатывает POST /proofs/:id/resolve.
func (h *ProofHandler) ResolveProof(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	proofID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ResolveProofRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proof, err := h.proofs.ResolveProof(c.Request.Context(), proofID, userID, req.Decision, req.Comment)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	if h.hub != nil {
		_ = h.hub.BroadcastToUser(proof.ProviderID, ws.EventProofResolved, gin.H{
			"proof":    proof,
			"decision": req.Decision,
			"message":  "Заказчик вынес решение по макету",
		})
	}

	c.JSON(http.StatusOK, proof)
}

// GetProof обрабатывает GET /proofs/:id.
func (h *ProofHandler) GetProof(c *gin.Context) {
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

	proofID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	proof, err := h.proofs.GetProof(c.Request.Context(), proofID, userID, role)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, proof)
}

// ListProofs обрабатывает GET /orders/:id/proofs - все версии макетов заказа.
func (h *ProofHandler) ListProofs(c *gin.Context) {
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

	proofs, err := h.proofs.ListProofs(c.Request.Context(), orderID, userID, role)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if proofs == nil {
		proofs = []models.ProofSubmission{}
	}

	c.JSON(http.StatusOK, gin.H{"data": proofs})
}
