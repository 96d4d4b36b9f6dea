package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/porter-wallet/porter_service/internal/domain/services/balance"
	"github.com/porter-wallet/porter_service/pkg/logger"
)

// BalanceHandlers handles balance query endpoints
type BalanceHandlers struct {
	balanceService *balance.Service
	logger         *logger.Logger
}

// NewBalanceHandlers creates a new balance handlers instance
func NewBalanceHandlers(balanceService *balance.Service, logger *logger.Logger) *BalanceHandlers {
	return &BalanceHandlers{
		balanceService: balanceService,
		logger:         logger,
	}
}

// GetBalances handles GET /api/v1/balances/:address
func (h *BalanceHandlers) GetBalances(c *gin.Context) {
	ctx := c.Request.Context()

	address := c.Param("address")
	if address == "" {
		SendBadRequest(c, ErrCodeInvalidRequest, "Address is required")
		return
	}

	resp, err := h.balanceService.GetBalances(ctx, address)
	if err != nil {
		SendAppError(c, err)
		return
	}

	SendSuccess(c, resp)
}
