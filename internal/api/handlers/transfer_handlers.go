package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/porter-wallet/porter_service/internal/domain/entities"
	"github.com/porter-wallet/porter_service/internal/domain/services/transfer"
	"github.com/porter-wallet/porter_service/pkg/logger"
)

// TransferHandlers handles transfer lifecycle endpoints
type TransferHandlers struct {
	transferService *transfer.Service
	validator       *validator.Validate
	logger          *logger.Logger
}

// NewTransferHandlers creates a new transfer handlers instance
func NewTransferHandlers(transferService *transfer.Service, logger *logger.Logger) *TransferHandlers {
	return &TransferHandlers{
		transferService: transferService,
		validator:       validator.New(),
		logger:          logger,
	}
}

// PrepareTransferRequest is the payload for POST /api/v1/transfers/prepare
type PrepareTransferRequest struct {
	FromAddress string `json:"from_address" validate:"required"`
	ToAddress   string `json:"to_address" validate:"required"`
	AssetID     string `json:"asset_id"`
	Amount      string `json:"amount" validate:"required"`
}

// PrepareTransfer handles POST /api/v1/transfers/prepare
func (h *TransferHandlers) PrepareTransfer(c *gin.Context) {
	ctx := c.Request.Context()

	var req PrepareTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		SendBadRequest(c, ErrCodeInvalidRequest, "Invalid request body",
			map[string]interface{}{"error": err.Error()})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("Validation failed", "error", err)
		SendBadRequest(c, ErrCodeValidationError, "Request validation failed",
			map[string]interface{}{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		SendBadRequest(c, ErrCodeValidationError, "Amount is not a valid decimal",
			map[string]interface{}{"amount": req.Amount})
		return
	}

	resp, err := h.transferService.PrepareTransfer(ctx, &entities.TransferRequest{
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		AssetID:     req.AssetID,
		Amount:      amount,
	})
	if err != nil {
		SendAppError(c, err)
		return
	}

	SendCreated(c, resp)
}

// SubmitTransfer handles POST /api/v1/transfers/submit
func (h *TransferHandlers) SubmitTransfer(c *gin.Context) {
	ctx := c.Request.Context()

	var req entities.SubmitTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		SendBadRequest(c, ErrCodeInvalidRequest, "Invalid request body",
			map[string]interface{}{"error": err.Error()})
		return
	}

	resp, err := h.transferService.SubmitTransfer(ctx, &req)
	if err != nil {
		SendAppError(c, err)
		return
	}

	SendSuccess(c, resp)
}

// GetTrade handles GET /api/v1/trades/:id
func (h *TransferHandlers) GetTrade(c *gin.Context) {
	ctx := c.Request.Context()

	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid trade ID", "trade_id", idStr, "error", err)
		SendBadRequest(c, ErrCodeInvalidRequest, "Invalid trade ID format",
			map[string]interface{}{"trade_id": idStr})
		return
	}

	trade, err := h.transferService.GetTrade(ctx, id)
	if err != nil {
		SendAppError(c, err)
		return
	}

	SendSuccess(c, trade)
}

// ListTrades handles GET /api/v1/trades
func (h *TransferHandlers) ListTrades(c *gin.Context) {
	ctx := c.Request.Context()

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var status *entities.TradeStatus
	if s := c.Query("status"); s != "" {
		st := entities.TradeStatus(s)
		status = &st
	}

	trades, err := h.transferService.ListTrades(ctx, status, limit, offset)
	if err != nil {
		SendAppError(c, err)
		return
	}

	SendSuccess(c, entities.TradesResponse{
		Trades: trades,
		Limit:  limit,
		Offset: offset,
	})
}
