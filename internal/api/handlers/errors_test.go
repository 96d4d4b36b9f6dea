package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porter-wallet/porter_service/internal/domain/entities"
	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
)

func recordAppError(err error) (*httptest.ResponseRecorder, entities.ErrorResponse) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	SendAppError(c, err)

	var body entities.ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestSendAppErrorMapsClassifiedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			"validation",
			apperrors.NewValidation(apperrors.CodeInvalidAddress, "bad address"),
			http.StatusBadRequest,
			apperrors.CodeInvalidAddress,
		},
		{
			"not found",
			apperrors.NewNotFound(apperrors.CodeTradeNotFound, "trade not found"),
			http.StatusNotFound,
			apperrors.CodeTradeNotFound,
		},
		{
			"network",
			apperrors.NewNetwork("rpc unreachable", assert.AnError),
			http.StatusBadGateway,
			apperrors.CodeNetworkFailure,
		},
		{
			"submission",
			apperrors.NewSubmission("simulation failed", nil),
			http.StatusUnprocessableEntity,
			apperrors.CodeSubmissionRejected,
		},
		{
			"conflict",
			apperrors.NewConflict(apperrors.CodeTradeNotPending, "already submitted"),
			http.StatusConflict,
			apperrors.CodeTradeNotPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := recordAppError(tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestSendAppErrorHidesInternalDetail(t *testing.T) {
	w, body := recordAppError(apperrors.NewInternal("database exploded: password=hunter2", assert.AnError))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.CodeInternalError, body.Code)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestSendAppErrorUnclassified(t *testing.T) {
	w, body := recordAppError(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ErrCodeInternalError, body.Code)
}
