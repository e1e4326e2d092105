package handler

import (
	"errors"
	"net/http"

	"github.com/blues/smartfunding/internal/funding"
	"github.com/blues/smartfunding/internal/ledger"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// FundingErrorResponse 按错误类型选择状态码
func FundingErrorResponse(c *gin.Context, prefix string, err error) {
	ErrorResponse(c, statusFor(err), prefix+": "+err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, funding.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, funding.ErrInvalidParameter),
		errors.Is(err, funding.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, funding.ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, funding.ErrAlreadyInitialized),
		errors.Is(err, funding.ErrAlreadyFinalized),
		errors.Is(err, funding.ErrNotFundingStage),
		errors.Is(err, funding.ErrPaused),
		errors.Is(err, funding.ErrNoReward),
		errors.Is(err, funding.ErrAlreadyClaimed),
		errors.Is(err, funding.ErrNoInvestment),
		errors.Is(err, funding.ErrAlreadyWithdrawn),
		errors.Is(err, funding.ErrNotSucceeded),
		errors.Is(err, funding.ErrNothingToWithdraw):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
