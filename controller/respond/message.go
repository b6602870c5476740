package respond

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/varity-labs/varity-app-store/service/apperrors"
)

// Message unified response structure
type Message struct {
	Code           int         `json:"code"`
	Message        string      `json:"message"`
	ProcessingTime int64       `json:"processingTime"`
	Data           interface{} `json:"data"`
}

// Response response structure (for Swagger)
// @Description Unified API response structure
type Response struct {
	Code           int         `json:"code" example:"0" description:"Response code: 0=success, 40000=param error, 40100=unauthorized, 40200=payment failed, 40400=not found, 40900=conflict, 41200=precondition failed, 42900=rate limited, 50000=server error"`
	Message        string      `json:"message" example:"success" description:"Response message"`
	ProcessingTime int64       `json:"processingTime" example:"123" description:"Request processing time (milliseconds)"`
	Data           interface{} `json:"data" description:"Response data"`
}

// HTTP status code constants
const (
	CodeSuccess       = 0     // Success
	CodeInvalidParam  = 40000 // Parameter error
	CodeUnauthorized  = 40100 // Caller lacks the role or ownership
	CodePaymentFailed = 40200 // Token transfer failed
	CodeNotFound      = 40400 // Resource not found
	CodeConflict      = 40900 // Duplicate effect, e.g. already approved or purchased
	CodePrecondition  = 41200 // State precondition, e.g. not for sale or not approved
	CodeRateLimited   = 42900 // Too many settlement requests
	CodeServerError   = 50000 // Server error
)

// Success message constants
const (
	MsgSuccess = "success"
	MsgFailed  = "failed"
)

// Success return success response
func Success(c *gin.Context, data interface{}) {
	SuccessWithMsg(c, MsgSuccess, data)
}

// SuccessWithMsg return success response (custom message)
func SuccessWithMsg(c *gin.Context, message string, data interface{}) {
	processingTime := getProcessingTime(c)
	c.JSON(200, Message{
		Code:           CodeSuccess,
		Message:        message,
		ProcessingTime: processingTime,
		Data:           data,
	})
}

// Error return error response
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData return error response (with data)
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	processingTime := getProcessingTime(c)
	c.JSON(200, Message{
		Code:           code,
		Message:        message,
		ProcessingTime: processingTime,
		Data:           data,
	})
}

// InvalidParam return parameter error response
func InvalidParam(c *gin.Context, message string) {
	Error(c, CodeInvalidParam, message)
}

// NotFound return resource not found response
func NotFound(c *gin.Context, message string) {
	Error(c, CodeNotFound, message)
}

// ErrorData error kind for clients that branch on it
type ErrorData struct {
	Kind string `json:"kind" example:"invalid_enum"`
}

var errorKinds = []struct {
	err  error
	code int
	kind string
}{
	{apperrors.ErrUnauthorized, CodeUnauthorized, "unauthorized"},
	{apperrors.ErrNotFound, CodeNotFound, "not_found"},
	{apperrors.ErrInvalidEnum, CodeInvalidParam, "invalid_enum"},
	{apperrors.ErrInvalidInput, CodeInvalidParam, "invalid_input"},
	{apperrors.ErrInvalidAppID, CodeInvalidParam, "invalid_app_id"},
	{apperrors.ErrInvalidPrice, CodeInvalidParam, "invalid_price"},
	{apperrors.ErrInvalidPeriod, CodeInvalidParam, "invalid_period"},
	{apperrors.ErrInsufficientPayment, CodeInvalidParam, "insufficient_payment"},
	{apperrors.ErrOutOfBounds, CodeInvalidParam, "out_of_bounds"},
	{apperrors.ErrOverflow, CodeInvalidParam, "overflow"},
	{apperrors.ErrAlreadyApproved, CodeConflict, "already_approved"},
	{apperrors.ErrAlreadyPurchased, CodeConflict, "already_purchased"},
	{apperrors.ErrNotForSale, CodePrecondition, "not_for_sale"},
	{apperrors.ErrNotApproved, CodePrecondition, "not_approved"},
	{apperrors.ErrTransferFailed, CodePaymentFailed, "transfer_failed"},
	{context.Canceled, CodeServerError, "canceled"},
	{context.DeadlineExceeded, CodeServerError, "timeout"},
}

// ErrorCode maps a service error to its response code and kind
func ErrorCode(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.code, k.kind
		}
	}
	return CodeServerError, "internal"
}

// FromError return the response matching a service error
func FromError(c *gin.Context, err error) {
	code, kind := ErrorCode(err)
	ErrorWithData(c, code, err.Error(), ErrorData{Kind: kind})
}

// ServerError return server error response
func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}

// getProcessingTime calculate request processing time (milliseconds)
func getProcessingTime(c *gin.Context) int64 {
	if startTime, exists := c.Get("start_time"); exists {
		if t, ok := startTime.(time.Time); ok {
			return time.Since(t).Milliseconds()
		}
	}
	return 0
}

// TimingMiddleware timing middleware
func TimingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("start_time", time.Now())
		c.Next()
	}
}
