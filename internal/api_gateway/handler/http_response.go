package handler

import (
	"net/http"

	"github.com/bank-reconciliation-engine/internal/api_gateway/middleware"
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *PageInfo   `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PageInfo describes one page of an offset-paginated list. Count is the number of items on
// this page; the stores do not report totals.
type PageInfo struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Count   int `json:"count"`
}

func respond(c *gin.Context, statusCode int, response *Response) {
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondWithData sends data in the envelope
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	respond(c, statusCode, &Response{Data: data})
}

// RespondWithError sends an error code and message in the envelope
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	respond(c, statusCode, &Response{Error: &ErrorInfo{Code: code, Message: message}})
}

// RespondPage sends one page of a list with its paging metadata
func RespondPage(c *gin.Context, data interface{}, page, perPage, count int) {
	respond(c, http.StatusOK, &Response{
		Data: data,
		Meta: &PageInfo{Page: page, PerPage: perPage, Count: count},
	})
}

func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondAccepted acknowledges work that continues asynchronously
func RespondAccepted(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusAccepted, data)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

func RespondConflict(c *gin.Context, message string) {
	RespondWithError(c, http.StatusConflict, "CONFLICT", message)
}

// RespondInternalError hides the cause; callers log it
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}
