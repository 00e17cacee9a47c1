package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
	"github.com/polkiloo/pdfshop/internal/server/http/dto"
	"github.com/polkiloo/pdfshop/internal/server/http/middleware"
)

const checkoutMessage = "Redirecting to payment"

// PaymentHandler serves checkout, gateway callbacks and downloads.
type PaymentHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

// NewPaymentHandler creates PaymentHandler instance.
func NewPaymentHandler(facade PaymentFacade, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{facade: facade, logger: logger}
}

// Checkout handles POST /api/payment/checkout.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "bookId and email are required"})
		return
	}

	result, err := h.facade.Checkout(c.Request.Context(), req.BookID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid email or book id"})
		case errors.Is(err, domainErrors.ErrNotFound), errors.Is(err, domainErrors.ErrUnavailable):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Book not found"})
		case errors.Is(err, domainErrors.ErrNotForSale):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "Book is not available for purchase"})
		case errors.Is(err, domainErrors.ErrAssetMissing):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "Book file is not available yet"})
		default:
			h.internalError(c, "checkout failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{
		RedirectURL: result.RedirectURL,
		OrderID:     result.OrderID,
		Message:     checkoutMessage,
	})
}

// Result handles GET|POST /api/payment/result. The gateway expects a bare
// text reply and retries anything that is not OK{InvId}.
func (h *PaymentHandler) Result(c *gin.Context) {
	params, err := requestParams(c)
	if err != nil {
		middleware.RecordPaymentCallback("invalid_input")
		c.String(http.StatusBadRequest, "ERROR: Malformed request")
		return
	}

	invoiceID, err := h.facade.PaymentResult(c.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidInput):
			middleware.RecordPaymentCallback("invalid_input")
			c.String(http.StatusBadRequest, "ERROR: Missing parameters")
		case errors.Is(err, domainErrors.ErrInvalidSignature):
			middleware.RecordPaymentCallback("invalid_signature")
			c.String(http.StatusBadRequest, "ERROR: Invalid signature")
		case errors.Is(err, domainErrors.ErrNotFound):
			middleware.RecordPaymentCallback("not_found")
			c.String(http.StatusNotFound, "ERROR: Order not found")
		case errors.Is(err, domainErrors.ErrAmountMismatch):
			middleware.RecordPaymentCallback("amount_mismatch")
			c.String(http.StatusBadRequest, "ERROR: Amount mismatch")
		default:
			middleware.RecordPaymentCallback("error")
			h.logger.ErrorContext(c.Request.Context(), "result callback failed", slog.String("error", err.Error()))
			c.String(http.StatusInternalServerError, "ERROR: Internal error")
		}
		return
	}

	middleware.RecordPaymentCallback("ok")
	c.String(http.StatusOK, "OK"+strconv.FormatInt(invoiceID, 10))
}

// Success handles GET /api/payment/success.
func (h *PaymentHandler) Success(c *gin.Context) {
	params, _ := requestParams(c)
	c.Redirect(http.StatusFound, h.facade.PaymentSuccess(c.Request.Context(), params))
}

// Fail handles GET /api/payment/fail.
func (h *PaymentHandler) Fail(c *gin.Context) {
	params, _ := requestParams(c)
	c.Redirect(http.StatusFound, h.facade.PaymentFail(c.Request.Context(), params))
}

// Download handles GET /api/payment/download.
func (h *PaymentHandler) Download(c *gin.Context) {
	link, err := h.facade.Download(c.Request.Context(), c.Query("orderId"), c.Query("token"))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "orderId and token are required"})
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Order or file not found"})
		case errors.Is(err, domainErrors.ErrForbidden):
			c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "Invalid download token"})
		case errors.Is(err, domainErrors.ErrExpired):
			c.JSON(http.StatusGone, dto.ErrorResponse{Error: "Download link has expired"})
		default:
			h.internalError(c, "download failed", err)
		}
		return
	}

	middleware.RecordDownload()
	c.Redirect(http.StatusFound, link)
}

func (h *PaymentHandler) internalError(c *gin.Context, msg string, err error) {
	h.logger.ErrorContext(c.Request.Context(), msg, slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal error"})
}

// requestParams merges query and form values, first value wins.
func requestParams(c *gin.Context) (map[string]string, error) {
	if err := c.Request.ParseForm(); err != nil {
		return map[string]string{}, err
	}
	params := make(map[string]string, len(c.Request.Form))
	for key, values := range c.Request.Form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params, nil
}
