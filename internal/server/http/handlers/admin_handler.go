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

const maxUploadBytes = 200 << 20

// AdminHandler serves the back-office API.
type AdminHandler struct {
	facade AdminFacade
	logger *slog.Logger
}

// NewAdminHandler creates AdminHandler instance.
func NewAdminHandler(facade AdminFacade, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{facade: facade, logger: logger}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := h.facade.Login(c.Request.Context(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidCredentials):
			c.Status(http.StatusUnauthorized)
		default:
			h.internalError(c, "admin login failed", err)
		}
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token})
}

// Orders handles GET /api/admin/orders.
func (h *AdminHandler) Orders(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	orders, err := h.facade.RecentOrders(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, "list orders failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrders(orders))
}

// Order handles GET /api/admin/orders/:id.
func (h *AdminHandler) Order(c *gin.Context) {
	order, events, err := h.facade.OrderTrail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Order not found"})
			return
		}
		h.internalError(c, "load order trail failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderTrail(*order, events))
}

// GatewayState handles GET /api/admin/orders/:id/gateway-state.
func (h *AdminHandler) GatewayState(c *gin.Context) {
	order, state, err := h.facade.GatewayState(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Order not found"})
			return
		}
		h.logger.WarnContext(c.Request.Context(), "gateway state query failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "Payment gateway is unavailable"})
		return
	}
	c.JSON(http.StatusOK, dto.NewGatewayState(*order, *state))
}

// SaveBook handles PUT /api/admin/books/:id.
func (h *AdminHandler) SaveBook(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "currency is required and pdfPrice must be a number"})
		return
	}

	book, err := h.facade.SaveBook(c.Request.Context(), c.Param("id"), req.Update())
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		h.internalError(c, "save book failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBook(*book))
}

// UploadPDF handles POST /api/admin/books/:id/pdf.
func (h *AdminHandler) UploadPDF(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "multipart field \"file\" is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		h.internalError(c, "open upload failed", err)
		return
	}
	defer file.Close()

	ref, err := h.facade.AttachPDF(c.Request.Context(), c.Param("id"), header.Filename, file)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Book not found"})
			return
		}
		h.internalError(c, "attach pdf failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.UploadResponse{Ref: ref})
}

func (h *AdminHandler) internalError(c *gin.Context, msg string, err error) {
	h.logger.ErrorContext(c.Request.Context(), msg, slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal error"})
}
