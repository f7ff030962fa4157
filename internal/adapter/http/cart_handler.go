package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loayeid/shophub/internal/adapter/http/middleware"
	"github.com/loayeid/shophub/internal/entity"
	"github.com/loayeid/shophub/internal/usecase"
)

type CartHandler struct {
	carts usecase.CartStore
}

func NewCartHandler(carts usecase.CartStore) *CartHandler {
	return &CartHandler{carts: carts}
}

// sessionID resolves the cart owner: the authenticated user's id, or the
// guest session header.
func sessionID(c *gin.Context) string {
	if p, ok := middleware.Principal(c); ok {
		return p.ID
	}
	return c.GetHeader("X-Session-Id")
}

type cartResp struct {
	Items  []entity.CartLine `json:"items"`
	Totals entity.Totals     `json:"totals"`
}

func (h *CartHandler) Get(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_session"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	cart, err := h.carts.Get(ctx, sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, cartResp{Items: cart.Lines, Totals: entity.ComputeTotals(cart.Lines)})
}

type putCartReq struct {
	Items []entity.CartLine `json:"items" binding:"required"`
}

func (h *CartHandler) Put(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_session"})
		return
	}

	var req putCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	cart := &entity.Cart{SessionID: sid, Lines: req.Items}
	if err := cart.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.carts.Put(ctx, cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, cartResp{Items: cart.Lines, Totals: entity.ComputeTotals(cart.Lines)})
}

func (h *CartHandler) Clear(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_session"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.carts.Clear(ctx, sid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
