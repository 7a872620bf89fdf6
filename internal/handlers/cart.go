package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motohub/motohub-cart-service/internal/metrics"
	"github.com/motohub/motohub-cart-service/internal/models"
	"github.com/motohub/motohub-cart-service/internal/pricing"
	"github.com/motohub/motohub-cart-service/internal/request"
)

// GetCatalog handles GET /api/v1/catalog
func (h *Handlers) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"packages": h.catalog.Packages()})
}

// GetCoupons handles GET /api/v1/coupons
func (h *Handlers) GetCoupons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"coupons": pricing.Coupons()})
}

// GetCart handles GET /api/v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	engine, sessionID, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":             engine.State(),
		"pricing":          engine.Pricing(),
		"submission_state": h.builder.SessionState(sessionID),
	})
}

// AddCartItem handles POST /api/v1/cart/items
func (h *Handlers) AddCartItem(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	var req struct {
		ServiceID string `json:"service_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := engine.AddItem(c.Request.Context(), req.ServiceID); err != nil {
		handleError(c, err)
		return
	}

	metrics.CartMutationsTotal.WithLabelValues("add_item").Inc()
	c.JSON(http.StatusOK, gin.H{"cart": engine.State()})
}

// RemoveCartItem handles DELETE /api/v1/cart/items/:id
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	if err := engine.RemoveItem(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	metrics.CartMutationsTotal.WithLabelValues("remove_item").Inc()
	c.JSON(http.StatusOK, gin.H{"cart": engine.State()})
}

// AdjustCartItem handles PATCH /api/v1/cart/items/:id
func (h *Handlers) AdjustCartItem(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	var req struct {
		Delta int `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := engine.AdjustQuantity(c.Request.Context(), c.Param("id"), req.Delta); err != nil {
		handleError(c, err)
		return
	}

	metrics.CartMutationsTotal.WithLabelValues("adjust_quantity").Inc()
	c.JSON(http.StatusOK, gin.H{"cart": engine.State()})
}

// SelectAddress handles PUT /api/v1/cart/address
func (h *Handlers) SelectAddress(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	var req struct {
		AddressID string `json:"address_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := engine.SelectAddress(c.Request.Context(), req.AddressID); err != nil {
		handleError(c, err)
		return
	}

	metrics.CartMutationsTotal.WithLabelValues("select_address").Inc()
	c.JSON(http.StatusOK, gin.H{"cart": engine.State()})
}

// SelectSlot handles PUT /api/v1/cart/slot
func (h *Handlers) SelectSlot(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	var req struct {
		SlotID string `json:"slot_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := engine.SelectSlot(c.Request.Context(), req.SlotID); err != nil {
		handleError(c, err)
		return
	}

	metrics.CartMutationsTotal.WithLabelValues("select_slot").Inc()
	c.JSON(http.StatusOK, gin.H{"cart": engine.State()})
}

// SelectCoupon handles PUT /api/v1/cart/coupon
func (h *Handlers) SelectCoupon(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	var req struct {
		CouponCode string `json:"coupon_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := engine.SelectCoupon(c.Request.Context(), req.CouponCode); err != nil {
		handleError(c, err)
		return
	}

	metrics.CartMutationsTotal.WithLabelValues("select_coupon").Inc()
	c.JSON(http.StatusOK, gin.H{
		"cart":    engine.State(),
		"pricing": engine.Pricing(),
	})
}

// SelectProviders handles PUT /api/v1/cart/providers
func (h *Handlers) SelectProviders(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	var req struct {
		ProviderIDs []string `json:"provider_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := engine.SelectProviders(c.Request.Context(), req.ProviderIDs); err != nil {
		handleError(c, err)
		return
	}

	metrics.CartMutationsTotal.WithLabelValues("select_providers").Inc()
	c.JSON(http.StatusOK, gin.H{"cart": engine.State()})
}

// SetNote handles PUT /api/v1/cart/note
func (h *Handlers) SetNote(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := engine.SetNote(c.Request.Context(), req.Note); err != nil {
		handleError(c, err)
		return
	}

	metrics.CartMutationsTotal.WithLabelValues("set_note").Inc()
	c.JSON(http.StatusOK, gin.H{"cart": engine.State()})
}

// SetCarDetails handles PUT /api/v1/cart/car
func (h *Handlers) SetCarDetails(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	var details models.CarDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := engine.SetCarDetails(c.Request.Context(), details); err != nil {
		handleError(c, err)
		return
	}

	metrics.CartMutationsTotal.WithLabelValues("set_car_details").Inc()
	c.JSON(http.StatusOK, gin.H{"cart": engine.State()})
}

// SetAddresses handles PUT /api/v1/cart/addresses
func (h *Handlers) SetAddresses(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	var req struct {
		Addresses []models.Address `json:"addresses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := engine.SetAddresses(c.Request.Context(), req.Addresses); err != nil {
		handleError(c, err)
		return
	}

	metrics.CartMutationsTotal.WithLabelValues("set_addresses").Inc()
	c.JSON(http.StatusOK, gin.H{"cart": engine.State()})
}

// GetPricing handles GET /api/v1/cart/pricing
func (h *Handlers) GetPricing(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, engine.Pricing())
}

// GetProviders handles GET /api/v1/providers — ranked eligible providers
// with their quotes for the current cart.
func (h *Handlers) GetProviders(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"providers": engine.RankedQuotes()})
}

// ResetCart handles POST /api/v1/cart/reset
func (h *Handlers) ResetCart(c *gin.Context) {
	engine, _, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	if err := engine.Reset(c.Request.Context()); err != nil {
		handleError(c, err)
		return
	}

	metrics.CartMutationsTotal.WithLabelValues("reset").Inc()
	c.JSON(http.StatusOK, gin.H{"cart": engine.State()})
}

// SubmitCart handles POST /api/v1/cart/submit
func (h *Handlers) SubmitCart(c *gin.Context) {
	engine, sessionID, ok := h.sessionEngine(c)
	if !ok {
		return
	}

	result, err := h.builder.Submit(c.Request.Context(), sessionID, bearerToken(c), engine)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		handleError(c, err)
		return
	}

	switch result.State {
	case request.StateSubmitted:
		metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
		c.JSON(http.StatusCreated, result)
	default:
		metrics.SubmissionsTotal.WithLabelValues(string(result.State)).Inc()
		c.JSON(http.StatusOK, result)
	}
}
