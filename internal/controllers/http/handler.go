// Package http exposes the storefront and back-office REST surface plus
// the voice websocket endpoint.
package http

import (
	"errors"
	"log"
	"net/http"

	"khodarji-server/internal/cart"
	"khodarji-server/internal/domain"
	"khodarji-server/internal/services"
	"khodarji-server/internal/voice"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// sessionHeader identifies the anonymous browsing session that owns a
// cart. Checkout attaches the customer identity; browsing never does.
const sessionHeader = "X-Session-Id"

type Handler struct {
	auth        *services.AuthService
	catalog     *services.CatalogService
	orders      *services.OrderService
	enrollments *services.EnrollmentService
	carts       *cart.Store
	voice       *voice.Manager

	upgrader websocket.Upgrader
}

func NewHandler(
	auth *services.AuthService,
	catalog *services.CatalogService,
	orders *services.OrderService,
	enrollments *services.EnrollmentService,
	carts *cart.Store,
	voiceManager *voice.Manager,
) *Handler {
	return &Handler{
		auth:        auth,
		catalog:     catalog,
		orders:      orders,
		enrollments: enrollments,
		carts:       carts,
		voice:       voiceManager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/signin", h.SignIn)

	r.GET("/products", h.ListProducts)

	r.GET("/cart", h.GetCart)
	r.POST("/cart/items", h.AddCartItem)
	r.PUT("/cart/items/:productId", h.UpdateCartItem)
	r.DELETE("/cart/items/:productId", h.RemoveCartItem)

	r.POST("/checkout", h.Checkout)
	r.GET("/orders", h.ListOrders)
	r.POST("/orders/:id/cancel", h.CancelOrder)

	r.POST("/enrollments", h.Enroll)

	r.GET("/voice", h.VoiceSession)

	admin := r.Group("/admin", h.requireAdmin)
	admin.POST("/products", h.SaveProduct)
	admin.PUT("/products/:id", h.SaveProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)
	admin.GET("/orders", h.ListAllOrders)
	admin.PATCH("/orders/:id/status", h.SetOrderStatus)
	admin.DELETE("/orders/:id", h.DeleteOrder)
	admin.GET("/enrollments", h.ListEnrollments)
}

// requireAdmin authenticates back-office calls from the phone/PIN header
// pair on each request.
func (h *Handler) requireAdmin(c *gin.Context) {
	phone := c.GetHeader("X-Admin-Phone")
	pin := c.GetHeader("X-Admin-Pin")
	if err := h.auth.VerifyAdmin(c.Request.Context(), phone, pin); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.Next()
}

func (h *Handler) sessionID(c *gin.Context) (string, bool) {
	id := c.GetHeader(sessionHeader)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": sessionHeader + " header required"})
		return "", false
	}
	return id, true
}

func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.SignIn(c.Request.Context(), req.Phone, req.City, req.Pin)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrPinRequired), errors.Is(err, domain.ErrIncorrectAdminPin):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) SaveProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}

	p := domain.Product{
		ID:          req.ID,
		Name:        req.Name,
		Category:    req.Category,
		Price:       price,
		Image:       req.Image,
		Unit:        req.Unit,
		Organic:     req.Organic,
		Description: req.Description,
	}
	if id := c.Param("id"); id != "" {
		p.ID = id
	}
	if req.DiscountPrice != nil {
		dp, err := decimal.NewFromString(*req.DiscountPrice)
		if err != nil || dp.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid discount price"})
			return
		}
		p.DiscountPrice = &dp
	}

	saved, err := h.catalog.Save(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	err := h.catalog.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetCart(c *gin.Context) {
	owner, ok := h.sessionID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toCartResponse(h.carts.Get(c.Request.Context(), owner)))
}

func (h *Handler) AddCartItem(c *gin.Context) {
	owner, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.catalog.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated := h.carts.Add(c.Request.Context(), owner, *p, decimal.NewFromFloat(req.Quantity))
	c.JSON(http.StatusOK, toCartResponse(updated))
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	owner, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, found := h.carts.UpdateQuantity(c.Request.Context(), owner, c.Param("productId"), decimal.NewFromFloat(req.Quantity))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not in cart"})
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	owner, ok := h.sessionID(c)
	if !ok {
		return
	}

	updated, found := h.carts.Remove(c.Request.Context(), owner, c.Param("productId"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not in cart"})
		return
	}
	c.JSON(http.StatusOK, toCartResponse(updated))
}

func (h *Handler) Checkout(c *gin.Context) {
	owner, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.Checkout(c.Request.Context(), owner, req.Phone, req.City)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, CheckoutResponse{
		Order:        order,
		WhatsAppLink: services.WhatsAppLink(order),
	})
}

func (h *Handler) ListOrders(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone query parameter required"})
		return
	}

	orders, err := h.orders.ListForPhone(c.Request.Context(), phone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CustomerCancel(c.Request.Context(), req.Phone, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrOrderNotCancellable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListAllOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) SetOrderStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.AdminSetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	err := h.orders.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := h.enrollments.Enroll(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPhone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) ListEnrollments(c *gin.Context) {
	enrollments, err := h.enrollments.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

// VoiceSession upgrades the connection and runs one assistant session
// bound to the caller's cart. A second session for the same owner is
// refused before the upgrade.
func (h *Handler) VoiceSession(c *gin.Context) {
	owner := c.GetHeader(sessionHeader)
	if owner == "" {
		owner = c.Query("session")
	}
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id required"})
		return
	}
	if h.voice.Active(owner) {
		c.JSON(http.StatusConflict, gin.H{"error": voice.ErrSessionActive.Error()})
		return
	}

	lang := domain.LangEnglish
	if c.Query("lang") == string(domain.LangArabic) {
		lang = domain.LangArabic
	}

	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("voice: upgrade: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.voice.Open(c.Request.Context(), owner, lang, conn, products)
	if err != nil {
		conn.WriteJSON(voice.ClientEvent{Type: "error", Message: err.Error()})
		return
	}
	<-session.Done()
}
