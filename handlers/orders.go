package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"emptio-backend/config"
	"emptio-backend/middleware"
	"emptio-backend/metrics"
	"emptio-backend/models"
	"emptio-backend/services"
	"emptio-backend/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OrderItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"required,gt=0"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Image     string  `json:"image" binding:"required"`
}

type ShippingAddressRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	ZipCode   string `json:"zipCode" binding:"required"`
}

type PaymentInfoRequest struct {
	CardNumber string `json:"cardNumber" binding:"required"`
	ExpiryDate string `json:"expiryDate" binding:"required"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress" binding:"required"`
	PaymentInfo     PaymentInfoRequest     `json:"paymentInfo" binding:"required"`
	TotalAmount     float64                `json:"totalAmount" binding:"required,gt=0"`
	PaymentMethod   string                 `json:"paymentMethod"`
	OrderNotes      string                 `json:"orderNotes"`
	UserID          *uint                  `json:"userId"` // nil for guest checkout
}

// maskCard keeps only the last four digits of a card number. Full card data
// is never persisted.
func maskCard(number string) string {
	digits := strings.ReplaceAll(number, " ", "")
	if len(digits) <= 4 {
		return digits
	}
	return "**** **** **** " + digits[len(digits)-4:]
}

// findOrderDetailed loads one order with items, ordered history and user.
func findOrderDetailed(id string) (*models.Order, error) {
	var order models.Order
	err := config.DB.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder places a new order with status "placed" and its first history
// entry, then dispatches the confirmation email.
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentCard
	}
	switch paymentMethod {
	case models.PaymentCard, models.PaymentUPI, models.PaymentNetBanking, models.PaymentCOD:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method"})
		return
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}

	order := models.Order{
		UserID: req.UserID,
		Items:  items,
		ShippingAddress: models.ShippingAddress{
			FirstName: req.ShippingAddress.FirstName,
			LastName:  req.ShippingAddress.LastName,
			Email:     req.ShippingAddress.Email,
			Address:   req.ShippingAddress.Address,
			City:      req.ShippingAddress.City,
			ZipCode:   req.ShippingAddress.ZipCode,
		},
		PaymentInfo: &models.PaymentInfo{
			CardNumber: maskCard(req.PaymentInfo.CardNumber),
			ExpiryDate: req.PaymentInfo.ExpiryDate,
		},
		TotalAmount:   req.TotalAmount,
		PaymentMethod: paymentMethod,
		OrderNotes:    req.OrderNotes,
		Status:        models.StatusPlaced,
		StatusHistory: []models.OrderStatusHistory{
			{Status: models.StatusPlaced, Timestamp: time.Now().UTC(), Note: "Order placed successfully"},
		},
	}

	if err := config.DB.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	metrics.OrdersCreatedTotal.Inc()
	services.NotifyOrderConfirmation(order)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order": gin.H{
			"id":          order.ID,
			"orderId":     order.OrderID,
			"totalAmount": order.TotalAmount,
			"status":      order.Status,
			"createdAt":   order.CreatedAt,
		},
	})
}

// GetOrderByID returns one order in full detail
func GetOrderByID(c *gin.Context) {
	order, err := findOrderDetailed(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetUserOrders returns the caller's orders, matched by user id or shipping
// email, excluding cancelled and returned ones.
func GetUserOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	email := middleware.GetEmail(c)

	var orders []models.Order
	err := config.DB.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("(user_id = ? OR shipping_email = ?) AND status NOT IN ?",
			userID, email, []models.OrderStatus{models.StatusCancelled, models.StatusReturned}).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetGuestOrders returns orders for an email address, excluding cancelled
// and returned ones. Guest orders have no user reference, so the shipping
// email is their only handle.
func GetGuestOrders(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	var orders []models.Order
	err := config.DB.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("shipping_email = ? AND status NOT IN ?",
			email, []models.OrderStatus{models.StatusCancelled, models.StatusReturned}).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

type UpdateOrderStatusRequest struct {
	Status         models.OrderStatus `json:"status" binding:"required"`
	TrackingNumber string             `json:"trackingNumber"`
	Note           string             `json:"note"`
}

// UpdateOrderStatus is the generic admin transition on the order routes. It
// validates status membership only; terminal statuses are not enforced here
// (see the statemachine package).
func UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !statemachine.IsValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var order models.Order
	if err := config.DB.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if req.TrackingNumber != "" {
		order.TrackingNumber = &req.TrackingNumber
	}

	if err := order.AddStatusToHistory(config.DB, req.Status, req.Note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(req.Status)).Inc()
	services.NotifyStatusUpdate(order)

	updated, err := findOrderDetailed(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   updated,
	})
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder cancels an order unless it has already shipped.
func CancelOrder(c *gin.Context) {
	var req CancelOrderRequest
	_ = c.ShouldBindJSON(&req) // reason is optional, body may be empty

	var order models.Order
	if err := config.DB.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := statemachine.CanCancel(order.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order cannot be cancelled at this stage"})
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "Cancelled by user"
	}
	order.CancellationReason = &reason

	if err := order.AddStatusToHistory(config.DB, models.StatusCancelled, reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	metrics.OrdersCancelledTotal.Inc()
	metrics.StatusTransitionsTotal.WithLabelValues(string(models.StatusCancelled)).Inc()
	services.NotifyStatusUpdate(order)

	updated, err := findOrderDetailed(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"order":   updated,
	})
}

type ReturnOrderRequest struct {
	Reason string `json:"reason"`
}

// RequestReturn accepts a return request for a delivered order.
func RequestReturn(c *gin.Context) {
	var req ReturnOrderRequest
	_ = c.ShouldBindJSON(&req)

	var order models.Order
	if err := config.DB.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := statemachine.CanReturn(order.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order must be delivered to request return"})
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "Return requested by user"
	}
	now := time.Now().UTC()
	order.ReturnReason = &reason
	order.ReturnRequestedAt = &now

	if err := order.AddStatusToHistory(config.DB, models.StatusReturned, reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	metrics.ReturnsRequestedTotal.Inc()
	metrics.StatusTransitionsTotal.WithLabelValues(string(models.StatusReturned)).Inc()
	services.NotifyStatusUpdate(order)

	updated, err := findOrderDetailed(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return request submitted successfully",
		"order":   updated,
	})
}

// GetOrderLifecycle documents the status workflow (handy for Postman and the
// admin dashboard).
func GetOrderLifecycle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"lifecycle":        statemachine.Lifecycle(),
		"terminalStates":   []models.OrderStatus{models.StatusCancelled, models.StatusReturned},
		"defaultStatus":    models.StatusPlaced,
		"estimatedAfter":   []models.OrderStatus{models.StatusConfirmed, models.StatusShipped, models.StatusOutForDelivery},
		"deliveryLeadDays": 5,
	})
}
