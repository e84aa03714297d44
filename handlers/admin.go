package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"emptio-backend/config"
	"emptio-backend/logger"
	"emptio-backend/metrics"
	"emptio-backend/models"
	"emptio-backend/services"
	"emptio-backend/statemachine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// adminOrderFilter builds the shared listing query. Without an explicit
// status filter, cancelled and returned orders are hidden; asking for one of
// them explicitly brings them back.
func adminOrderFilter(c *gin.Context) *gorm.DB {
	q := config.DB.Model(&models.Order{})

	status := c.Query("status")
	if status == "" || status == "all" {
		q = q.Where("status NOT IN ?", []models.OrderStatus{models.StatusCancelled, models.StatusReturned})
	} else {
		q = q.Where("status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where(
			"order_id LIKE ? COLLATE NOCASE OR shipping_email LIKE ? COLLATE NOCASE OR shipping_first_name LIKE ? COLLATE NOCASE OR shipping_last_name LIKE ? COLLATE NOCASE",
			like, like, like, like,
		)
	}

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate != "" && endDate != "" {
		start, err1 := time.Parse("2006-01-02", startDate)
		end, err2 := time.Parse("2006-01-02", endDate)
		if err1 == nil && err2 == nil {
			q = q.Where("created_at BETWEEN ? AND ?", start, end.AddDate(0, 0, 1))
		}
	}

	return q
}

// AdminGetAllOrders returns a paginated, filterable order listing. Payment
// info is dropped from the projection.
func AdminGetAllOrders(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	var total int64
	if err := adminOrderFilter(c).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var orders []models.Order
	err = adminOrderFilter(c).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("User").
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	for i := range orders {
		orders[i].PaymentInfo = nil
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"totalPages":  totalPages,
		"currentPage": page,
		"totalOrders": total,
	})
}

// AdminGetOrderByID returns a single order without payment info.
func AdminGetOrderByID(c *gin.Context) {
	order, err := findOrderDetailed(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	order.PaymentInfo = nil
	c.JSON(http.StatusOK, order)
}

// AdminUpdateOrderStatus performs the generic transition and answers with the
// projected subset of fields (unlike the customer-facing transition
// endpoints, which return the whole order).
func AdminUpdateOrderStatus(c *gin.Context) {
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

	if statemachine.IsTerminal(order.Status) {
		logger.Get().Warn("transitioning an order out of a terminal status",
			zap.String("orderId", order.OrderID),
			zap.String("from", string(order.Status)),
			zap.String("to", string(req.Status)),
		)
	}

	note := req.Note
	if note == "" {
		note = "Status updated to " + string(req.Status) + " by admin"
	}
	if req.TrackingNumber != "" {
		order.TrackingNumber = &req.TrackingNumber
	}

	if err := order.AddStatusToHistory(config.DB, req.Status, note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(req.Status)).Inc()
	services.NotifyStatusUpdate(order)

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order": gin.H{
			"id":             order.ID,
			"orderId":        order.OrderID,
			"status":         order.Status,
			"trackingNumber": order.TrackingNumber,
			"updatedAt":      order.UpdatedAt,
		},
	})
}

type statusBreakdown struct {
	Status       models.OrderStatus `json:"status"`
	Count        int64              `json:"count"`
	TotalRevenue float64            `json:"totalRevenue"`
}

// GetOrderStats aggregates order counts and revenue per status, plus a total
// revenue over the statuses that count as sold.
func GetOrderStats(c *gin.Context) {
	var breakdown []statusBreakdown
	err := config.DB.Model(&models.Order{}).
		Select("status, COUNT(*) AS count, SUM(total_amount) AS total_revenue").
		Group("status").
		Scan(&breakdown).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var totalOrders int64
	if err := config.DB.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var totalRevenue float64
	err = config.DB.Model(&models.Order{}).
		Where("status IN ?", []models.OrderStatus{models.StatusDelivered, models.StatusShipped, models.StatusOutForDelivery}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalRevenue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"statusBreakdown": breakdown,
		"totalOrders":     totalOrders,
		"totalRevenue":    totalRevenue,
	})
}
