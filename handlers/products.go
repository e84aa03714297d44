package handlers

import (
	"errors"
	"net/http"

	"emptio-backend/config"
	"emptio-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// productCategoryFilter applies the optional category/subcategory query
// filters, case-insensitively.
func productCategoryFilter(c *gin.Context, q *gorm.DB) *gorm.DB {
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ? COLLATE NOCASE", category)
	}
	if subcategory := c.Query("subcategory"); subcategory != "" {
		q = q.Where("subcategory = ? COLLATE NOCASE", subcategory)
	}
	return q
}

// GetProducts returns active products for the storefront
func GetProducts(c *gin.Context) {
	var products []models.Product
	q := config.DB.Preload("Reviews").Where("status = ?", models.ProductActive)
	if err := productCategoryFilter(c, q).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetFeaturedProducts returns a short list of active products for the home page
func GetFeaturedProducts(c *gin.Context) {
	var products []models.Product
	err := config.DB.Preload("Reviews").
		Where("status = ?", models.ProductActive).
		Order("is_featured desc").
		Limit(8).
		Find(&products).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProductByID returns a single product
func GetProductByID(c *gin.Context) {
	var product models.Product
	err := config.DB.Preload("Reviews").First(&product, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// AdminGetProducts returns all products, including inactive ones
func AdminGetProducts(c *gin.Context) {
	var products []models.Product
	if err := productCategoryFilter(c, config.DB.Preload("Reviews")).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, products)
}

type ProductRequest struct {
	Name           string            `json:"name" binding:"required"`
	Description    string            `json:"description" binding:"required"`
	Price          float64           `json:"price" binding:"required,gt=0"`
	Images         []string          `json:"images" binding:"required,min=1"`
	Category       string            `json:"category" binding:"required"`
	Subcategory    string            `json:"subcategory"`
	Stock          int               `json:"stock" binding:"min=0"`
	Brand          string            `json:"brand"`
	Discount       float64           `json:"discount" binding:"min=0,max=100"`
	Specifications map[string]string `json:"specifications"`
	IsFeatured     bool              `json:"isFeatured"`
}

// CreateProduct adds a catalog product (admin only)
func CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Images:         req.Images,
		Category:       req.Category,
		Subcategory:    req.Subcategory,
		Stock:          req.Stock,
		Status:         models.ProductActive,
		Brand:          req.Brand,
		Discount:       req.Discount,
		Specifications: req.Specifications,
		IsFeatured:     req.IsFeatured,
	}

	if err := config.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct updates safe catalog fields (admin only)
func UpdateProduct(c *gin.Context) {
	var product models.Product
	if err := config.DB.First(&product, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed := map[string]string{
		"name": "name", "description": "description", "price": "price",
		"category": "category", "subcategory": "subcategory", "stock": "stock",
		"status": "status", "brand": "brand", "discount": "discount",
		"isFeatured": "is_featured",
	}
	update := map[string]interface{}{}
	for k, v := range req {
		if col, ok := allowed[k]; ok {
			update[col] = v
		}
	}

	if err := config.DB.Model(&product).Updates(update).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct deactivates a product instead of removing it, so existing
// order snapshots keep pointing at something real.
func DeleteProduct(c *gin.Context) {
	var product models.Product
	if err := config.DB.First(&product, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := config.DB.Model(&product).Update("status", models.ProductInactive).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product disabled successfully"})
}

// SeedProducts resets the catalog to a small demo set
func SeedProducts(c *gin.Context) {
	if err := config.DB.Where("1 = 1").Delete(&models.Review{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if err := config.DB.Where("1 = 1").Delete(&models.Product{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	products := []models.Product{
		{
			Name: "Men Shoes", Description: "Premium quality men's shoes with superior comfort and style.",
			Price: 299, Images: []string{"/images/shoes.jpg"}, Category: "fashion", Stock: 50,
			Status: models.ProductActive, Rating: 4.5, Brand: "Nike", Discount: 15,
			Specifications: map[string]string{"Material": "Synthetic Leather", "Sole": "Rubber"},
			Reviews: []models.Review{
				{User: "Mike Johnson", Rating: 5, Comment: "Great comfort and style!"},
				{User: "Sarah Wilson", Rating: 4, Comment: "Good quality for the price."},
			},
		},
		{
			Name: "Leather Watch", Description: "Elegant leather watch with premium craftsmanship.",
			Price: 150, Images: []string{"/images/leatherwatch.jpg"}, Category: "fashion", Stock: 25,
			Status: models.ProductActive, Rating: 4.8, Brand: "Rolex", Discount: 20, IsFeatured: true,
			Specifications: map[string]string{"Movement": "Quartz", "Water Resistance": "50M"},
		},
		{
			Name: "Mobile", Description: "Latest smartphone with advanced features and long battery life.",
			Price: 500, Images: []string{"/images/mobile.jpg"}, Category: "electronics", Stock: 30,
			Status: models.ProductActive, Rating: 4.9, Brand: "Samsung", Discount: 25, IsFeatured: true,
			Specifications: map[string]string{"Storage": "128GB", "RAM": "8GB"},
		},
		{
			Name: "Wireless Headphones", Description: "Premium wireless headphones with noise cancellation.",
			Price: 199, Images: []string{"/images/headphones.jpg"}, Category: "electronics", Stock: 40,
			Status: models.ProductActive, Rating: 4.7, Brand: "Sony", Discount: 30,
			Specifications: map[string]string{"Battery Life": "30 hours", "Connectivity": "Bluetooth 5.0"},
		},
		{
			Name: "Running Sneakers", Description: "Professional running sneakers with advanced cushioning.",
			Price: 129, Images: []string{"/images/sneakers.jpg"}, Category: "sports", Stock: 75,
			Status: models.ProductActive, Rating: 4.6, Brand: "Adidas", Discount: 10,
		},
		{
			Name: "Leather Backpack", Description: "Stylish leather backpack with multiple compartments.",
			Price: 89, Images: []string{"/images/backpack.jpg"}, Category: "bags", Stock: 35,
			Status: models.ProductActive, Rating: 4.7, Brand: "Levi's", Discount: 15,
		},
	}

	if err := config.DB.Create(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Products seeded successfully",
		"products": products,
	})
}
