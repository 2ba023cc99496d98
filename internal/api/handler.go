package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/safar/shopkeeper/internal/metrics"
	"github.com/safar/shopkeeper/internal/models"
	"github.com/safar/shopkeeper/internal/shop"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handler exposes the shop service over HTTP.
type Handler struct {
	svc    *shop.Service
	logger *zap.Logger
}

func NewHandler(svc *shop.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.POST("/products", h.addProduct)
		v1.GET("/products/:id", h.getProduct)
		v1.POST("/sales", h.sellProducts)
		v1.GET("/sales", h.listSales)
		v1.GET("/sales/report", h.salesReport)
	}
}

type addProductRequest struct {
	ID       string          `json:"product_id" binding:"required"`
	Name     string          `json:"product_name" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" binding:"gte=0"`
}

type sellProductsRequest struct {
	SaleID string          `json:"sale_id"`
	Items  []shop.SaleItem `json:"items"`
}

type skippedItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

type saleResponse struct {
	Sale    models.Sale           `json:"sale"`
	Total   decimal.Decimal       `json:"total"`
	Skipped []skippedItemResponse `json:"skipped"`
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.InventoryView())
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.svc.Product(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) addProduct(c *gin.Context) {
	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.svc.AddProduct(c.Request.Context(), req.ID, req.Name, req.Price, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *Handler) sellProducts(c *gin.Context) {
	var req sellProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.SaleID == "" {
		req.SaleID = uuid.NewString()
	}

	result, err := h.svc.SellProducts(c.Request.Context(), req.SaleID, req.Items)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := saleResponse{
		Sale:    result.Sale,
		Total:   result.Sale.Total(),
		Skipped: make([]skippedItemResponse, 0, len(result.Skipped)),
	}
	for _, s := range result.Skipped {
		resp.Skipped = append(resp.Skipped, skippedItemResponse{
			ProductID: s.Item.ProductID,
			Quantity:  s.Item.Quantity,
			Reason:    s.Reason.Error(),
		})
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) listSales(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Sales())
}

func (h *Handler) salesReport(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.SalesReport())
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shop.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, shop.ErrDuplicateSale):
		return http.StatusConflict
	case errors.Is(err, shop.ErrInvalidProduct),
		errors.Is(err, shop.ErrInvalidSale),
		errors.Is(err, shop.ErrInvalidQuantity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
