package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_products_added_total",
		Help: "Total number of products added or replaced in the catalog",
	})

	SalesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_sales_recorded_total",
		Help: "Total number of sales committed to the ledger",
	})

	UnitsSoldTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_units_sold_total",
		Help: "Total number of product units sold",
	})

	SaleItemsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_sale_items_skipped_total",
		Help: "Total number of sale items skipped while assembling a sale",
	}, []string{"reason"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
