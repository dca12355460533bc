package api

import (
	"krishna_store/internal/domain"     // Domain models and errors
	"krishna_store/internal/middleware" // Authenticated caller
	"krishna_store/internal/service"    // Order operations
	"krishna_store/internal/utils"      // Envelope and pagination
	"net/http"                          // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// StatusRequest is the body of both status update endpoints
type StatusRequest struct {
	Status string `json:"status"` // New order or payment status
}

// OrderPage is a paginated order listing
type OrderPage struct {
	Orders     []domain.Order `json:"orders"`      // Orders on this page
	Page       int            `json:"page"`        // Current page
	PageSize   int            `json:"page_size"`   // Page size
	Total      int64          `json:"total"`       // Total matching orders
	TotalPages int            `json:"total_pages"` // Total pages
}

// ListOrdersHandler returns all orders for staff, optionally filtered by status or user_id
func ListOrdersHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c)
		filter := service.OrderFilter{Status: c.Query("status")}
		if c.Query("user_id") != "" {
			userID, err := parseID(c.Query("user_id"), "user_id")
			if err != nil {
				utils.Fail(c, err)
				return
			}
			filter.UserID = userID
		}
		list, total, err := orders.List(c.Request.Context(), filter, page)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Orders fetched successfully", newOrderPage(list, total, page))
	}
}

// SearchOrdersHandler matches q against order number, customer name and customer phone
func SearchOrdersHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c)
		list, total, err := orders.Search(c.Request.Context(), c.Query("q"), page)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Orders fetched successfully", newOrderPage(list, total, page))
	}
}

// MyOrdersHandler returns the caller's own orders
func MyOrdersHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, _ := middleware.Actor(c)
		page := utils.ParsePage(c)
		list, total, err := orders.List(c.Request.Context(), service.OrderFilter{UserID: userID}, page)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Orders fetched successfully", newOrderPage(list, total, page))
	}
}

// OrderStatsHandler returns counts per status and paid revenue
func OrderStatsHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := orders.Stats(c.Request.Context())
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Order stats fetched successfully", stats)
	}
}

// GetOrderHandler returns one order with its customer
func GetOrderHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			utils.Fail(c, err)
			return
		}
		order, err := orders.Get(c.Request.Context(), id)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Order fetched successfully", order)
	}
}

// UpdateOrderStatusHandler sets the fulfilment status
func UpdateOrderStatusHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, _, _ := middleware.Actor(c)
		id, req, ok := bindStatus(c)
		if !ok {
			return
		}
		order, err := orders.UpdateStatus(c.Request.Context(), actorID, id, req.Status)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Order status updated successfully", order)
	}
}

// UpdatePaymentStatusHandler sets the payment status
func UpdatePaymentStatusHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, _, _ := middleware.Actor(c)
		id, req, ok := bindStatus(c)
		if !ok {
			return
		}
		order, err := orders.UpdatePaymentStatus(c.Request.Context(), actorID, id, req.Status)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Payment status updated successfully", order)
	}
}

func bindStatus(c *gin.Context) (uint, StatusRequest, bool) {
	var req StatusRequest
	id, err := pathID(c, "id")
	if err != nil {
		utils.Fail(c, err)
		return 0, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, domain.NewError(domain.KindValidation, "Invalid request", err))
		return 0, req, false
	}
	return id, req, true
}

func newOrderPage(list []domain.Order, total int64, page utils.Page) OrderPage {
	return OrderPage{
		Orders:     list,
		Page:       page.Number,
		PageSize:   page.Size,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}
}
