package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/satouyama/pesto-sub001/services"
	"github.com/satouyama/pesto-sub001/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder -> price the cart and persist the order. Gateway orders answer with a redirect url.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body services.CreateOrderInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// customers can only order for themselves
	userID, role, authenticated := currentUser(c)
	switch {
	case !authenticated:
		body.UserID = nil
	case !isBackOffice(role):
		body.UserID = &userID
	}

	result, err := oc.Orders.Create(c.Request.Context(), body)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	message := "Order created"
	if result.RedirectURL != "" {
		message = "Order created, continue to payment"
	}
	utils.RespondJSON(c, http.StatusCreated, message, result)
}

// GetOrderByID -> order + items + charges + user + delivery man
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	order, err := oc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetAllOrders supports ?status=a,b&type=&payment_status=&from=&to=
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var filter services.OrderFilter
	if status := c.Query("status"); status != "" {
		filter.Statuses = strings.Split(status, ",")
	}
	filter.Type = c.Query("type")
	if raw := c.Query("payment_status"); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondAppError(c, utils.Validation("payment_status must be true or false"))
			return
		}
		filter.PaymentStatus = &paid
	}

	var err error
	if filter.From, err = parseDateQuery(c, "from", false); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if filter.To, err = parseDateQuery(c, "to", true); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	orders, err := oc.Orders.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetKitchenDisplay(c *gin.Context) {
	orders, err := oc.Orders.KitchenOrders(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen display", orders)
}

// UpdateOrder -> full update (type, status, payment, manual discount, delivery man, note)
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	id, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var body services.UpdateOrderInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Update(c.Request.Context(), id, body)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// PatchOrder -> status / delivery man / payment flag only
func (oc *OrderController) PatchOrder(c *gin.Context) {
	id, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var body services.CustomUpdateInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CustomUpdate(c.Request.Context(), id, body)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if err := oc.Orders.Delete(c.Request.Context(), id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"order_id": id})
}
