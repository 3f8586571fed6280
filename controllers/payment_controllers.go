package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/services"
	"github.com/satouyama/pesto-sub001/utils"
)

// PaymentController serves the return and cancel urls handed to the payment gateways.
type PaymentController struct {
	Orders *services.OrderService
}

func NewPaymentController(orders *services.OrderService) *PaymentController {
	return &PaymentController{Orders: orders}
}

// CapturePayment polls the gateway until the payment settles or the attempts run out.
func (pc *PaymentController) CapturePayment(c *gin.Context) {
	id, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	order, err := pc.Orders.CapturePayment(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if !order.PaymentStatus {
		utils.RespondJSON(c, http.StatusPaymentRequired, "Payment was not completed", order)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment captured", order)
}

func (pc *PaymentController) CancelPayment(c *gin.Context) {
	id, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	order, err := pc.Orders.CancelPayment(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment canceled", gin.H{
		"order_id": order.ID,
		"status":   order.Status,
		"canceled": order.Status == models.OrderStatusCanceled,
	})
}
