package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satouyama/pesto-sub001/services"
	"github.com/satouyama/pesto-sub001/utils"
)

type AdminController struct {
	Reports  *services.ReportService
	Currency string
}

func NewAdminController(reports *services.ReportService, currency string) *AdminController {
	return &AdminController{Reports: reports, Currency: currency}
}

// GetDashboardStats returns order counts and revenue
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Reports.DashboardStats(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"stats":                   stats,
		"revenue_formatted":       utils.FormatCurrency(ac.Currency, stats.Revenue),
		"today_revenue_formatted": utils.FormatCurrency(ac.Currency, stats.TodayRevenue),
	})
}

// GetChargeReport -> rollup of order charges by name and type, ?from=&to=
func (ac *AdminController) GetChargeReport(c *gin.Context) {
	from, err := parseDateQuery(c, "from", false)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	to, err := parseDateQuery(c, "to", true)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		utils.RespondAppError(c, utils.Validation("to must not be before from"))
		return
	}

	rows, err := ac.Reports.ChargeReport(c.Request.Context(), from, to)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Charge report", rows)
}
