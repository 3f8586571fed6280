package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/satouyama/pesto-sub001/middlewares"
	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/utils"
)

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.NotFound("%s %q is not valid", name, c.Param(name))
	}
	return uint(id), nil
}

// currentUser returns the authenticated user, if any.
func currentUser(c *gin.Context) (uint, string, bool) {
	raw, exists := c.Get(middlewares.ContextUserID)
	if !exists {
		return 0, "", false
	}
	id, ok := raw.(uint)
	if !ok || id == 0 {
		return 0, "", false
	}
	return id, c.GetString(middlewares.ContextRole), true
}

func isBackOffice(role string) bool {
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleStaff:
		return true
	}
	return false
}

// parseDateQuery accepts RFC3339 or a plain date. A plain "to" date covers the whole day.
func parseDateQuery(c *gin.Context, key string, endOfDay bool) (*time.Time, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, utils.Validation("%s must be YYYY-MM-DD or RFC3339", key)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
