package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/satouyama/pesto-sub001/utils"
	"github.com/sirupsen/logrus"
)

// PaymentSecurityHeaders adds security headers for payment endpoints
func PaymentSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// PaymentRateLimiter limits how often one client may hit the gateway callbacks.
// Capture blocks while the provider is polled, so the bucket is small.
func PaymentRateLimiter() gin.HandlerFunc {
	return NewRateLimiter(10, time.Minute).RateLimit()
}

// LogPaymentRequest logs payment request details
func LogPaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id": c.Param("order_id"),
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("Payment callback handled")
	}
}
