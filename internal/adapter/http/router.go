package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loayeid/shophub/internal/adapter/http/middleware"
	"github.com/loayeid/shophub/internal/entity"
	"github.com/loayeid/shophub/internal/logging"
)

func NewRouter(
	log *slog.Logger,
	auth *AuthHandler,
	cart *CartHandler,
	checkout *CheckoutHandler,
	admin *AdminOrderHandler,
	authz *middleware.Authz,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware(), middleware.Logging(log))

	r.GET("/healthz", func(c *gin.Context) {
		logging.From(c).Info("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/login", auth.Login)

		// Cart and checkout accept guests; a valid token personalizes them.
		shop := v1.Group("", authz.Optional())
		{
			shop.GET("/cart", cart.Get)
			shop.PUT("/cart", cart.Put)
			shop.DELETE("/cart", cart.Clear)
			shop.POST("/checkout/payment-intent", checkout.CreatePaymentIntent)
			shop.POST("/checkout/place-order", checkout.PlaceOrder)
		}

		staff := v1.Group("/admin", authz.Require(entity.RoleAdmin, entity.RoleManager))
		{
			staff.GET("/order/list", admin.List)
			staff.PATCH("/order/edit", admin.Edit)
		}
	}

	return r
}
