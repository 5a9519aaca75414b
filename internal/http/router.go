// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/http/handlers"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/http/middleware"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/checkout"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/order"
	"github.com/Ahmedtarekmekled/AboHommos-sub000/internal/modules/settings"
)

type RouterDeps struct {
	Checkout *checkout.Service
	Orders   *order.Service
	Settings *settings.Service
	Log      *slog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	checkoutHandler := handlers.NewCheckoutHandler(deps.Checkout, deps.Orders)
	r.POST("/api/checkout/quote", checkoutHandler.Quote)
	r.POST("/api/checkout", checkoutHandler.Commit)

	orderHandler := handlers.NewOrderHandler(deps.Orders)
	r.GET("/api/orders/:id", orderHandler.Get)
	r.POST("/api/orders/:id/status", orderHandler.UpdateStatus)
	r.POST("/api/orders/:id/assign-driver", orderHandler.AssignDriver)
	r.POST("/api/suborders/:id/status", orderHandler.UpdateSuborderStatus)

	settingsHandler := handlers.NewSettingsHandler(deps.Settings)
	r.GET("/api/admin/settings", settingsHandler.Get)
	r.PATCH("/api/admin/settings", settingsHandler.Update)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
