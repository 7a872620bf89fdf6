package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/motohub/motohub-cart-service/internal/config"
	"github.com/motohub/motohub-cart-service/internal/handlers"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	httpSrv  *http.Server
}

func New(h *handlers.Handlers, cfg *config.Config) *Server {
	router := gin.Default()

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
	}

	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/catalog", s.handlers.GetCatalog)
		v1.GET("/coupons", s.handlers.GetCoupons)
		v1.GET("/providers", s.handlers.GetProviders)

		v1.GET("/cart", s.handlers.GetCart)
		v1.POST("/cart/items", s.handlers.AddCartItem)
		v1.DELETE("/cart/items/:id", s.handlers.RemoveCartItem)
		v1.PATCH("/cart/items/:id", s.handlers.AdjustCartItem)
		v1.PUT("/cart/address", s.handlers.SelectAddress)
		v1.PUT("/cart/addresses", s.handlers.SetAddresses)
		v1.PUT("/cart/slot", s.handlers.SelectSlot)
		v1.PUT("/cart/coupon", s.handlers.SelectCoupon)
		v1.PUT("/cart/providers", s.handlers.SelectProviders)
		v1.PUT("/cart/note", s.handlers.SetNote)
		v1.PUT("/cart/car", s.handlers.SetCarDetails)
		v1.GET("/cart/pricing", s.handlers.GetPricing)
		v1.POST("/cart/reset", s.handlers.ResetCart)
		v1.POST("/cart/submit", s.handlers.SubmitCart)
	}
}

func (s *Server) Start() error {
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
