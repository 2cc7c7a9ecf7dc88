package server

import (
	"net/http"
	"strings"

	"github.com/Ro-otman/vroomvtr/internal/config"
	"github.com/Ro-otman/vroomvtr/internal/handler"
	appmw "github.com/Ro-otman/vroomvtr/internal/middleware"
	"github.com/Ro-otman/vroomvtr/internal/repository"
	"github.com/Ro-otman/vroomvtr/internal/service"
	"github.com/Ro-otman/vroomvtr/internal/ws"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Server struct {
	e         *echo.Echo
	scheduler *ws.Scheduler
}

func New(db *gorm.DB, cfg *config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			return cfg.CORSOrigin != "" && origin == cfg.CORSOrigin, nil
		},
	}))

	orderRepo := repository.NewOrderRepository(db)
	codeRepo := repository.NewVerificationCodeRepository(db)
	convRepo := repository.NewConversationRepository(db)
	carRepo := repository.NewCarRepository(db)
	userRepo := repository.NewUserRepository(db)

	codeStore := service.NewVerificationCodeStore(codeRepo, orderRepo)
	orderSvc := service.NewOrderService(orderRepo, carRepo, codeStore)
	refundSvc := service.NewRefundService(orderRepo, codeStore)
	chatSvc := service.NewChatService(convRepo, carRepo, userRepo)
	dashboardSvc := service.NewDashboardService(orderRepo, convRepo, userRepo, carRepo, codeStore)

	hub := ws.NewHub()
	scheduler := ws.NewScheduler(cfg.DashboardInterval, dashboardSvc, hub)
	relay := ws.NewRelay(hub, chatSvc, scheduler)

	authMw := appmw.NewAuthMiddleware(cfg.AccessTokenSecret)

	orderHandler := handler.NewOrderHandler(orderSvc, refundSvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	adminHandler := handler.NewAdminHandler(orderSvc, codeStore)
	socketHandler := handler.NewSocketHandler(authMw, relay)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})
	e.GET("/ws", socketHandler.Handle)

	e.POST("/orders", orderHandler.Reserve, authMw.RequireAuth)
	e.GET("/orders/current", orderHandler.Current, authMw.RequireAuth)
	e.POST("/orders/:orderId/confirm", orderHandler.Confirm, authMw.RequireAuth)
	e.GET("/orders/:orderId/refund", orderHandler.RefundState, authMw.RequireAuth)
	e.POST("/orders/:orderId/refund/step1/validate", orderHandler.RefundStep1, authMw.RequireAuth)
	e.POST("/orders/:orderId/refund/step2/validate", orderHandler.RefundStep2, authMw.RequireAuth)
	e.POST("/orders/:orderId/refund/step3/validate", orderHandler.RefundStep3, authMw.RequireAuth)
	e.POST("/orders/:orderId/refund/step4/validate", orderHandler.RefundStep4, authMw.RequireAuth)
	e.POST("/orders/:orderId/refund", orderHandler.RefundFinal, authMw.RequireAuth)

	e.GET("/conversations", chatHandler.List, authMw.RequireAuth)
	e.POST("/conversations/:id/read", chatHandler.MarkRead, authMw.RequireAuth)
	e.GET("/me/unread", chatHandler.UnreadTotal, authMw.RequireAuth)

	admin := e.Group("/admin", authMw.RequireAdmin)
	admin.GET("/orders", adminHandler.ListOrders)
	admin.GET("/verification-codes", adminHandler.ListVerificationCodes)
	admin.POST("/orders/:orderId/verification-codes/regenerate", adminHandler.RegenerateCodes)
	admin.GET("/conversations", chatHandler.AdminList)
	admin.GET("/conversations/:id/messages", chatHandler.AdminMessages)

	return &Server{e: e, scheduler: scheduler}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown() {
	s.scheduler.Stop()
	_ = s.e.Close()
}
