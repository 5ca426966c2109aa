package server

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func registerRoutes(e *echo.Echo, handler *HandlerAdapter, auth echo.MiddlewareFunc) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", handler.Register)
	authGroup.POST("/login", handler.Login)
	authGroup.GET("/me", handler.Me, auth)
	authGroup.GET("/profile", handler.Me, auth)

	transactions := api.Group("/transactions", auth)
	transactions.GET("", handler.ListTransactions)
	transactions.POST("", handler.CreateTransaction)
	transactions.POST("/import", handler.ImportTransactions)
	transactions.GET("/export", handler.ExportTransactions)
	transactions.GET("/:id", handler.GetTransaction)
	transactions.PUT("/:id", handler.UpdateTransaction)
	transactions.DELETE("/:id", handler.DeleteTransaction)

	api.GET("/portfolio", handler.GetPortfolio, auth)

	alerts := api.Group("/alerts", auth)
	alerts.GET("", handler.ListAlerts)
	alerts.POST("", handler.CreateAlert)
	alerts.GET("/:id", handler.GetAlert)
	alerts.PUT("/:id", handler.UpdateAlert)
	alerts.DELETE("/:id", handler.DeleteAlert)
}
