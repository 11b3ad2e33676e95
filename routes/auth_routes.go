package routes

import (
	"nimbusdrive/controllers"
	"nimbusdrive/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	authController := controllers.NewAuthController(container.AuthService)

	auth := rg.Group("/auth")
	{
		auth.POST("/signup", authController.Signup)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
		auth.POST("/forgot", authController.Forgot)
		auth.POST("/reset", authController.Reset)

		// /me works for guests too: it reports a null user instead of 401.
		auth.GET("/me", middleware.AttachUser(container.AuthService, container.JWTSecret), authController.Me)
	}
}
