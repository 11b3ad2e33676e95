package routes

import (
	"nimbusdrive/controllers"
	"nimbusdrive/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterFileRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	fileController := controllers.NewFileController(container.FileService, container.ViewService)

	files := rg.Group("/files")
	files.Use(middleware.AuthMiddleware(container.AuthService, container.JWTSecret))
	{
		files.GET("", fileController.List)
		files.GET("/folders", fileController.Folders)
		files.POST("", fileController.Create)
		files.POST("/upload", fileController.Upload)

		files.GET("/:id", fileController.Get)
		files.GET("/:id/download", fileController.Download)
		files.DELETE("/:id", fileController.Delete)

		files.POST("/:id/trash", fileController.Trash)
		files.POST("/:id/restore", fileController.Restore)
		files.POST("/:id/star", fileController.Star)
		files.POST("/:id/offline", fileController.Offline)
		files.POST("/:id/share", fileController.Share)
		files.POST("/:id/rename", fileController.Rename)
		files.POST("/:id/move", fileController.Move)
		files.POST("/:id/copy", fileController.Copy)
		files.POST("/:id/shortcut", fileController.Shortcut)
		files.POST("/:id/details", fileController.Details)

		files.POST("/batch/trash", fileController.BatchTrash)
		files.POST("/batch/restore", fileController.BatchRestore)
		files.POST("/batch/move", fileController.BatchMove)
		files.DELETE("/batch", fileController.BatchDelete)
	}
}
