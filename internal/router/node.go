package router

import (
	"cyberlab/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitNodeRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	nodeRouter := r.Group("/nodes").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		nodeRouter.GET("", deps.NodeHandler.ListNodes)
		// Fixed paths register before /:id to avoid route conflicts.
		nodeRouter.POST("/sync", deps.NodeHandler.SyncNodes)
		nodeRouter.GET("/statistics", deps.NodeHandler.GetStatistics)
		nodeRouter.GET("/:id", deps.NodeHandler.GetNode)
		nodeRouter.PUT("/:id", deps.NodeHandler.UpdateNode)
		nodeRouter.GET("/:id/storages", deps.NodeHandler.ListStorages)
		nodeRouter.POST("/:id/storages", deps.NodeHandler.CreateStorage)
	}

	storageRouter := r.Group("/storages").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		storageRouter.PUT("/:storageId", deps.NodeHandler.UpdateStorage)
		storageRouter.DELETE("/:storageId", deps.NodeHandler.DeleteStorage)
	}
}
