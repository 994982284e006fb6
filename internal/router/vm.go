package router

import (
	"cyberlab/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitVMRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	// Browser websockets cannot carry an Authorization header, so the
	// console socket authenticates with the one-time ws_token instead.
	r.Group("/vms").GET("/console/ws", deps.VMHandler.VMConsoleWS)

	strictAuthRouter := r.Group("/vms").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.GET("", deps.VMHandler.ListVMs)
		// Fixed paths register before /:id to avoid route conflicts.
		strictAuthRouter.POST("/deploy", deps.VMHandler.DeployVM)
		strictAuthRouter.POST("/bulk-deploy", deps.VMHandler.BulkDeployVM)
		strictAuthRouter.POST("/plan", deps.VMHandler.PlanDeployment)
		strictAuthRouter.GET("/:id", deps.VMHandler.GetVM)
		strictAuthRouter.DELETE("/:id", deps.VMHandler.DeleteVM)
		strictAuthRouter.POST("/:id/start", deps.VMHandler.StartVM)
		strictAuthRouter.POST("/:id/stop", deps.VMHandler.StopVM)
		strictAuthRouter.POST("/:id/reset", deps.VMHandler.ResetVM)
		strictAuthRouter.POST("/:id/suspend", deps.VMHandler.SuspendVM)
		strictAuthRouter.POST("/:id/resume", deps.VMHandler.ResumeVM)
		strictAuthRouter.POST("/:id/status", deps.VMHandler.RefreshStatus)
		strictAuthRouter.POST("/:id/console", deps.VMHandler.GetVMConsole)
	}
}
