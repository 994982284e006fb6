package router

import (
	"cyberlab/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitTemplateRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	templateRouter := r.Group("/templates").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		templateRouter.GET("", deps.TemplateHandler.ListTemplates)
		templateRouter.POST("", deps.TemplateHandler.CreateTemplate)
		templateRouter.GET("/:id", deps.TemplateHandler.GetTemplate)
		templateRouter.PUT("/:id", deps.TemplateHandler.UpdateTemplate)
		templateRouter.DELETE("/:id", deps.TemplateHandler.DeleteTemplate)
		templateRouter.POST("/:id/mappings", deps.TemplateHandler.AddMapping)
		templateRouter.DELETE("/:id/mappings/:node", deps.TemplateHandler.RemoveMapping)
	}
}
