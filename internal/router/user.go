package router

import (
	"cyberlab/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitUserRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	noAuthRouter := r.Group("/")
	{
		noAuthRouter.POST("/register", deps.UserHandler.Register)
		noAuthRouter.POST("/login", middleware.LoginRateLimit(deps.Redis, deps.Logger), deps.UserHandler.Login)
	}

	strictAuthRouter := r.Group("/user").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.GET("", deps.UserHandler.GetProfile)
		strictAuthRouter.PUT("", deps.UserHandler.UpdateProfile)
	}
}
