package router

import (
	"cyberlab/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitClassroomRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	classroomRouter := r.Group("/classrooms").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		classroomRouter.GET("", deps.ClassroomHandler.ListClassrooms)
		classroomRouter.POST("", deps.ClassroomHandler.CreateClassroom)
		classroomRouter.GET("/:id", deps.ClassroomHandler.GetClassroom)
		classroomRouter.DELETE("/:id", deps.ClassroomHandler.DeleteClassroom)
	}

	studentRouter := r.Group("/students").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		studentRouter.POST("", deps.ClassroomHandler.CreateStudent)
		studentRouter.DELETE("/:id", deps.ClassroomHandler.DeleteStudent)
		studentRouter.PUT("/:id/password", deps.ClassroomHandler.ResetStudentPassword)
	}

	portalRouter := r.Group("/student")
	{
		portalRouter.POST("/login", middleware.LoginRateLimit(deps.Redis, deps.Logger), deps.ClassroomHandler.StudentLogin)
	}
}
