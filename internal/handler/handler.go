package handler

import (
	"cyberlab/pkg/jwt"
	"cyberlab/pkg/log"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	logger *log.Logger
}

func NewHandler(logger *log.Logger) *Handler {
	return &Handler{logger: logger}
}

func GetUserIdFromCtx(ctx *gin.Context) string {
	v, exists := ctx.Get("claims")
	if !exists {
		return ""
	}
	claims, ok := v.(*jwt.MyCustomClaims)
	if !ok {
		return ""
	}
	return claims.UserId
}
