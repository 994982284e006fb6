package router

import (
	"cyberlab/internal/handler"
	"cyberlab/pkg/jwt"
	"cyberlab/pkg/log"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

type RouterDeps struct {
	Logger           *log.Logger
	Config           *viper.Viper
	JWT              *jwt.JWT
	Redis            *redis.Client
	UserHandler      *handler.UserHandler
	ClassroomHandler *handler.ClassroomHandler
	NodeHandler      *handler.NodeHandler
	TemplateHandler  *handler.TemplateHandler
	VMHandler        *handler.VMHandler
}
