//go:build wireinject
// +build wireinject

package wire

import (
	"cyberlab/internal/handler"
	"cyberlab/internal/job"
	"cyberlab/internal/repository"
	"cyberlab/internal/router"
	"cyberlab/internal/server"
	"cyberlab/internal/service"
	"cyberlab/pkg/app"
	"cyberlab/pkg/jwt"
	"cyberlab/pkg/log"
	"cyberlab/pkg/server/http"
	"cyberlab/pkg/sid"

	"github.com/google/wire"
	"github.com/spf13/viper"
)

var repositorySet = wire.NewSet(
	repository.NewDB,
	repository.NewRedis,
	repository.NewRepository,
	repository.NewTransaction,
	repository.NewUserRepository,
	repository.NewClassroomRepository,
	repository.NewStudentRepository,
	repository.NewNodeRepository,
	repository.NewNodeStorageRepository,
	repository.NewVmTemplateRepository,
	repository.NewVirtualMachineRepository,
)

var serviceSet = wire.NewSet(
	service.NewService,
	service.NewBackendClient,
	service.NewUserService,
	service.NewClassroomService,
	service.NewNodeRegistryService,
	service.NewPlacementService,
	service.NewStorageAllocatorService,
	service.NewTemplateService,
	service.NewDeployService,
	service.NewBulkDeployService,
)

var handlerSet = wire.NewSet(
	handler.NewHandler,
	handler.NewUserHandler,
	handler.NewClassroomHandler,
	handler.NewNodeHandler,
	handler.NewTemplateHandler,
	handler.NewVMHandler,
)

var jobSet = wire.NewSet(
	job.NewJob,
	job.NewNodeSyncJob,
	job.NewStatusSweepJob,
)

var serverSet = wire.NewSet(
	server.NewHTTPServer,
	server.NewJobServer,
)

// build App
func newApp(
	httpServer *http.Server,
	jobServer *server.JobServer,
) *app.App {
	return app.NewApp(
		app.WithServer(httpServer, jobServer),
		app.WithName("cyberlab-server"),
	)
}

func NewWire(*viper.Viper, *log.Logger) (*app.App, func(), error) {
	panic(wire.Build(
		repositorySet,
		serviceSet,
		handlerSet,
		jobSet,
		serverSet,
		wire.Struct(new(router.RouterDeps), "*"),
		sid.NewSid,
		jwt.NewJwt,
		newApp,
	))
}
