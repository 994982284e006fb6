package service

import (
	"context"

	"cyberlab/internal/repository"
	"cyberlab/pkg/log"
	"cyberlab/pkg/proxmox"
	"cyberlab/pkg/sid"

	"github.com/gorilla/websocket"
	"github.com/spf13/viper"
)

type Service struct {
	logger *log.Logger
	sid    *sid.Sid
	tm     repository.Transaction
}

func NewService(tm repository.Transaction, logger *log.Logger, sid *sid.Sid) *Service {
	return &Service{
		logger: logger,
		sid:    sid,
		tm:     tm,
	}
}

// BackendClient is the slice of the virtualization API the services consume.
// *proxmox.ProxmoxClient satisfies it.
type BackendClient interface {
	GetNodes(ctx context.Context) ([]string, error)
	GetNextFreeVMID(ctx context.Context) (uint32, error)
	CloneVM(ctx context.Context, node string, templateID uint32, newID uint32, name string, storage string, linked bool) (string, error)
	ApplyPerformanceDefaults(ctx context.Context, node string, vmid uint32) error
	StartVM(ctx context.Context, node string, vmid uint32) (string, error)
	StopVM(ctx context.Context, node string, vmid uint32) (string, error)
	ResetVM(ctx context.Context, node string, vmid uint32) (string, error)
	SuspendVM(ctx context.Context, node string, vmid uint32) (string, error)
	ResumeVM(ctx context.Context, node string, vmid uint32) (string, error)
	DeleteVM(ctx context.Context, node string, vmid uint32, purge bool) (string, error)
	GetVMStatus(ctx context.Context, node string, vmid uint32) (map[string]interface{}, error)
	GetVMConfig(ctx context.Context, node string, vmid uint32) (map[string]interface{}, error)
	WaitForTask(ctx context.Context, node string, upid string) error
	VNCProxy(ctx context.Context, node string, vmid uint32) (map[string]interface{}, error)
	WebSocket(path string, params map[string]string) (*websocket.Conn, error)
	ConsoleURL(node string, vmid uint32) string
}

func NewBackendClient(conf *viper.Viper) (BackendClient, error) {
	return proxmox.NewProxmoxClient(
		conf.GetString("proxmox.api_url"),
		conf.GetString("proxmox.user_id"),
		conf.GetString("proxmox.user_token"),
	)
}
