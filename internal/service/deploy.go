package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	crand "crypto/rand"

	v1 "cyberlab/api/v1"
	"cyberlab/internal/model"
	"cyberlab/internal/repository"
	"cyberlab/pkg/log"

	"github.com/gorilla/websocket"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type DeployService interface {
	DeployVM(ctx context.Context, req *v1.DeployVMRequest) (*v1.VMDetail, error)
	GetVM(ctx context.Context, id int64) (*v1.VMDetail, error)
	ListVMs(ctx context.Context, req *v1.ListVMRequest) ([]v1.VMDetail, error)
	StartVM(ctx context.Context, id int64) error
	StopVM(ctx context.Context, id int64) error
	ResetVM(ctx context.Context, id int64) error
	SuspendVM(ctx context.Context, id int64) error
	ResumeVM(ctx context.Context, id int64) error
	DeleteVM(ctx context.Context, id int64) error
	RefreshStatus(ctx context.Context, id int64) (*v1.RefreshStatusResponseData, error)
	GetConsole(ctx context.Context, id int64) (*v1.GetVMConsoleResponseData, error)
	DialConsoleWebsocket(ctx context.Context, token string) (*websocket.Conn, error)
}

func NewDeployService(
	service *Service,
	placement PlacementService,
	storage StorageAllocatorService,
	templateSvc TemplateService,
	nodeRepo repository.NodeRepository,
	templateRepo repository.VmTemplateRepository,
	studentRepo repository.StudentRepository,
	classroomRepo repository.ClassroomRepository,
	vmRepo repository.VirtualMachineRepository,
	backend BackendClient,
	conf *viper.Viper,
	logger *log.Logger,
) DeployService {
	return &deployService{
		Service:       service,
		placement:     placement,
		storage:       storage,
		templateSvc:   templateSvc,
		nodeRepo:      nodeRepo,
		templateRepo:  templateRepo,
		studentRepo:   studentRepo,
		classroomRepo: classroomRepo,
		vmRepo:        vmRepo,
		backend:       backend,
		conf:          conf,
		logger:        logger,
	}
}

type consoleSession struct {
	node    string
	vmid    uint32
	created time.Time
}

type deployService struct {
	*Service
	placement     PlacementService
	storage       StorageAllocatorService
	templateSvc   TemplateService
	nodeRepo      repository.NodeRepository
	templateRepo  repository.VmTemplateRepository
	studentRepo   repository.StudentRepository
	classroomRepo repository.ClassroomRepository
	vmRepo        repository.VirtualMachineRepository
	backend       BackendClient
	conf          *viper.Viper
	logger        *log.Logger

	consoleSessions sync.Map
}

var vmNameInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
var vmNameDashRuns = regexp.MustCompile(`-{2,}`)

// buildVMName produces a DNS-safe name from classroom, student and VMID.
// Proxmox rejects names with anything outside [a-z0-9-].
func buildVMName(classroom, student string, vmid uint32) string {
	name := fmt.Sprintf("%s-%s-%d", classroom, student, vmid)
	name = strings.ToLower(name)
	name = vmNameInvalidChars.ReplaceAllString(name, "-")
	name = vmNameDashRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > 63 {
		name = strings.Trim(name[:63], "-")
	}
	if name == "" {
		name = fmt.Sprintf("vm-%d", vmid)
	}
	return name
}

// parseIPFromConfig extracts the static address from an ipconfig0 entry such
// as "ip=10.20.0.5/24,gw=10.20.0.1". DHCP entries yield no address.
func parseIPFromConfig(config map[string]interface{}) string {
	raw, ok := config["ipconfig0"].(string)
	if !ok || raw == "" {
		return ""
	}
	for _, part := range strings.Split(raw, ",") {
		if !strings.HasPrefix(part, "ip=") {
			continue
		}
		addr := strings.TrimPrefix(part, "ip=")
		if addr == "dhcp" {
			return ""
		}
		if idx := strings.Index(addr, "/"); idx > 0 {
			addr = addr[:idx]
		}
		return addr
	}
	return ""
}

func (s *deployService) cloneTimeout() time.Duration {
	secs := s.conf.GetInt("deploy.clone_timeout_seconds")
	if secs <= 0 {
		secs = 300
	}
	return time.Duration(secs) * time.Second
}

func (s *deployService) selectNodeFor(ctx context.Context, req *v1.DeployVMRequest, templateID int64) (*model.NodeConfig, error) {
	if req.Node != "" {
		node, err := s.nodeRepo.GetByName(ctx, req.Node)
		if err != nil {
			return nil, err
		}
		if node == nil {
			return nil, v1.ErrNodeNotFound
		}
		if node.IsActive != 1 {
			return nil, v1.ErrNoAvailableNodes
		}
		load, err := s.vmRepo.CountByNode(ctx, node.NodeName)
		if err != nil {
			return nil, err
		}
		if load >= node.MaxVMs {
			return nil, v1.ErrNoAvailableNodes
		}
		return node, nil
	}

	policy, err := ParsePlacementPolicy(s.conf.GetString("deploy.node_policy"))
	if err != nil {
		return nil, v1.ErrInvalidPolicy
	}
	node, err := s.placement.SelectNode(ctx, policy, templateID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, v1.ErrNoAvailableNodes
	}
	return node, nil
}

func (s *deployService) DeployVM(ctx context.Context, req *v1.DeployVMRequest) (*v1.VMDetail, error) {
	student, err := s.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, v1.ErrNotFound
	}
	classroom, err := s.classroomRepo.GetByID(ctx, student.ClassroomID)
	if err != nil {
		return nil, err
	}
	template, err := s.templateRepo.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, v1.ErrNotFound
	}
	if template.IsActive != 1 {
		return nil, v1.ErrTemplateInactive
	}

	// A student keeps at most one VM per template. Re-deploying returns the
	// existing record instead of cloning again.
	existing, err := s.vmRepo.GetByStudentAndTemplate(ctx, req.StudentID, template.TemplateName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.WithContext(ctx).Info("student already has a vm for template",
			zap.Int64("student_id", req.StudentID),
			zap.String("template", template.TemplateName))
		return vmDetail(existing), nil
	}

	node, err := s.selectNodeFor(ctx, req, template.Id)
	if err != nil {
		return nil, err
	}

	templateVMID, err := s.templateSvc.ResolveTemplateID(ctx, template, node.NodeName)
	if err != nil {
		return nil, err
	}

	newID, err := s.backend.GetNextFreeVMID(ctx)
	if err != nil {
		return nil, &BackendError{Op: "allocate vmid", Err: err}
	}

	classroomName := ""
	if classroom != nil {
		classroomName = classroom.ClassroomName
	}
	name := buildVMName(classroomName, student.StudentName, newID)

	linked := s.conf.GetBool("deploy.use_linked_clones")
	storage := ""
	if !linked || s.conf.GetBool("deploy.force_storage_for_linked_clones") {
		storage, err = s.storage.SelectStorage(ctx, node)
		if err != nil {
			return nil, err
		}
	}

	s.logger.WithContext(ctx).Info("deploying vm",
		zap.Int64("student_id", student.Id),
		zap.String("template", template.TemplateName),
		zap.String("node", node.NodeName),
		zap.Uint32("vmid", newID),
		zap.String("storage", storage),
		zap.Bool("linked", linked))

	upid, err := s.backend.CloneVM(ctx, node.NodeName, templateVMID, newID, name, storage, linked)
	if err != nil {
		return nil, &BackendError{Op: "clone", Err: err}
	}
	waitCtx, cancel := context.WithTimeout(ctx, s.cloneTimeout())
	defer cancel()
	if err := s.backend.WaitForTask(waitCtx, node.NodeName, upid); err != nil {
		return nil, &BackendError{Op: "clone task", Err: err}
	}

	if err := s.backend.ApplyPerformanceDefaults(ctx, node.NodeName, newID); err != nil {
		s.cleanupClone(ctx, node.NodeName, newID)
		return nil, &BackendError{Op: "performance defaults", Err: err}
	}

	if _, err := s.backend.StartVM(ctx, node.NodeName, newID); err != nil {
		s.cleanupClone(ctx, node.NodeName, newID)
		return nil, &BackendError{Op: "start", Err: err}
	}

	ip := ""
	if config, cerr := s.backend.GetVMConfig(ctx, node.NodeName, newID); cerr == nil {
		ip = parseIPFromConfig(config)
	}

	vm := &model.VirtualMachine{
		StudentID:    student.Id,
		VMID:         newID,
		NodeName:     node.NodeName,
		TemplateName: template.TemplateName,
		Storage:      storage,
		Status:       model.VMStatusRunning,
		IPAddress:    ip,
		ConsoleURL:   s.backend.ConsoleURL(node.NodeName, newID),
	}
	if err := s.vmRepo.Create(ctx, vm); err != nil {
		s.logger.WithContext(ctx).Error("failed to persist vm record",
			zap.Uint32("vmid", newID), zap.Error(err))
		return nil, fmt.Errorf("persisting vm record for vmid %d: %w", newID, err)
	}
	return vmDetail(vm), nil
}

// cleanupClone rolls a half-deployed clone back so a retry does not leak an
// orphan VM on the backend.
func (s *deployService) cleanupClone(ctx context.Context, nodeName string, vmid uint32) {
	if _, err := s.backend.DeleteVM(ctx, nodeName, vmid, true); err != nil {
		s.logger.WithContext(ctx).Error("failed to clean up clone after deploy failure",
			zap.Uint32("vmid", vmid), zap.Error(err))
	}
}

func vmDetail(vm *model.VirtualMachine) *v1.VMDetail {
	return &v1.VMDetail{
		Id:           vm.Id,
		StudentID:    vm.StudentID,
		VMID:         vm.VMID,
		NodeName:     vm.NodeName,
		TemplateName: vm.TemplateName,
		Storage:      vm.Storage,
		Status:       vm.Status,
		IPAddress:    vm.IPAddress,
		ConsoleURL:   vm.ConsoleURL,
	}
}

func (s *deployService) GetVM(ctx context.Context, id int64) (*v1.VMDetail, error) {
	vm, err := s.vmRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vm == nil {
		return nil, v1.ErrNotFound
	}
	return vmDetail(vm), nil
}

func (s *deployService) ListVMs(ctx context.Context, req *v1.ListVMRequest) ([]v1.VMDetail, error) {
	var (
		vms []*model.VirtualMachine
		err error
	)
	switch {
	case req.ClassroomID > 0:
		vms, err = s.vmRepo.ListByClassroom(ctx, req.ClassroomID)
	case req.StudentID > 0:
		vms, err = s.vmRepo.ListByStudent(ctx, req.StudentID)
	default:
		vms, err = s.vmRepo.List(ctx, 0, "", "")
	}
	if err != nil {
		return nil, err
	}
	details := make([]v1.VMDetail, 0, len(vms))
	for _, vm := range vms {
		details = append(details, *vmDetail(vm))
	}
	return details, nil
}

// setStatus runs a backend power command and records the resulting status
// only after the backend accepted it.
func (s *deployService) setStatus(
	ctx context.Context,
	id int64,
	op string,
	command func(ctx context.Context, node string, vmid uint32) (string, error),
	status string,
) error {
	vm, err := s.vmRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if vm == nil {
		return v1.ErrNotFound
	}
	if _, err := command(ctx, vm.NodeName, vm.VMID); err != nil {
		s.logger.WithContext(ctx).Error("backend power command failed",
			zap.String("op", op), zap.Uint32("vmid", vm.VMID), zap.Error(err))
		return &BackendError{Op: op, Err: err}
	}
	vm.Status = status
	return s.vmRepo.Update(ctx, vm)
}

func (s *deployService) StartVM(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, "start", s.backend.StartVM, model.VMStatusRunning)
}

func (s *deployService) StopVM(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, "stop", s.backend.StopVM, model.VMStatusStopped)
}

func (s *deployService) ResetVM(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, "reset", s.backend.ResetVM, model.VMStatusRunning)
}

func (s *deployService) SuspendVM(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, "suspend", s.backend.SuspendVM, model.VMStatusStopped)
}

func (s *deployService) ResumeVM(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, "resume", s.backend.ResumeVM, model.VMStatusRunning)
}

func (s *deployService) DeleteVM(ctx context.Context, id int64) error {
	vm, err := s.vmRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if vm == nil {
		return v1.ErrNotFound
	}
	// Stop is best effort; a VM that is already off makes stop fail.
	if _, err := s.backend.StopVM(ctx, vm.NodeName, vm.VMID); err != nil {
		s.logger.WithContext(ctx).Debug("stop before destroy failed",
			zap.Uint32("vmid", vm.VMID), zap.Error(err))
	}
	if _, err := s.backend.DeleteVM(ctx, vm.NodeName, vm.VMID, true); err != nil {
		return &BackendError{Op: "destroy", Err: err}
	}
	return s.vmRepo.Delete(ctx, vm.Id)
}

func (s *deployService) RefreshStatus(ctx context.Context, id int64) (*v1.RefreshStatusResponseData, error) {
	vm, err := s.vmRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vm == nil {
		return nil, v1.ErrNotFound
	}
	status, err := s.backend.GetVMStatus(ctx, vm.NodeName, vm.VMID)
	if err != nil {
		return nil, &BackendError{Op: "status", Err: err}
	}
	raw, _ := status["status"].(string)
	switch raw {
	case "running":
		vm.Status = model.VMStatusRunning
	case "stopped":
		vm.Status = model.VMStatusStopped
	default:
		vm.Status = model.VMStatusError
		if err := s.vmRepo.Update(ctx, vm); err != nil {
			return nil, err
		}
		return &v1.RefreshStatusResponseData{Status: vm.Status, RawStatus: raw}, nil
	}
	if err := s.vmRepo.Update(ctx, vm); err != nil {
		return nil, err
	}
	return &v1.RefreshStatusResponseData{Status: vm.Status}, nil
}

func (s *deployService) GetConsole(ctx context.Context, id int64) (*v1.GetVMConsoleResponseData, error) {
	vm, err := s.vmRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vm == nil {
		return nil, v1.ErrNotFound
	}
	if _, err := s.backend.VNCProxy(ctx, vm.NodeName, vm.VMID); err != nil {
		return nil, &BackendError{Op: "vncproxy", Err: err}
	}
	buf := make([]byte, 24)
	if _, err := crand.Read(buf); err != nil {
		return nil, err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	s.consoleSessions.Store(token, &consoleSession{
		node:    vm.NodeName,
		vmid:    vm.VMID,
		created: time.Now(),
	})
	return &v1.GetVMConsoleResponseData{
		ConsoleURL: s.backend.ConsoleURL(vm.NodeName, vm.VMID),
		WSToken:    token,
	}, nil
}

func (s *deployService) DialConsoleWebsocket(ctx context.Context, token string) (*websocket.Conn, error) {
	value, ok := s.consoleSessions.Load(token)
	if !ok {
		return nil, v1.ErrUnauthorized
	}
	session := value.(*consoleSession)
	if time.Since(session.created) > 2*time.Minute {
		s.consoleSessions.Delete(token)
		return nil, v1.ErrUnauthorized
	}
	s.consoleSessions.Delete(token)

	proxy, err := s.backend.VNCProxy(ctx, session.node, session.vmid)
	if err != nil {
		return nil, &BackendError{Op: "vncproxy", Err: err}
	}
	ticket, _ := proxy["ticket"].(string)
	port := fmt.Sprintf("%v", proxy["port"])
	path := fmt.Sprintf("/api2/json/nodes/%s/qemu/%d/vncwebsocket", session.node, session.vmid)
	return s.backend.WebSocket(path, map[string]string{
		"port":      port,
		"vncticket": ticket,
	})
}
