package service

import (
	"context"
	"fmt"
	"time"

	v1 "cyberlab/api/v1"
	"cyberlab/internal/model"
	"cyberlab/internal/repository"
	"cyberlab/pkg/hash"
	"cyberlab/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type NodeRegistryService interface {
	// ReconcileNodes discovers cluster nodes from the backend and upserts
	// node_config rows. Existing rows keep their admin-tuned fields; rows
	// for nodes absent from discovery are left untouched, deactivation is
	// an administrative action.
	ReconcileNodes(ctx context.Context) error
	CurrentLoad(ctx context.Context, nodeName string) (int64, error)
	IsEligible(ctx context.Context, nodeName string) (bool, error)

	GetNode(ctx context.Context, id int64) (*v1.NodeDetail, error)
	ListNodes(ctx context.Context) ([]v1.NodeDetail, error)
	UpdateNode(ctx context.Context, id int64, req *v1.UpdateNodeRequest) error
	GetStatistics(ctx context.Context) (*v1.NodeStatistics, error)

	CreateStorage(ctx context.Context, nodeID int64, req *v1.CreateStorageRequest) error
	UpdateStorage(ctx context.Context, id int64, req *v1.UpdateStorageRequest) error
	DeleteStorage(ctx context.Context, id int64) error
	ListStorages(ctx context.Context, nodeID int64) ([]v1.StorageDetail, error)
}

func NewNodeRegistryService(
	service *Service,
	nodeRepo repository.NodeRepository,
	storageRepo repository.NodeStorageRepository,
	vmRepo repository.VirtualMachineRepository,
	backend BackendClient,
	conf *viper.Viper,
	logger *log.Logger,
) NodeRegistryService {
	return &nodeRegistryService{
		Service:     service,
		nodeRepo:    nodeRepo,
		storageRepo: storageRepo,
		vmRepo:      vmRepo,
		backend:     backend,
		conf:        conf,
		logger:      logger,
	}
}

type nodeRegistryService struct {
	*Service
	nodeRepo    repository.NodeRepository
	storageRepo repository.NodeStorageRepository
	vmRepo      repository.VirtualMachineRepository
	backend     BackendClient
	conf        *viper.Viper
	logger      *log.Logger
}

func (s *nodeRegistryService) ReconcileNodes(ctx context.Context) error {
	names, err := s.backend.GetNodes(ctx)
	if err != nil {
		return &BackendError{Op: "list nodes", Err: err}
	}
	now := time.Now()
	defaultMax := s.conf.GetInt64("deploy.max_vms_per_node")
	if defaultMax <= 0 {
		defaultMax = 30
	}

	for _, name := range names {
		existing, err := s.nodeRepo.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing == nil {
			node := &model.NodeConfig{
				NodeName:     name,
				MaxVMs:       defaultMax,
				Priority:     1,
				IsActive:     1,
				StoragePool:  s.conf.GetString("deploy.default_storage"),
				LastSyncTime: now,
			}
			node.ResourceHash = nodeResourceHash(node)
			if err := s.nodeRepo.Create(ctx, node); err != nil {
				return err
			}
			s.logger.WithContext(ctx).Info("registered cluster node", zap.String("node", name))
			continue
		}
		// Admin settings stay untouched; only bump the sync marker when
		// the tracked shape changed.
		h := nodeResourceHash(existing)
		if existing.ResourceHash != h {
			existing.ResourceHash = h
			existing.LastSyncTime = now
			if err := s.nodeRepo.Update(ctx, existing); err != nil {
				return err
			}
		}
	}
	// Nodes absent from discovery keep their rows and their active flag; a
	// transient cluster hiccup must not pull a node out of placement.
	return nil
}

func nodeResourceHash(node *model.NodeConfig) string {
	h, err := hash.CalculateResourceHash(map[string]interface{}{
		"node_name": node.NodeName,
		"max_vms":   node.MaxVMs,
		"priority":  node.Priority,
		"is_active": node.IsActive,
	})
	if err != nil {
		return ""
	}
	return h
}

func (s *nodeRegistryService) CurrentLoad(ctx context.Context, nodeName string) (int64, error) {
	return s.vmRepo.CountByNode(ctx, nodeName)
}

func (s *nodeRegistryService) IsEligible(ctx context.Context, nodeName string) (bool, error) {
	node, err := s.nodeRepo.GetByName(ctx, nodeName)
	if err != nil {
		return false, err
	}
	if node == nil || node.IsActive != 1 {
		return false, nil
	}
	load, err := s.vmRepo.CountByNode(ctx, nodeName)
	if err != nil {
		return false, err
	}
	return load < node.MaxVMs, nil
}

func (s *nodeRegistryService) nodeDetail(ctx context.Context, node *model.NodeConfig) (*v1.NodeDetail, error) {
	load, err := s.vmRepo.CountByNode(ctx, node.NodeName)
	if err != nil {
		return nil, err
	}
	storages, err := s.ListStorages(ctx, node.Id)
	if err != nil {
		return nil, err
	}
	available := node.MaxVMs - load
	if available < 0 {
		available = 0
	}
	var utilization float64
	if node.MaxVMs > 0 {
		utilization = float64(load) / float64(node.MaxVMs)
	}
	return &v1.NodeDetail{
		Id:             node.Id,
		NodeName:       node.NodeName,
		MaxVMs:         node.MaxVMs,
		Priority:       node.Priority,
		IsActive:       node.IsActive == 1,
		StoragePool:    node.StoragePool,
		VMCount:        load,
		AvailableSlots: available,
		Utilization:    utilization,
		Storages:       storages,
	}, nil
}

func (s *nodeRegistryService) GetNode(ctx context.Context, id int64) (*v1.NodeDetail, error) {
	node, err := s.nodeRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to load node", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if node == nil {
		return nil, v1.ErrNodeNotFound
	}
	return s.nodeDetail(ctx, node)
}

func (s *nodeRegistryService) ListNodes(ctx context.Context) ([]v1.NodeDetail, error) {
	nodes, err := s.nodeRepo.List(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list nodes", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	details := make([]v1.NodeDetail, 0, len(nodes))
	for _, node := range nodes {
		detail, err := s.nodeDetail(ctx, node)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

func (s *nodeRegistryService) UpdateNode(ctx context.Context, id int64, req *v1.UpdateNodeRequest) error {
	node, err := s.nodeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if node == nil {
		return v1.ErrNodeNotFound
	}
	if req.MaxVMs != nil {
		if *req.MaxVMs < 0 {
			return fmt.Errorf("max_vms must not be negative")
		}
		node.MaxVMs = *req.MaxVMs
	}
	if req.Priority != nil {
		node.Priority = *req.Priority
	}
	if req.IsActive != nil {
		if *req.IsActive {
			node.IsActive = 1
		} else {
			node.IsActive = 0
		}
	}
	if req.StoragePool != nil {
		node.StoragePool = *req.StoragePool
	}
	node.ResourceHash = nodeResourceHash(node)
	return s.nodeRepo.Update(ctx, node)
}

func (s *nodeRegistryService) GetStatistics(ctx context.Context) (*v1.NodeStatistics, error) {
	nodes, err := s.nodeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := &v1.NodeStatistics{}
	for _, node := range nodes {
		stats.TotalNodes++
		detail, err := s.nodeDetail(ctx, node)
		if err != nil {
			return nil, err
		}
		stats.Nodes = append(stats.Nodes, *detail)
		if node.IsActive != 1 {
			continue
		}
		stats.ActiveNodes++
		stats.TotalVMs += detail.VMCount
		stats.TotalCapacity += node.MaxVMs
	}
	if stats.TotalCapacity > 0 {
		stats.OverallUtilization = float64(stats.TotalVMs) / float64(stats.TotalCapacity)
	}
	return stats, nil
}

func (s *nodeRegistryService) CreateStorage(ctx context.Context, nodeID int64, req *v1.CreateStorageRequest) error {
	node, err := s.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return err
	}
	if node == nil {
		return v1.ErrNodeNotFound
	}
	// Weight 0 is a parked pool: configured, never selected.
	if req.Weight < 0 {
		return fmt.Errorf("weight must not be negative")
	}
	storage := &model.NodeStorage{
		NodeID:      nodeID,
		StorageName: req.StorageName,
		Weight:      req.Weight,
		MaxVMs:      req.MaxVMs,
		IsActive:    1,
	}
	return s.storageRepo.Create(ctx, storage)
}

func (s *nodeRegistryService) UpdateStorage(ctx context.Context, id int64, req *v1.UpdateStorageRequest) error {
	storage, err := s.storageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if storage == nil {
		return v1.ErrStorageNotFound
	}
	if req.Weight != nil {
		if *req.Weight < 0 {
			return fmt.Errorf("weight must not be negative")
		}
		storage.Weight = *req.Weight
	}
	if req.MaxVMs != nil {
		storage.MaxVMs = req.MaxVMs
	}
	if req.IsActive != nil {
		if *req.IsActive {
			storage.IsActive = 1
		} else {
			storage.IsActive = 0
		}
	}
	return s.storageRepo.Update(ctx, storage)
}

func (s *nodeRegistryService) DeleteStorage(ctx context.Context, id int64) error {
	return s.storageRepo.Delete(ctx, id)
}

func (s *nodeRegistryService) ListStorages(ctx context.Context, nodeID int64) ([]v1.StorageDetail, error) {
	node, err := s.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, v1.ErrNodeNotFound
	}
	storages, err := s.storageRepo.ListByNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	details := make([]v1.StorageDetail, 0, len(storages))
	for _, storage := range storages {
		used, err := s.vmRepo.CountByNodeAndStorage(ctx, node.NodeName, storage.StorageName)
		if err != nil {
			return nil, err
		}
		details = append(details, v1.StorageDetail{
			Id:          storage.Id,
			StorageName: storage.StorageName,
			Weight:      storage.Weight,
			MaxVMs:      storage.MaxVMs,
			IsActive:    storage.IsActive == 1,
			VMCount:     used,
		})
	}
	return details, nil
}
