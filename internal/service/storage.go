package service

import (
	"context"
	"sync"

	"cyberlab/internal/model"
	"cyberlab/internal/repository"
	"cyberlab/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// StorageAllocatorService spreads clones across a node's storage pools with
// a weighted round-robin cursor persisted on node_config.
type StorageAllocatorService interface {
	// SelectStorage returns the pool for the next VM on the node and
	// advances the persisted cursor. Falls back to the node's legacy
	// storage_pool column, then to the configured default, when the node
	// has no usable pool rows.
	SelectStorage(ctx context.Context, node *model.NodeConfig) (string, error)
	// CandidatePools expands the node's active, under-capacity pools by
	// weight, in pool id order.
	CandidatePools(ctx context.Context, node *model.NodeConfig) ([]string, error)
}

func NewStorageAllocatorService(
	service *Service,
	nodeRepo repository.NodeRepository,
	storageRepo repository.NodeStorageRepository,
	vmRepo repository.VirtualMachineRepository,
	conf *viper.Viper,
	logger *log.Logger,
) StorageAllocatorService {
	return &storageAllocatorService{
		Service:     service,
		nodeRepo:    nodeRepo,
		storageRepo: storageRepo,
		vmRepo:      vmRepo,
		conf:        conf,
		logger:      logger,
	}
}

type storageAllocatorService struct {
	*Service
	nodeRepo    repository.NodeRepository
	storageRepo repository.NodeStorageRepository
	vmRepo      repository.VirtualMachineRepository
	conf        *viper.Viper
	logger      *log.Logger

	// one mutex per node id so concurrent deployments on the same node
	// advance the cursor one at a time
	nodeLocks sync.Map
}

func (s *storageAllocatorService) lockFor(nodeID int64) *sync.Mutex {
	mu, _ := s.nodeLocks.LoadOrStore(nodeID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *storageAllocatorService) CandidatePools(ctx context.Context, node *model.NodeConfig) ([]string, error) {
	pools, err := s.storageRepo.ListActiveByNode(ctx, node.Id)
	if err != nil {
		return nil, err
	}
	var candidates []string
	for _, pool := range pools {
		if pool.MaxVMs != nil {
			used, err := s.vmRepo.CountByNodeAndStorage(ctx, node.NodeName, pool.StorageName)
			if err != nil {
				return nil, err
			}
			if used >= *pool.MaxVMs {
				continue
			}
		}
		// Weight 0 parks the pool: it stays configured but receives nothing.
		if pool.Weight <= 0 {
			continue
		}
		for i := int64(0); i < pool.Weight; i++ {
			candidates = append(candidates, pool.StorageName)
		}
	}
	return candidates, nil
}

func (s *storageAllocatorService) SelectStorage(ctx context.Context, node *model.NodeConfig) (string, error) {
	mu := s.lockFor(node.Id)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock so the cursor reflects the previous caller.
	current, err := s.nodeRepo.GetByID(ctx, node.Id)
	if err != nil {
		return "", err
	}
	if current == nil {
		current = node
	}

	candidates, err := s.CandidatePools(ctx, current)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		if current.StoragePool != "" {
			return current.StoragePool, nil
		}
		return s.conf.GetString("deploy.default_storage"), nil
	}

	idx := int(current.StorageCursor) % len(candidates)
	if idx < 0 {
		idx += len(candidates)
	}
	selected := candidates[idx]

	next := (current.StorageCursor + 1) % int64(len(candidates))
	if err := s.nodeRepo.UpdateStorageCursor(ctx, current.Id, next); err != nil {
		// Selection already happened; a stuck cursor repeats a pool but
		// never blocks the deployment.
		s.logger.WithContext(ctx).Warn("failed to advance storage cursor",
			zap.String("node", current.NodeName), zap.Error(err))
	}

	s.logger.WithContext(ctx).Debug("storage selected",
		zap.String("node", current.NodeName),
		zap.String("storage", selected),
		zap.Int64("cursor", current.StorageCursor))
	return selected, nil
}
