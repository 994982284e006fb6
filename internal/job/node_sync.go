package job

import (
	"context"

	"cyberlab/internal/repository"
	"cyberlab/internal/service"

	"go.uber.org/zap"
)

// NodeSyncJob keeps the node registry aligned with the cluster.
type NodeSyncJob interface {
	Run(ctx context.Context) error
}

func NewNodeSyncJob(job *Job, nodeService service.NodeRegistryService) NodeSyncJob {
	return &nodeSyncJob{
		Job:         job,
		nodeService: nodeService,
	}
}

type nodeSyncJob struct {
	*Job
	nodeService service.NodeRegistryService
}

func (j *nodeSyncJob) Run(ctx context.Context) error {
	if err := j.nodeService.ReconcileNodes(ctx); err != nil {
		j.logger.WithContext(ctx).Error("node sync failed", zap.Error(err))
		return err
	}
	j.logger.WithContext(ctx).Debug("node sync completed")
	return nil
}

// StatusSweepJob re-reads the backend power state for tracked VMs so the
// database catches state changes made outside the API.
type StatusSweepJob interface {
	Run(ctx context.Context) error
}

func NewStatusSweepJob(job *Job, vmRepo repository.VirtualMachineRepository, deployService service.DeployService) StatusSweepJob {
	return &statusSweepJob{
		Job:           job,
		vmRepo:        vmRepo,
		deployService: deployService,
	}
}

type statusSweepJob struct {
	*Job
	vmRepo        repository.VirtualMachineRepository
	deployService service.DeployService
}

func (j *statusSweepJob) Run(ctx context.Context) error {
	vms, err := j.vmRepo.List(ctx, 0, "", "")
	if err != nil {
		return err
	}
	var failed int
	for _, vm := range vms {
		if _, err := j.deployService.RefreshStatus(ctx, vm.Id); err != nil {
			failed++
			j.logger.WithContext(ctx).Warn("status refresh failed",
				zap.Int64("vm_record_id", vm.Id),
				zap.Uint32("vmid", vm.VMID),
				zap.Error(err))
		}
	}
	j.logger.WithContext(ctx).Debug("status sweep completed",
		zap.Int("total", len(vms)), zap.Int("failed", failed))
	return nil
}
