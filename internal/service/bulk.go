package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	v1 "cyberlab/api/v1"
	"cyberlab/internal/model"
	"cyberlab/internal/repository"
	"cyberlab/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BulkDeployService interface {
	// DeployMany provisions one VM per student. The request's FailFast
	// flag picks the batch policy: true stops on the first failure and
	// deletes everything the batch already created, false records failures
	// and keeps going.
	DeployMany(ctx context.Context, req *v1.BulkDeployVMRequest) (*v1.BulkDeployResponseData, error)
	// PlanDeployment computes node and storage assignments without touching
	// the backend or advancing any cursor.
	PlanDeployment(ctx context.Context, req *v1.PlanDeploymentRequest) ([]v1.PlanAssignment, error)
}

func NewBulkDeployService(
	service *Service,
	deploy DeployService,
	placement PlacementService,
	storage StorageAllocatorService,
	templateSvc TemplateService,
	templateRepo repository.VmTemplateRepository,
	studentRepo repository.StudentRepository,
	vmRepo repository.VirtualMachineRepository,
	conf *viper.Viper,
	logger *log.Logger,
) BulkDeployService {
	return &bulkDeployService{
		Service:      service,
		deploy:       deploy,
		placement:    placement,
		storage:      storage,
		templateSvc:  templateSvc,
		templateRepo: templateRepo,
		studentRepo:  studentRepo,
		vmRepo:       vmRepo,
		conf:         conf,
		logger:       logger,
	}
}

type bulkDeployService struct {
	*Service
	deploy       DeployService
	placement    PlacementService
	storage      StorageAllocatorService
	templateSvc  TemplateService
	templateRepo repository.VmTemplateRepository
	studentRepo  repository.StudentRepository
	vmRepo       repository.VirtualMachineRepository
	conf         *viper.Viper
	logger       *log.Logger
}

type plannedSlot struct {
	candidate NodeCandidate
	assigned  int64
}

func (p *plannedSlot) remaining() int64 {
	return p.candidate.Node.MaxVMs - p.candidate.Load - p.assigned
}

// assignNodes maps each student to a node carrying the template, spreading
// the batch under the configured policy while tracking the slots this batch
// itself consumes.
func (s *bulkDeployService) assignNodes(ctx context.Context, studentIDs []int64, templateID int64) (map[int64]string, error) {
	policy, err := ParsePlacementPolicy(s.conf.GetString("deploy.node_policy"))
	if err != nil {
		return nil, v1.ErrInvalidPolicy
	}
	candidates, err := s.placement.EligibleNodes(ctx)
	if err != nil {
		return nil, err
	}
	mapped, err := s.templateSvc.AvailableNodes(ctx, templateID)
	if err != nil {
		return nil, err
	}
	carrier := make(map[string]bool, len(mapped))
	for _, name := range mapped {
		carrier[name] = true
	}

	slots := make([]*plannedSlot, 0, len(candidates))
	for _, candidate := range candidates {
		if !carrier[candidate.Node.NodeName] {
			continue
		}
		slots = append(slots, &plannedSlot{candidate: candidate})
	}
	if len(slots) == 0 {
		return nil, v1.ErrNoAvailableNodes
	}

	assignments := make(map[int64]string, len(studentIDs))
	rrCursor := 0
	for _, studentID := range studentIDs {
		open := make([]*plannedSlot, 0, len(slots))
		for _, slot := range slots {
			if slot.remaining() > 0 {
				open = append(open, slot)
			}
		}
		if len(open) == 0 {
			return nil, v1.ErrNoAvailableNodes
		}

		var picked *plannedSlot
		switch policy {
		case PolicyLeastLoaded:
			sort.SliceStable(open, func(i, j int) bool {
				return open[i].candidate.Load+open[i].assigned < open[j].candidate.Load+open[j].assigned
			})
			picked = open[0]
		case PolicyPriority:
			sort.SliceStable(open, func(i, j int) bool {
				return open[i].candidate.Node.Priority > open[j].candidate.Node.Priority
			})
			picked = open[0]
		case PolicyRandom:
			picked = open[rand.Intn(len(open))]
		case PolicyRoundRobin:
			picked = open[rrCursor%len(open)]
			rrCursor++
		}
		picked.assigned++
		assignments[studentID] = picked.candidate.Node.NodeName
	}
	return assignments, nil
}

func (s *bulkDeployService) DeployMany(ctx context.Context, req *v1.BulkDeployVMRequest) (*v1.BulkDeployResponseData, error) {
	if req.FailFast == nil {
		return nil, fmt.Errorf("fail_fast must be set")
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
	students, err := s.studentRepo.GetByIDs(ctx, req.StudentIDs)
	if err != nil {
		return nil, err
	}
	if len(students) != len(req.StudentIDs) {
		return nil, v1.ErrNotFound
	}

	assignments, err := s.assignNodes(ctx, req.StudentIDs, req.TemplateID)
	if err != nil {
		return nil, err
	}

	if *req.FailFast {
		return s.deploySequentialWithRollback(ctx, req, template, assignments)
	}
	return s.deployConcurrent(ctx, req, assignments)
}

func (s *bulkDeployService) deploySequentialWithRollback(
	ctx context.Context,
	req *v1.BulkDeployVMRequest,
	template *model.VmTemplate,
	assignments map[int64]string,
) (*v1.BulkDeployResponseData, error) {
	result := &v1.BulkDeployResponseData{
		Succeeded: []v1.VMDetail{},
		Failed:    []v1.BulkDeployFailure{},
	}
	// Rollback may only touch VMs this batch created. A deploy that
	// short-circuits onto a student's pre-existing VM counts as a success
	// but must survive the compensation.
	created := []v1.VMDetail{}
	for _, studentID := range req.StudentIDs {
		existing, err := s.vmRepo.GetByStudentAndTemplate(ctx, studentID, template.TemplateName)
		if err != nil {
			return nil, err
		}
		detail, err := s.deploy.DeployVM(ctx, &v1.DeployVMRequest{
			StudentID:  studentID,
			TemplateID: req.TemplateID,
			Node:       assignments[studentID],
		})
		if err != nil {
			s.logger.WithContext(ctx).Error("bulk deploy failed, rolling back batch",
				zap.Int64("student_id", studentID),
				zap.Int("created", len(created)),
				zap.Error(err))
			for _, vm := range created {
				if derr := s.deploy.DeleteVM(ctx, vm.Id); derr != nil {
					s.logger.WithContext(ctx).Error("rollback delete failed",
						zap.Int64("vm_record_id", vm.Id), zap.Error(derr))
				}
			}
			return &v1.BulkDeployResponseData{
				Succeeded: []v1.VMDetail{},
				Failed: []v1.BulkDeployFailure{{
					StudentID: studentID,
					Error:     err.Error(),
				}},
			}, nil
		}
		if existing == nil {
			created = append(created, *detail)
		}
		result.Succeeded = append(result.Succeeded, *detail)
	}
	return result, nil
}

func (s *bulkDeployService) deployConcurrent(
	ctx context.Context,
	req *v1.BulkDeployVMRequest,
	assignments map[int64]string,
) (*v1.BulkDeployResponseData, error) {
	// One worker per node keeps clone traffic on a node serialized; the
	// group bound caps how many nodes clone at once.
	byNode := make(map[string][]int64)
	for _, studentID := range req.StudentIDs {
		node := assignments[studentID]
		byNode[node] = append(byNode[node], studentID)
	}

	limit := s.conf.GetInt("deploy.max_concurrent_nodes")
	if limit <= 0 {
		limit = 4
	}

	var mu sync.Mutex
	result := &v1.BulkDeployResponseData{
		Succeeded: []v1.VMDetail{},
		Failed:    []v1.BulkDeployFailure{},
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for node, studentIDs := range byNode {
		node, studentIDs := node, studentIDs
		group.Go(func() error {
			for _, studentID := range studentIDs {
				detail, err := s.deploy.DeployVM(groupCtx, &v1.DeployVMRequest{
					StudentID:  studentID,
					TemplateID: req.TemplateID,
					Node:       node,
				})
				mu.Lock()
				if err != nil {
					result.Failed = append(result.Failed, v1.BulkDeployFailure{
						StudentID: studentID,
						Error:     err.Error(),
					})
				} else {
					result.Succeeded = append(result.Succeeded, *detail)
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Succeeded, func(i, j int) bool {
		return result.Succeeded[i].StudentID < result.Succeeded[j].StudentID
	})
	sort.Slice(result.Failed, func(i, j int) bool {
		return result.Failed[i].StudentID < result.Failed[j].StudentID
	})
	return result, nil
}

func (s *bulkDeployService) PlanDeployment(ctx context.Context, req *v1.PlanDeploymentRequest) ([]v1.PlanAssignment, error) {
	template, err := s.templateRepo.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, v1.ErrNotFound
	}
	assignments, err := s.assignNodes(ctx, req.StudentIDs, req.TemplateID)
	if err != nil {
		return nil, err
	}

	// Simulate each node's storage cursor locally so the plan stays a dry
	// run.
	type nodeSim struct {
		node   *model.NodeConfig
		pools  []string
		cursor int64
	}
	sims := make(map[string]*nodeSim)
	candidates, err := s.placement.EligibleNodes(ctx)
	if err != nil {
		return nil, err
	}
	for _, candidate := range candidates {
		pools, err := s.storage.CandidatePools(ctx, candidate.Node)
		if err != nil {
			return nil, err
		}
		sims[candidate.Node.NodeName] = &nodeSim{
			node:   candidate.Node,
			pools:  pools,
			cursor: candidate.Node.StorageCursor,
		}
	}

	linked := s.conf.GetBool("deploy.use_linked_clones")
	pinStorage := !linked || s.conf.GetBool("deploy.force_storage_for_linked_clones")

	plan := make([]v1.PlanAssignment, 0, len(req.StudentIDs))
	for _, studentID := range req.StudentIDs {
		nodeName := assignments[studentID]
		storage := ""
		if pinStorage {
			if sim := sims[nodeName]; sim != nil {
				if len(sim.pools) > 0 {
					storage = sim.pools[int(sim.cursor)%len(sim.pools)]
					sim.cursor = (sim.cursor + 1) % int64(len(sim.pools))
				} else if sim.node.StoragePool != "" {
					storage = sim.node.StoragePool
				} else {
					storage = s.conf.GetString("deploy.default_storage")
				}
			}
		}
		plan = append(plan, v1.PlanAssignment{
			StudentID: studentID,
			Node:      nodeName,
			Storage:   storage,
		})
	}
	return plan, nil
}
