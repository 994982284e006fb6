package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"cyberlab/internal/model"
	"cyberlab/internal/repository"
	"cyberlab/pkg/log"

	"go.uber.org/zap"
)

// PlacementPolicy selects which cluster node receives the next deployment.
type PlacementPolicy string

const (
	PolicyLeastLoaded PlacementPolicy = "least_loaded"
	PolicyPriority    PlacementPolicy = "priority"
	PolicyRandom      PlacementPolicy = "random"
	PolicyRoundRobin  PlacementPolicy = "round_robin"
)

// ParsePlacementPolicy rejects anything outside the closed policy set.
func ParsePlacementPolicy(s string) (PlacementPolicy, error) {
	switch PlacementPolicy(s) {
	case PolicyLeastLoaded, PolicyPriority, PolicyRandom, PolicyRoundRobin:
		return PlacementPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown placement policy %q", s)
	}
}

type NodeCandidate struct {
	Node *model.NodeConfig
	Load int64
}

type PlacementService interface {
	// SelectNode picks an eligible node under the given policy. Eligible
	// means active and with fewer tracked VMs than max_vms. A non-zero
	// templateID narrows the field to nodes carrying that template.
	SelectNode(ctx context.Context, policy PlacementPolicy, templateID int64) (*model.NodeConfig, error)
	// EligibleNodes returns the active, under-capacity nodes with their
	// current load, ordered by id.
	EligibleNodes(ctx context.Context) ([]NodeCandidate, error)
}

func NewPlacementService(
	service *Service,
	nodeRepo repository.NodeRepository,
	vmRepo repository.VirtualMachineRepository,
	templateRepo repository.VmTemplateRepository,
	logger *log.Logger,
) PlacementService {
	return &placementService{
		Service:      service,
		nodeRepo:     nodeRepo,
		vmRepo:       vmRepo,
		templateRepo: templateRepo,
		logger:       logger,
	}
}

type placementService struct {
	*Service
	nodeRepo     repository.NodeRepository
	vmRepo       repository.VirtualMachineRepository
	templateRepo repository.VmTemplateRepository
	logger       *log.Logger

	rrMu     sync.Mutex
	rrOffset int
}

func (s *placementService) EligibleNodes(ctx context.Context) ([]NodeCandidate, error) {
	nodes, err := s.nodeRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]NodeCandidate, 0, len(nodes))
	for _, node := range nodes {
		load, err := s.vmRepo.CountByNode(ctx, node.NodeName)
		if err != nil {
			return nil, err
		}
		if load >= node.MaxVMs {
			continue
		}
		candidates = append(candidates, NodeCandidate{Node: node, Load: load})
	}
	return candidates, nil
}

func (s *placementService) SelectNode(ctx context.Context, policy PlacementPolicy, templateID int64) (*model.NodeConfig, error) {
	candidates, err := s.EligibleNodes(ctx)
	if err != nil {
		return nil, err
	}
	if templateID > 0 {
		mappings, err := s.templateRepo.ListMappings(ctx, templateID)
		if err != nil {
			return nil, err
		}
		carrier := make(map[string]bool, len(mappings))
		for _, mapping := range mappings {
			carrier[mapping.NodeName] = true
		}
		filtered := candidates[:0]
		for _, candidate := range candidates {
			if carrier[candidate.Node.NodeName] {
				filtered = append(filtered, candidate)
			}
		}
		candidates = filtered
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var picked *model.NodeConfig
	switch policy {
	case PolicyLeastLoaded:
		// Ties break toward the lower node id, which sort keeps stable.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Load < candidates[j].Load
		})
		picked = candidates[0].Node
	case PolicyPriority:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Node.Priority > candidates[j].Node.Priority
		})
		picked = candidates[0].Node
	case PolicyRandom:
		picked = candidates[rand.Intn(len(candidates))].Node
	case PolicyRoundRobin:
		s.rrMu.Lock()
		picked = candidates[s.rrOffset%len(candidates)].Node
		s.rrOffset++
		s.rrMu.Unlock()
	default:
		return nil, fmt.Errorf("unknown placement policy %q", policy)
	}

	s.logger.WithContext(ctx).Debug("placement selected node",
		zap.String("policy", string(policy)),
		zap.String("node", picked.NodeName))
	return picked, nil
}
