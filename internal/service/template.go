package service

import (
	"context"

	v1 "cyberlab/api/v1"
	"cyberlab/internal/model"
	"cyberlab/internal/repository"
	"cyberlab/pkg/log"

	"go.uber.org/zap"
)

// TemplateService maintains vm_template rows plus the per-node availability
// map that tells the orchestrator which VMID to clone on each node.
type TemplateService interface {
	CreateTemplate(ctx context.Context, req *v1.CreateTemplateRequest) (int64, error)
	UpdateTemplate(ctx context.Context, id int64, req *v1.UpdateTemplateRequest) error
	DeleteTemplate(ctx context.Context, id int64) error
	GetTemplate(ctx context.Context, id int64) (*v1.TemplateDetail, error)
	ListTemplates(ctx context.Context, activeOnly bool) ([]v1.TemplateDetail, error)

	AddMapping(ctx context.Context, templateID int64, req *v1.CreateTemplateMappingRequest) error
	RemoveMapping(ctx context.Context, templateID int64, nodeName string) error
	AvailableNodes(ctx context.Context, templateID int64) ([]string, error)
	// ResolveTemplateID returns the clone source VMID for the template on
	// the given node, or a *MappingNotFoundError listing the nodes that do
	// carry it.
	ResolveTemplateID(ctx context.Context, template *model.VmTemplate, nodeName string) (uint32, error)
}

func NewTemplateService(
	service *Service,
	templateRepo repository.VmTemplateRepository,
	logger *log.Logger,
) TemplateService {
	return &templateService{
		Service:      service,
		templateRepo: templateRepo,
		logger:       logger,
	}
}

type templateService struct {
	*Service
	templateRepo repository.VmTemplateRepository
	logger       *log.Logger
}

func (s *templateService) CreateTemplate(ctx context.Context, req *v1.CreateTemplateRequest) (int64, error) {
	existing, err := s.templateRepo.GetByName(ctx, req.Name)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, v1.ErrBadRequest
	}
	memory := req.Memory
	if memory <= 0 {
		memory = 2048
	}
	cores := req.Cores
	if cores <= 0 {
		cores = 2
	}
	template := &model.VmTemplate{
		TemplateName: req.Name,
		Description:  req.Description,
		Memory:       memory,
		Cores:        cores,
		IsActive:     1,
	}
	if err := s.templateRepo.Create(ctx, template); err != nil {
		return 0, err
	}
	return template.Id, nil
}

func (s *templateService) UpdateTemplate(ctx context.Context, id int64, req *v1.UpdateTemplateRequest) error {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if template == nil {
		return v1.ErrNotFound
	}
	if req.Description != nil {
		template.Description = *req.Description
	}
	if req.Memory != nil {
		template.Memory = *req.Memory
	}
	if req.Cores != nil {
		template.Cores = *req.Cores
	}
	if req.IsActive != nil {
		if *req.IsActive {
			template.IsActive = 1
		} else {
			template.IsActive = 0
		}
	}
	return s.templateRepo.Update(ctx, template)
}

func (s *templateService) DeleteTemplate(ctx context.Context, id int64) error {
	return s.tm.Transaction(ctx, func(ctx context.Context) error {
		if err := s.templateRepo.DeleteMappingsByTemplate(ctx, id); err != nil {
			return err
		}
		return s.templateRepo.Delete(ctx, id)
	})
}

func (s *templateService) templateDetail(ctx context.Context, template *model.VmTemplate) (*v1.TemplateDetail, error) {
	mappings, err := s.templateRepo.ListMappings(ctx, template.Id)
	if err != nil {
		return nil, err
	}
	detail := &v1.TemplateDetail{
		Id:          template.Id,
		Name:        template.TemplateName,
		Description: template.Description,
		Memory:      template.Memory,
		Cores:       template.Cores,
		IsActive:    template.IsActive == 1,
	}
	for _, mapping := range mappings {
		detail.Mappings = append(detail.Mappings, v1.TemplateMappingDetail{
			NodeName:     mapping.NodeName,
			TemplateVMID: mapping.TemplateVMID,
		})
	}
	return detail, nil
}

func (s *templateService) GetTemplate(ctx context.Context, id int64) (*v1.TemplateDetail, error) {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to load template", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if template == nil {
		return nil, v1.ErrNotFound
	}
	return s.templateDetail(ctx, template)
}

func (s *templateService) ListTemplates(ctx context.Context, activeOnly bool) ([]v1.TemplateDetail, error) {
	var (
		templates []*model.VmTemplate
		err       error
	)
	if activeOnly {
		templates, err = s.templateRepo.ListActive(ctx)
	} else {
		templates, err = s.templateRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	details := make([]v1.TemplateDetail, 0, len(templates))
	for _, template := range templates {
		detail, err := s.templateDetail(ctx, template)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

func (s *templateService) AddMapping(ctx context.Context, templateID int64, req *v1.CreateTemplateMappingRequest) error {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return err
	}
	if template == nil {
		return v1.ErrNotFound
	}
	existing, err := s.templateRepo.GetMapping(ctx, templateID, req.NodeName)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.TemplateVMID = req.TemplateVMID
		return s.templateRepo.UpdateMapping(ctx, existing)
	}
	return s.templateRepo.CreateMapping(ctx, &model.TemplateNodeMapping{
		TemplateID:   templateID,
		NodeName:     req.NodeName,
		TemplateVMID: req.TemplateVMID,
	})
}

func (s *templateService) RemoveMapping(ctx context.Context, templateID int64, nodeName string) error {
	mapping, err := s.templateRepo.GetMapping(ctx, templateID, nodeName)
	if err != nil {
		return err
	}
	if mapping == nil {
		return v1.ErrNotFound
	}
	return s.templateRepo.DeleteMapping(ctx, mapping.Id)
}

func (s *templateService) AvailableNodes(ctx context.Context, templateID int64) ([]string, error) {
	mappings, err := s.templateRepo.ListMappings(ctx, templateID)
	if err != nil {
		return nil, err
	}
	nodes := make([]string, 0, len(mappings))
	for _, mapping := range mappings {
		nodes = append(nodes, mapping.NodeName)
	}
	return nodes, nil
}

func (s *templateService) ResolveTemplateID(ctx context.Context, template *model.VmTemplate, nodeName string) (uint32, error) {
	mapping, err := s.templateRepo.GetMapping(ctx, template.Id, nodeName)
	if err != nil {
		return 0, err
	}
	if mapping != nil {
		return mapping.TemplateVMID, nil
	}
	available, err := s.AvailableNodes(ctx, template.Id)
	if err != nil {
		return 0, err
	}
	return 0, &MappingNotFoundError{
		Template:       template.TemplateName,
		Node:           nodeName,
		AvailableNodes: available,
	}
}
