package repository

import (
	"context"
	"errors"

	"cyberlab/internal/model"

	"gorm.io/gorm"
)

type VmTemplateRepository interface {
	Create(ctx context.Context, template *model.VmTemplate) error
	Update(ctx context.Context, template *model.VmTemplate) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.VmTemplate, error)
	GetByName(ctx context.Context, name string) (*model.VmTemplate, error)
	List(ctx context.Context) ([]*model.VmTemplate, error)
	ListActive(ctx context.Context) ([]*model.VmTemplate, error)

	CreateMapping(ctx context.Context, mapping *model.TemplateNodeMapping) error
	UpdateMapping(ctx context.Context, mapping *model.TemplateNodeMapping) error
	DeleteMapping(ctx context.Context, id int64) error
	DeleteMappingsByTemplate(ctx context.Context, templateID int64) error
	GetMapping(ctx context.Context, templateID int64, nodeName string) (*model.TemplateNodeMapping, error)
	ListMappings(ctx context.Context, templateID int64) ([]*model.TemplateNodeMapping, error)
}

func NewVmTemplateRepository(r *Repository) VmTemplateRepository {
	return &vmTemplateRepository{Repository: r}
}

type vmTemplateRepository struct {
	*Repository
}

func (r *vmTemplateRepository) Create(ctx context.Context, template *model.VmTemplate) error {
	return r.DB(ctx).Create(template).Error
}

func (r *vmTemplateRepository) Update(ctx context.Context, template *model.VmTemplate) error {
	return r.DB(ctx).Save(template).Error
}

func (r *vmTemplateRepository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&model.VmTemplate{}).Error
}

func (r *vmTemplateRepository) GetByID(ctx context.Context, id int64) (*model.VmTemplate, error) {
	var template model.VmTemplate
	if err := r.DB(ctx).Where("id = ?", id).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *vmTemplateRepository) GetByName(ctx context.Context, name string) (*model.VmTemplate, error) {
	var template model.VmTemplate
	if err := r.DB(ctx).Where("template_name = ?", name).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *vmTemplateRepository) List(ctx context.Context) ([]*model.VmTemplate, error) {
	var templates []*model.VmTemplate
	if err := r.DB(ctx).Order("id ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *vmTemplateRepository) ListActive(ctx context.Context) ([]*model.VmTemplate, error) {
	var templates []*model.VmTemplate
	if err := r.DB(ctx).Where("is_active = ?", 1).Order("id ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *vmTemplateRepository) CreateMapping(ctx context.Context, mapping *model.TemplateNodeMapping) error {
	return r.DB(ctx).Create(mapping).Error
}

func (r *vmTemplateRepository) UpdateMapping(ctx context.Context, mapping *model.TemplateNodeMapping) error {
	return r.DB(ctx).Save(mapping).Error
}

func (r *vmTemplateRepository) DeleteMapping(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&model.TemplateNodeMapping{}).Error
}

func (r *vmTemplateRepository) DeleteMappingsByTemplate(ctx context.Context, templateID int64) error {
	return r.DB(ctx).Where("template_id = ?", templateID).Delete(&model.TemplateNodeMapping{}).Error
}

func (r *vmTemplateRepository) GetMapping(ctx context.Context, templateID int64, nodeName string) (*model.TemplateNodeMapping, error) {
	var mapping model.TemplateNodeMapping
	if err := r.DB(ctx).Where("template_id = ? AND node_name = ?", templateID, nodeName).First(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

func (r *vmTemplateRepository) ListMappings(ctx context.Context, templateID int64) ([]*model.TemplateNodeMapping, error) {
	var mappings []*model.TemplateNodeMapping
	if err := r.DB(ctx).Where("template_id = ?", templateID).Order("node_name ASC").Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}
