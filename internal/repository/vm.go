package repository

import (
	"context"
	"errors"

	"cyberlab/internal/model"

	"gorm.io/gorm"
)

type VirtualMachineRepository interface {
	Create(ctx context.Context, vm *model.VirtualMachine) error
	Update(ctx context.Context, vm *model.VirtualMachine) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.VirtualMachine, error)
	GetByVMID(ctx context.Context, vmid uint32) (*model.VirtualMachine, error)
	GetByStudentAndTemplate(ctx context.Context, studentID int64, templateName string) (*model.VirtualMachine, error)
	List(ctx context.Context, studentID int64, nodeName string, status string) ([]*model.VirtualMachine, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*model.VirtualMachine, error)
	ListByClassroom(ctx context.Context, classroomID int64) ([]*model.VirtualMachine, error)
	CountByNode(ctx context.Context, nodeName string) (int64, error)
	CountByNodeAndStorage(ctx context.Context, nodeName string, storage string) (int64, error)
}

func NewVirtualMachineRepository(r *Repository) VirtualMachineRepository {
	return &virtualMachineRepository{Repository: r}
}

type virtualMachineRepository struct {
	*Repository
}

func (r *virtualMachineRepository) Create(ctx context.Context, vm *model.VirtualMachine) error {
	return r.DB(ctx).Create(vm).Error
}

func (r *virtualMachineRepository) Update(ctx context.Context, vm *model.VirtualMachine) error {
	return r.DB(ctx).Save(vm).Error
}

func (r *virtualMachineRepository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&model.VirtualMachine{}).Error
}

func (r *virtualMachineRepository) GetByID(ctx context.Context, id int64) (*model.VirtualMachine, error) {
	var vm model.VirtualMachine
	if err := r.DB(ctx).Where("id = ?", id).First(&vm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vm, nil
}

func (r *virtualMachineRepository) GetByVMID(ctx context.Context, vmid uint32) (*model.VirtualMachine, error) {
	var vm model.VirtualMachine
	if err := r.DB(ctx).Where("vmid = ?", vmid).First(&vm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vm, nil
}

func (r *virtualMachineRepository) GetByStudentAndTemplate(ctx context.Context, studentID int64, templateName string) (*model.VirtualMachine, error) {
	var vm model.VirtualMachine
	if err := r.DB(ctx).Where("student_id = ? AND template_name = ?", studentID, templateName).First(&vm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vm, nil
}

func (r *virtualMachineRepository) List(ctx context.Context, studentID int64, nodeName string, status string) ([]*model.VirtualMachine, error) {
	query := r.DB(ctx).Model(&model.VirtualMachine{})
	if studentID > 0 {
		query = query.Where("student_id = ?", studentID)
	}
	if nodeName != "" {
		query = query.Where("node_name = ?", nodeName)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var vms []*model.VirtualMachine
	if err := query.Order("id ASC").Find(&vms).Error; err != nil {
		return nil, err
	}
	return vms, nil
}

func (r *virtualMachineRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.VirtualMachine, error) {
	var vms []*model.VirtualMachine
	if err := r.DB(ctx).Where("student_id = ?", studentID).Order("id ASC").Find(&vms).Error; err != nil {
		return nil, err
	}
	return vms, nil
}

func (r *virtualMachineRepository) ListByClassroom(ctx context.Context, classroomID int64) ([]*model.VirtualMachine, error) {
	var vms []*model.VirtualMachine
	err := r.DB(ctx).
		Joins("JOIN student ON student.id = virtual_machine.student_id").
		Where("student.classroom_id = ?", classroomID).
		Order("virtual_machine.id ASC").
		Find(&vms).Error
	if err != nil {
		return nil, err
	}
	return vms, nil
}

func (r *virtualMachineRepository) CountByNode(ctx context.Context, nodeName string) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&model.VirtualMachine{}).
		Where("node_name = ?", nodeName).
		Count(&count).Error
	return count, err
}

func (r *virtualMachineRepository) CountByNodeAndStorage(ctx context.Context, nodeName string, storage string) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&model.VirtualMachine{}).
		Where("node_name = ? AND storage = ?", nodeName, storage).
		Count(&count).Error
	return count, err
}
