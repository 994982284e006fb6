package repository

import (
	"context"
	"errors"

	"cyberlab/internal/model"

	"gorm.io/gorm"
)

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Student, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Student, error)
	GetByUsername(ctx context.Context, username string) (*model.Student, error)
	ListByClassroom(ctx context.Context, classroomID int64) ([]*model.Student, error)
}

func NewStudentRepository(r *Repository) StudentRepository {
	return &studentRepository{Repository: r}
}

type studentRepository struct {
	*Repository
}

func (r *studentRepository) Create(ctx context.Context, student *model.Student) error {
	return r.DB(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *model.Student) error {
	return r.DB(ctx).Save(student).Error
}

func (r *studentRepository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&model.Student{}).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	var student model.Student
	if err := r.DB(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Student, error) {
	var students []*model.Student
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) GetByUsername(ctx context.Context, username string) (*model.Student, error) {
	var student model.Student
	if err := r.DB(ctx).Where("username = ?", username).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) ListByClassroom(ctx context.Context, classroomID int64) ([]*model.Student, error) {
	var students []*model.Student
	if err := r.DB(ctx).Where("classroom_id = ?", classroomID).Order("id ASC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}
