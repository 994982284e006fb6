package repository

import (
	"context"
	"errors"

	"cyberlab/internal/model"

	"gorm.io/gorm"
)

type ClassroomRepository interface {
	Create(ctx context.Context, classroom *model.Classroom) error
	Update(ctx context.Context, classroom *model.Classroom) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Classroom, error)
	List(ctx context.Context, userID string) ([]*model.Classroom, error)
}

func NewClassroomRepository(r *Repository) ClassroomRepository {
	return &classroomRepository{Repository: r}
}

type classroomRepository struct {
	*Repository
}

func (r *classroomRepository) Create(ctx context.Context, classroom *model.Classroom) error {
	return r.DB(ctx).Create(classroom).Error
}

func (r *classroomRepository) Update(ctx context.Context, classroom *model.Classroom) error {
	return r.DB(ctx).Save(classroom).Error
}

func (r *classroomRepository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&model.Classroom{}).Error
}

func (r *classroomRepository) GetByID(ctx context.Context, id int64) (*model.Classroom, error) {
	var classroom model.Classroom
	if err := r.DB(ctx).Where("id = ?", id).First(&classroom).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &classroom, nil
}

func (r *classroomRepository) List(ctx context.Context, userID string) ([]*model.Classroom, error) {
	query := r.DB(ctx).Model(&model.Classroom{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	var classrooms []*model.Classroom
	if err := query.Order("id ASC").Find(&classrooms).Error; err != nil {
		return nil, err
	}
	return classrooms, nil
}
