package repository

import (
	"context"
	"errors"
	"time"

	"cyberlab/internal/model"

	"gorm.io/gorm"
)

type NodeRepository interface {
	Create(ctx context.Context, node *model.NodeConfig) error
	Update(ctx context.Context, node *model.NodeConfig) error
	GetByID(ctx context.Context, id int64) (*model.NodeConfig, error)
	GetByName(ctx context.Context, nodeName string) (*model.NodeConfig, error)
	List(ctx context.Context) ([]*model.NodeConfig, error)
	ListActive(ctx context.Context) ([]*model.NodeConfig, error)
	// UpdateStorageCursor persists the round-robin cursor as a standalone
	// update, outside any surrounding deployment transaction.
	UpdateStorageCursor(ctx context.Context, id int64, cursor int64) error
}

func NewNodeRepository(r *Repository) NodeRepository {
	return &nodeRepository{Repository: r}
}

type nodeRepository struct {
	*Repository
}

func (r *nodeRepository) Create(ctx context.Context, node *model.NodeConfig) error {
	return r.DB(ctx).Create(node).Error
}

func (r *nodeRepository) Update(ctx context.Context, node *model.NodeConfig) error {
	return r.DB(ctx).Save(node).Error
}

func (r *nodeRepository) GetByID(ctx context.Context, id int64) (*model.NodeConfig, error) {
	var node model.NodeConfig
	if err := r.DB(ctx).Where("id = ?", id).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

func (r *nodeRepository) GetByName(ctx context.Context, nodeName string) (*model.NodeConfig, error) {
	var node model.NodeConfig
	if err := r.DB(ctx).Where("node_name = ?", nodeName).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

func (r *nodeRepository) List(ctx context.Context) ([]*model.NodeConfig, error) {
	var nodes []*model.NodeConfig
	if err := r.DB(ctx).Order("id ASC").Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *nodeRepository) ListActive(ctx context.Context) ([]*model.NodeConfig, error) {
	var nodes []*model.NodeConfig
	if err := r.DB(ctx).Where("is_active = ?", 1).Order("id ASC").Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *nodeRepository) UpdateStorageCursor(ctx context.Context, id int64, cursor int64) error {
	return r.DB(ctx).
		Model(&model.NodeConfig{}).
		Where("id = ?", id).
		UpdateColumn("storage_cursor", cursor).Error
}

type NodeStorageRepository interface {
	Create(ctx context.Context, storage *model.NodeStorage) error
	Update(ctx context.Context, storage *model.NodeStorage) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.NodeStorage, error)
	ListByNode(ctx context.Context, nodeID int64) ([]*model.NodeStorage, error)
	ListActiveByNode(ctx context.Context, nodeID int64) ([]*model.NodeStorage, error)
}

func NewNodeStorageRepository(r *Repository) NodeStorageRepository {
	return &nodeStorageRepository{Repository: r}
}

type nodeStorageRepository struct {
	*Repository
}

func (r *nodeStorageRepository) Create(ctx context.Context, storage *model.NodeStorage) error {
	now := time.Now()
	if storage.CreateTime.IsZero() {
		storage.CreateTime = now
		storage.UpdateTime = now
	}
	return r.DB(ctx).Create(storage).Error
}

func (r *nodeStorageRepository) Update(ctx context.Context, storage *model.NodeStorage) error {
	return r.DB(ctx).Save(storage).Error
}

func (r *nodeStorageRepository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&model.NodeStorage{}).Error
}

func (r *nodeStorageRepository) GetByID(ctx context.Context, id int64) (*model.NodeStorage, error) {
	var storage model.NodeStorage
	if err := r.DB(ctx).Where("id = ?", id).First(&storage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &storage, nil
}

func (r *nodeStorageRepository) ListByNode(ctx context.Context, nodeID int64) ([]*model.NodeStorage, error) {
	var storages []*model.NodeStorage
	if err := r.DB(ctx).Where("node_id = ?", nodeID).Order("id ASC").Find(&storages).Error; err != nil {
		return nil, err
	}
	return storages, nil
}

func (r *nodeStorageRepository) ListActiveByNode(ctx context.Context, nodeID int64) ([]*model.NodeStorage, error) {
	var storages []*model.NodeStorage
	if err := r.DB(ctx).Where("node_id = ? AND is_active = ?", nodeID, 1).Order("id ASC").Find(&storages).Error; err != nil {
		return nil, err
	}
	return storages, nil
}
