package service

import (
	"context"
	"errors"
	"testing"

	v1 "cyberlab/api/v1"
	mock_backend "cyberlab/test/mocks/backend"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(e *testEnv, backend BackendClient) NodeRegistryService {
	return NewNodeRegistryService(e.base, e.nodeRepo, e.storageRepo, e.vmRepo, backend, e.conf, e.logger)
}

func TestReconcileNodesRegistersNewNodes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	backend := mock_backend.NewMockBackendClient(ctrl)
	backend.EXPECT().GetNodes(gomock.Any()).Return([]string{"pve1", "pve2"}, nil)

	registry := newRegistry(e, backend)
	require.NoError(t, registry.ReconcileNodes(context.Background()))

	nodes, err := e.nodeRepo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	for _, node := range nodes {
		assert.Equal(t, int64(30), node.MaxVMs)
		assert.Equal(t, int64(1), node.Priority)
		assert.Equal(t, int8(1), node.IsActive)
		assert.Equal(t, "local-lvm", node.StoragePool)
		assert.NotEmpty(t, node.ResourceHash)
		assert.False(t, node.LastSyncTime.IsZero())
	}
}

func TestReconcileNodesPreservesAdminSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	node := e.seedNode(t, "pve1", 50, 9)
	node.StoragePool = "ceph-pool"
	node.ResourceHash = nodeResourceHash(node)
	require.NoError(t, e.db.Save(node).Error)

	backend := mock_backend.NewMockBackendClient(ctrl)
	backend.EXPECT().GetNodes(gomock.Any()).Return([]string{"pve1"}, nil).Times(2)

	registry := newRegistry(e, backend)
	require.NoError(t, registry.ReconcileNodes(context.Background()))
	require.NoError(t, registry.ReconcileNodes(context.Background()))

	stored, err := e.nodeRepo.GetByName(context.Background(), "pve1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), stored.MaxVMs)
	assert.Equal(t, int64(9), stored.Priority)
	assert.Equal(t, "ceph-pool", stored.StoragePool)
}

func TestReconcileNodesLeavesDepartedNodesAlone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	e.seedNode(t, "pve1", 10, 1)
	e.seedNode(t, "pve2", 10, 1)

	// pve2 drops out of discovery, only an admin may deactivate it.
	backend := mock_backend.NewMockBackendClient(ctrl)
	backend.EXPECT().GetNodes(gomock.Any()).Return([]string{"pve1"}, nil)

	require.NoError(t, newRegistry(e, backend).ReconcileNodes(context.Background()))

	absent, err := e.nodeRepo.GetByName(context.Background(), "pve2")
	require.NoError(t, err)
	require.NotNil(t, absent)
	assert.Equal(t, int8(1), absent.IsActive)
}

func TestReconcileNodesBackendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	backend := mock_backend.NewMockBackendClient(ctrl)
	backend.EXPECT().GetNodes(gomock.Any()).Return(nil, errors.New("connection refused"))

	err := newRegistry(e, backend).ReconcileNodes(context.Background())
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "list nodes", backendErr.Op)
}

func TestIsEligible(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	node := e.seedNode(t, "pve1", 1, 1)
	classroom := e.seedClassroom(t, "class-a")
	student := e.seedStudent(t, "bob", classroom.Id)

	registry := newRegistry(e, mock_backend.NewMockBackendClient(ctrl))

	eligible, err := registry.IsEligible(context.Background(), "pve1")
	require.NoError(t, err)
	assert.True(t, eligible)

	e.seedVM(t, student.Id, 100, "pve1", "kali", "local-lvm")
	eligible, err = registry.IsEligible(context.Background(), "pve1")
	require.NoError(t, err)
	assert.False(t, eligible)

	node.IsActive = 0
	require.NoError(t, e.db.Save(node).Error)
	eligible, err = registry.IsEligible(context.Background(), "pve1")
	require.NoError(t, err)
	assert.False(t, eligible)

	eligible, err = registry.IsEligible(context.Background(), "no-such-node")
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestUpdateNodeRejectsNegativeCapacity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	node := e.seedNode(t, "pve1", 10, 1)

	registry := newRegistry(e, mock_backend.NewMockBackendClient(ctrl))
	bad := int64(-1)
	err := registry.UpdateNode(context.Background(), node.Id, &v1.UpdateNodeRequest{MaxVMs: &bad})
	require.Error(t, err)

	stored, err := e.nodeRepo.GetByID(context.Background(), node.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.MaxVMs)
}

func TestGetStatistics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	e.seedNode(t, "pve1", 10, 1)
	inactive := e.seedNode(t, "pve2", 10, 1)
	inactive.IsActive = 0
	require.NoError(t, e.db.Save(inactive).Error)
	classroom := e.seedClassroom(t, "class-a")
	student := e.seedStudent(t, "bob", classroom.Id)
	e.seedVM(t, student.Id, 100, "pve1", "kali", "local-lvm")

	stats, err := newRegistry(e, mock_backend.NewMockBackendClient(ctrl)).GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalNodes)
	assert.Equal(t, int64(1), stats.ActiveNodes)
	assert.Equal(t, int64(1), stats.TotalVMs)
	assert.Equal(t, int64(10), stats.TotalCapacity)
	assert.InDelta(t, 0.1, stats.OverallUtilization, 0.0001)
	assert.Len(t, stats.Nodes, 2)
}

func TestStorageLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	node := e.seedNode(t, "pve1", 10, 1)
	registry := newRegistry(e, mock_backend.NewMockBackendClient(ctrl))

	// Weight 0 parks the pool; only negative weights are rejected.
	require.NoError(t, registry.CreateStorage(context.Background(), node.Id, &v1.CreateStorageRequest{
		StorageName: "local-lvm",
		Weight:      0,
	}))
	storages, err := registry.ListStorages(context.Background(), node.Id)
	require.NoError(t, err)
	require.Len(t, storages, 1)
	assert.Equal(t, int64(0), storages[0].Weight)

	err = registry.CreateStorage(context.Background(), node.Id, &v1.CreateStorageRequest{
		StorageName: "bad",
		Weight:      -1,
	})
	require.Error(t, err)

	badWeight := int64(-2)
	err = registry.UpdateStorage(context.Background(), storages[0].Id, &v1.UpdateStorageRequest{Weight: &badWeight})
	require.Error(t, err)

	goodWeight := int64(3)
	require.NoError(t, registry.UpdateStorage(context.Background(), storages[0].Id, &v1.UpdateStorageRequest{Weight: &goodWeight}))

	require.NoError(t, registry.DeleteStorage(context.Background(), storages[0].Id))
	storages, err = registry.ListStorages(context.Background(), node.Id)
	require.NoError(t, err)
	assert.Empty(t, storages)
}

func TestListStoragesUnknownNode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	_, err := newRegistry(e, mock_backend.NewMockBackendClient(ctrl)).ListStorages(context.Background(), 999)
	assert.ErrorIs(t, err, v1.ErrNodeNotFound)
}
