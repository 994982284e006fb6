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

func newBulk(e *testEnv, backend BackendClient) BulkDeployService {
	placement := NewPlacementService(e.base, e.nodeRepo, e.vmRepo, e.templateRepo, e.logger)
	allocator := NewStorageAllocatorService(e.base, e.nodeRepo, e.storageRepo, e.vmRepo, e.conf, e.logger)
	templates := NewTemplateService(e.base, e.templateRepo, e.logger)
	deploy := newDeploy(e, backend)
	return NewBulkDeployService(
		e.base, deploy, placement, allocator, templates,
		e.templateRepo, e.studentRepo, e.vmRepo, e.conf, e.logger,
	)
}

func boolPtr(b bool) *bool { return &b }

// expectDeploy wires the full backend call sequence for one successful clone.
func expectDeploy(backend *mock_backend.MockBackendClient, node string, vmid uint32) {
	backend.EXPECT().GetNextFreeVMID(gomock.Any()).Return(vmid, nil)
	backend.EXPECT().
		CloneVM(gomock.Any(), node, gomock.Any(), vmid, gomock.Any(), gomock.Any(), gomock.Any()).
		Return("UPID:clone", nil)
	backend.EXPECT().WaitForTask(gomock.Any(), node, "UPID:clone").Return(nil)
	backend.EXPECT().ApplyPerformanceDefaults(gomock.Any(), node, vmid).Return(nil)
	backend.EXPECT().StartVM(gomock.Any(), node, vmid).Return("", nil)
	backend.EXPECT().GetVMConfig(gomock.Any(), node, vmid).Return(map[string]interface{}{}, nil)
	backend.EXPECT().ConsoleURL(node, vmid).Return("")
}

func TestDeployManyFailFastRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	node := e.seedNode(t, "pve1", 10, 1)
	e.seedStorage(t, node.Id, "local-lvm", 1, nil)
	template := e.seedTemplate(t, "kali")
	e.seedMapping(t, template.Id, "pve1", 9000)
	classroom := e.seedClassroom(t, "class-a")
	alice := e.seedStudent(t, "alice", classroom.Id)
	bob := e.seedStudent(t, "bob", classroom.Id)

	backend := mock_backend.NewMockBackendClient(ctrl)
	// First student deploys, second fails at clone.
	expectDeploy(backend, "pve1", 200)
	backend.EXPECT().GetNextFreeVMID(gomock.Any()).Return(uint32(201), nil)
	backend.EXPECT().
		CloneVM(gomock.Any(), "pve1", gomock.Any(), uint32(201), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("storage full"))
	// Rollback tears down the first student's VM.
	backend.EXPECT().StopVM(gomock.Any(), "pve1", uint32(200)).Return("", nil)
	backend.EXPECT().DeleteVM(gomock.Any(), "pve1", uint32(200), true).Return("", nil)

	result, err := newBulk(e, backend).DeployMany(context.Background(), &v1.BulkDeployVMRequest{
		StudentIDs: []int64{alice.Id, bob.Id},
		TemplateID: template.Id,
		FailFast:   boolPtr(true),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, bob.Id, result.Failed[0].StudentID)
	assert.Contains(t, result.Failed[0].Error, "storage full")

	// The rolled-back record is gone from the store as well.
	vms, err := e.vmRepo.ListByStudent(context.Background(), alice.Id)
	require.NoError(t, err)
	assert.Empty(t, vms)
}

func TestDeployManyRollbackSparesPreexistingVMs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	node := e.seedNode(t, "pve1", 10, 1)
	e.seedStorage(t, node.Id, "local-lvm", 1, nil)
	template := e.seedTemplate(t, "kali")
	e.seedMapping(t, template.Id, "pve1", 9000)
	classroom := e.seedClassroom(t, "class-a")
	alice := e.seedStudent(t, "alice", classroom.Id)
	bob := e.seedStudent(t, "bob", classroom.Id)

	// Alice already has her machine from an earlier run; the batch only
	// short-circuits onto it.
	existing := e.seedVM(t, alice.Id, 190, "pve1", "kali", "local-lvm")

	backend := mock_backend.NewMockBackendClient(ctrl)
	backend.EXPECT().GetNextFreeVMID(gomock.Any()).Return(uint32(191), nil)
	backend.EXPECT().
		CloneVM(gomock.Any(), "pve1", gomock.Any(), uint32(191), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("storage full"))
	// No StopVM/DeleteVM for vmid 190: the rollback must not touch it.

	result, err := newBulk(e, backend).DeployMany(context.Background(), &v1.BulkDeployVMRequest{
		StudentIDs: []int64{alice.Id, bob.Id},
		TemplateID: template.Id,
		FailFast:   boolPtr(true),
	})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, bob.Id, result.Failed[0].StudentID)

	kept, err := e.vmRepo.GetByID(context.Background(), existing.Id)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, uint32(190), kept.VMID)
}

func TestDeployManyContinueOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	node := e.seedNode(t, "pve1", 10, 1)
	e.seedStorage(t, node.Id, "local-lvm", 1, nil)
	template := e.seedTemplate(t, "kali")
	e.seedMapping(t, template.Id, "pve1", 9000)
	classroom := e.seedClassroom(t, "class-a")
	alice := e.seedStudent(t, "alice", classroom.Id)
	bob := e.seedStudent(t, "bob", classroom.Id)
	carol := e.seedStudent(t, "carol", classroom.Id)

	backend := mock_backend.NewMockBackendClient(ctrl)
	expectDeploy(backend, "pve1", 210)
	backend.EXPECT().GetNextFreeVMID(gomock.Any()).Return(uint32(211), nil)
	backend.EXPECT().
		CloneVM(gomock.Any(), "pve1", gomock.Any(), uint32(211), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("locked"))
	expectDeploy(backend, "pve1", 212)

	result, err := newBulk(e, backend).DeployMany(context.Background(), &v1.BulkDeployVMRequest{
		StudentIDs: []int64{alice.Id, bob.Id, carol.Id},
		TemplateID: template.Id,
		FailFast:   boolPtr(false),
	})
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, bob.Id, result.Failed[0].StudentID)

	// Results come back ordered by student for stable responses.
	assert.Equal(t, alice.Id, result.Succeeded[0].StudentID)
	assert.Equal(t, carol.Id, result.Succeeded[1].StudentID)
}

func TestDeployManyRequiresFailFast(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	_, err := newBulk(e, mock_backend.NewMockBackendClient(ctrl)).DeployMany(context.Background(), &v1.BulkDeployVMRequest{
		StudentIDs: []int64{1},
		TemplateID: 1,
	})
	require.Error(t, err)
}

func TestDeployManyUnknownStudent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	template := e.seedTemplate(t, "kali")
	classroom := e.seedClassroom(t, "class-a")
	alice := e.seedStudent(t, "alice", classroom.Id)

	_, err := newBulk(e, mock_backend.NewMockBackendClient(ctrl)).DeployMany(context.Background(), &v1.BulkDeployVMRequest{
		StudentIDs: []int64{alice.Id, alice.Id + 99},
		TemplateID: template.Id,
		FailFast:   boolPtr(true),
	})
	assert.ErrorIs(t, err, v1.ErrNotFound)
}

func TestAssignNodesSpreadsBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	a := e.seedNode(t, "pve1", 10, 1)
	b := e.seedNode(t, "pve2", 10, 1)
	e.seedStorage(t, a.Id, "local-lvm", 1, nil)
	e.seedStorage(t, b.Id, "local-lvm", 1, nil)
	template := e.seedTemplate(t, "kali")
	e.seedMapping(t, template.Id, "pve1", 9000)
	e.seedMapping(t, template.Id, "pve2", 9001)
	classroom := e.seedClassroom(t, "class-a")

	var ids []int64
	for _, name := range []string{"s1", "s2", "s3", "s4"} {
		ids = append(ids, e.seedStudent(t, name, classroom.Id).Id)
	}

	// A least-loaded batch on two empty nodes alternates between them.
	plan, err := newBulk(e, mock_backend.NewMockBackendClient(ctrl)).PlanDeployment(context.Background(), &v1.PlanDeploymentRequest{
		StudentIDs: ids,
		TemplateID: template.Id,
	})
	require.NoError(t, err)
	require.Len(t, plan, 4)
	perNode := map[string]int{}
	for _, assignment := range plan {
		perNode[assignment.Node]++
		assert.Equal(t, "local-lvm", assignment.Storage)
	}
	assert.Equal(t, 2, perNode["pve1"])
	assert.Equal(t, 2, perNode["pve2"])
}

func TestAssignNodesSkipsNodesWithoutTemplate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	a := e.seedNode(t, "pve1", 10, 1)
	e.seedNode(t, "pve2", 10, 1)
	e.seedStorage(t, a.Id, "local-lvm", 1, nil)
	template := e.seedTemplate(t, "kali")
	e.seedMapping(t, template.Id, "pve1", 9000)
	classroom := e.seedClassroom(t, "class-a")
	s1 := e.seedStudent(t, "s1", classroom.Id)
	s2 := e.seedStudent(t, "s2", classroom.Id)

	plan, err := newBulk(e, mock_backend.NewMockBackendClient(ctrl)).PlanDeployment(context.Background(), &v1.PlanDeploymentRequest{
		StudentIDs: []int64{s1.Id, s2.Id},
		TemplateID: template.Id,
	})
	require.NoError(t, err)
	for _, assignment := range plan {
		assert.Equal(t, "pve1", assignment.Node)
	}
}

func TestAssignNodesCapacityExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	e.seedNode(t, "pve1", 1, 1)
	template := e.seedTemplate(t, "kali")
	e.seedMapping(t, template.Id, "pve1", 9000)
	classroom := e.seedClassroom(t, "class-a")
	s1 := e.seedStudent(t, "s1", classroom.Id)
	s2 := e.seedStudent(t, "s2", classroom.Id)

	// Two students, one slot: the batch itself exhausts the node.
	_, err := newBulk(e, mock_backend.NewMockBackendClient(ctrl)).PlanDeployment(context.Background(), &v1.PlanDeploymentRequest{
		StudentIDs: []int64{s1.Id, s2.Id},
		TemplateID: template.Id,
	})
	assert.ErrorIs(t, err, v1.ErrNoAvailableNodes)
}

func TestPlanDeploymentIsDryRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := newTestEnv(t)
	node := e.seedNode(t, "pve1", 10, 1)
	e.seedStorage(t, node.Id, "fast", 1, nil)
	e.seedStorage(t, node.Id, "slow", 1, nil)
	template := e.seedTemplate(t, "kali")
	e.seedMapping(t, template.Id, "pve1", 9000)
	classroom := e.seedClassroom(t, "class-a")
	s1 := e.seedStudent(t, "s1", classroom.Id)
	s2 := e.seedStudent(t, "s2", classroom.Id)

	plan, err := newBulk(e, mock_backend.NewMockBackendClient(ctrl)).PlanDeployment(context.Background(), &v1.PlanDeploymentRequest{
		StudentIDs: []int64{s1.Id, s2.Id},
		TemplateID: template.Id,
	})
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "fast", plan[0].Storage)
	assert.Equal(t, "slow", plan[1].Storage)

	// The persisted cursor is untouched by planning.
	stored, err := e.nodeRepo.GetByID(context.Background(), node.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.StorageCursor)
}
