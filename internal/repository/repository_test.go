package repository

import (
	"context"
	"path/filepath"
	"testing"

	"cyberlab/internal/model"
	"cyberlab/pkg/log"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *Repository {
	conf := viper.New()
	conf.Set("log.log_level", "error")
	conf.Set("log.encoding", "console")
	conf.Set("log.log_file_name", filepath.Join(t.TempDir(), "test.log"))
	logger := log.NewLog(conf)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Classroom{},
		&model.Student{},
		&model.NodeConfig{},
		&model.NodeStorage{},
		&model.VmTemplate{},
		&model.TemplateNodeMapping{},
		&model.VirtualMachine{},
	))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewRepository(logger, db, nil)
}

func TestNodeRepositoryCursorRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	nodes := NewNodeRepository(repo)
	ctx := context.Background()

	node := &model.NodeConfig{NodeName: "pve1", MaxVMs: 10, Priority: 1, IsActive: 1}
	require.NoError(t, nodes.Create(ctx, node))

	require.NoError(t, nodes.UpdateStorageCursor(ctx, node.Id, 7))

	stored, err := nodes.GetByID(ctx, node.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stored.StorageCursor)
}

func TestNodeRepositoryCursorSkipsStaleStruct(t *testing.T) {
	repo := newTestRepo(t)
	nodes := NewNodeRepository(repo)
	ctx := context.Background()

	node := &model.NodeConfig{NodeName: "pve1", MaxVMs: 10, Priority: 1, IsActive: 1}
	require.NoError(t, nodes.Create(ctx, node))
	require.NoError(t, nodes.UpdateStorageCursor(ctx, node.Id, 3))

	// A later full update from a stale struct must not clobber the cursor
	// column when the caller re-reads first.
	fresh, err := nodes.GetByID(ctx, node.Id)
	require.NoError(t, err)
	fresh.Priority = 5
	require.NoError(t, nodes.Update(ctx, fresh))

	stored, err := nodes.GetByID(ctx, node.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.StorageCursor)
	assert.Equal(t, int64(5), stored.Priority)
}

func TestNodeRepositoryListActive(t *testing.T) {
	repo := newTestRepo(t)
	nodes := NewNodeRepository(repo)
	ctx := context.Background()

	require.NoError(t, nodes.Create(ctx, &model.NodeConfig{NodeName: "pve1", MaxVMs: 10, IsActive: 1}))
	require.NoError(t, nodes.Create(ctx, &model.NodeConfig{NodeName: "pve2", MaxVMs: 10, IsActive: 0}))

	active, err := nodes.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "pve1", active[0].NodeName)

	missing, err := nodes.GetByName(ctx, "pve9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestVirtualMachineRepositoryCounts(t *testing.T) {
	repo := newTestRepo(t)
	vms := NewVirtualMachineRepository(repo)
	ctx := context.Background()

	seed := []model.VirtualMachine{
		{StudentID: 1, VMID: 100, NodeName: "pve1", TemplateName: "kali", Storage: "fast", Status: "running"},
		{StudentID: 2, VMID: 101, NodeName: "pve1", TemplateName: "kali", Storage: "slow", Status: "running"},
		{StudentID: 3, VMID: 102, NodeName: "pve2", TemplateName: "kali", Storage: "fast", Status: "stopped"},
	}
	for i := range seed {
		require.NoError(t, vms.Create(ctx, &seed[i]))
	}

	count, err := vms.CountByNode(ctx, "pve1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = vms.CountByNodeAndStorage(ctx, "pve1", "fast")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	vm, err := vms.GetByStudentAndTemplate(ctx, 2, "kali")
	require.NoError(t, err)
	require.NotNil(t, vm)
	assert.Equal(t, uint32(101), vm.VMID)

	vm, err = vms.GetByStudentAndTemplate(ctx, 2, "ubuntu")
	require.NoError(t, err)
	assert.Nil(t, vm)
}

func TestVirtualMachineRepositoryListFilters(t *testing.T) {
	repo := newTestRepo(t)
	vms := NewVirtualMachineRepository(repo)
	ctx := context.Background()

	seed := []model.VirtualMachine{
		{StudentID: 1, VMID: 100, NodeName: "pve1", TemplateName: "kali", Status: "running"},
		{StudentID: 1, VMID: 101, NodeName: "pve2", TemplateName: "ubuntu", Status: "stopped"},
		{StudentID: 2, VMID: 102, NodeName: "pve1", TemplateName: "kali", Status: "running"},
	}
	for i := range seed {
		require.NoError(t, vms.Create(ctx, &seed[i]))
	}

	byStudent, err := vms.List(ctx, 1, "", "")
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	byNode, err := vms.List(ctx, 0, "pve1", "")
	require.NoError(t, err)
	assert.Len(t, byNode, 2)

	byStatus, err := vms.List(ctx, 0, "", "stopped")
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)
}

func TestVirtualMachineRepositoryListByClassroom(t *testing.T) {
	repo := newTestRepo(t)
	students := NewStudentRepository(repo)
	vms := NewVirtualMachineRepository(repo)
	ctx := context.Background()

	s1 := &model.Student{StudentName: "bob", ClassroomID: 1, Username: "bob", Password: "x", IsActive: 1}
	s2 := &model.Student{StudentName: "eve", ClassroomID: 2, Username: "eve", Password: "x", IsActive: 1}
	require.NoError(t, students.Create(ctx, s1))
	require.NoError(t, students.Create(ctx, s2))

	require.NoError(t, vms.Create(ctx, &model.VirtualMachine{StudentID: s1.Id, VMID: 100, NodeName: "pve1", TemplateName: "kali", Status: "running"}))
	require.NoError(t, vms.Create(ctx, &model.VirtualMachine{StudentID: s2.Id, VMID: 101, NodeName: "pve1", TemplateName: "kali", Status: "running"}))

	list, err := vms.ListByClassroom(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s1.Id, list[0].StudentID)
}

func TestStudentRepositoryGetByIDs(t *testing.T) {
	repo := newTestRepo(t)
	students := NewStudentRepository(repo)
	ctx := context.Background()

	s1 := &model.Student{StudentName: "bob", ClassroomID: 1, Username: "bob", Password: "x", IsActive: 1}
	s2 := &model.Student{StudentName: "eve", ClassroomID: 1, Username: "eve", Password: "x", IsActive: 1}
	require.NoError(t, students.Create(ctx, s1))
	require.NoError(t, students.Create(ctx, s2))

	found, err := students.GetByIDs(ctx, []int64{s1.Id, s2.Id, 999})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestTransactionRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	tm := NewTransaction(repo)
	nodes := NewNodeRepository(repo)
	ctx := context.Background()

	err := tm.Transaction(ctx, func(ctx context.Context) error {
		if err := nodes.Create(ctx, &model.NodeConfig{NodeName: "pve1", MaxVMs: 10, IsActive: 1}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	node, err := nodes.GetByName(ctx, "pve1")
	require.NoError(t, err)
	assert.Nil(t, node)
}
