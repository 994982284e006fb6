package service

import (
	"path/filepath"
	"testing"

	"cyberlab/internal/model"
	"cyberlab/internal/repository"
	"cyberlab/pkg/log"
	"cyberlab/pkg/sid"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestConf(t *testing.T) *viper.Viper {
	conf := viper.New()
	conf.Set("env", "local")
	conf.Set("log.log_level", "error")
	conf.Set("log.encoding", "console")
	conf.Set("log.log_file_name", filepath.Join(t.TempDir(), "test.log"))
	conf.Set("deploy.default_storage", "local-lvm")
	conf.Set("deploy.max_vms_per_node", 30)
	conf.Set("deploy.use_linked_clones", false)
	conf.Set("deploy.force_storage_for_linked_clones", false)
	conf.Set("deploy.node_policy", "least_loaded")
	conf.Set("deploy.max_concurrent_nodes", 2)
	conf.Set("deploy.clone_timeout_seconds", 5)
	return conf
}

func newTestLogger(t *testing.T) *log.Logger {
	return log.NewLog(newTestConf(t))
}

func newTestDB(t *testing.T) *gorm.DB {
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
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type testEnv struct {
	conf         *viper.Viper
	logger       *log.Logger
	db           *gorm.DB
	repo         *repository.Repository
	tm           repository.Transaction
	base         *Service
	nodeRepo     repository.NodeRepository
	storageRepo  repository.NodeStorageRepository
	templateRepo repository.VmTemplateRepository
	studentRepo  repository.StudentRepository
	classRepo    repository.ClassroomRepository
	vmRepo       repository.VirtualMachineRepository
}

func newTestEnv(t *testing.T) *testEnv {
	conf := newTestConf(t)
	logger := log.NewLog(conf)
	db := newTestDB(t)
	repo := repository.NewRepository(logger, db, nil)
	tm := repository.NewTransaction(repo)
	return &testEnv{
		conf:         conf,
		logger:       logger,
		db:           db,
		repo:         repo,
		tm:           tm,
		base:         NewService(tm, logger, sid.NewSid()),
		nodeRepo:     repository.NewNodeRepository(repo),
		storageRepo:  repository.NewNodeStorageRepository(repo),
		templateRepo: repository.NewVmTemplateRepository(repo),
		studentRepo:  repository.NewStudentRepository(repo),
		classRepo:    repository.NewClassroomRepository(repo),
		vmRepo:       repository.NewVirtualMachineRepository(repo),
	}
}

func (e *testEnv) seedNode(t *testing.T, name string, maxVMs, priority int64) *model.NodeConfig {
	node := &model.NodeConfig{
		NodeName: name,
		MaxVMs:   maxVMs,
		Priority: priority,
		IsActive: 1,
	}
	require.NoError(t, e.db.Create(node).Error)
	return node
}

func (e *testEnv) seedTemplate(t *testing.T, name string) *model.VmTemplate {
	template := &model.VmTemplate{
		TemplateName: name,
		Memory:       2048,
		Cores:        2,
		IsActive:     1,
	}
	require.NoError(t, e.db.Create(template).Error)
	return template
}

func (e *testEnv) seedMapping(t *testing.T, templateID int64, node string, vmid uint32) {
	require.NoError(t, e.db.Create(&model.TemplateNodeMapping{
		TemplateID:   templateID,
		NodeName:     node,
		TemplateVMID: vmid,
	}).Error)
}

func (e *testEnv) seedStudent(t *testing.T, name string, classroomID int64) *model.Student {
	student := &model.Student{
		StudentName: name,
		ClassroomID: classroomID,
		Username:    name,
		Password:    "x",
		IsActive:    1,
	}
	require.NoError(t, e.db.Create(student).Error)
	return student
}

func (e *testEnv) seedClassroom(t *testing.T, name string) *model.Classroom {
	classroom := &model.Classroom{ClassroomName: name, UserID: "t1"}
	require.NoError(t, e.db.Create(classroom).Error)
	return classroom
}

func (e *testEnv) seedVM(t *testing.T, studentID int64, vmid uint32, node, template, storage string) *model.VirtualMachine {
	vm := &model.VirtualMachine{
		StudentID:    studentID,
		VMID:         vmid,
		NodeName:     node,
		TemplateName: template,
		Storage:      storage,
		Status:       model.VMStatusRunning,
	}
	require.NoError(t, e.db.Create(vm).Error)
	return vm
}
