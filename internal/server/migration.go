package server

import (
	"context"
	"os"

	"cyberlab/internal/model"
	"cyberlab/internal/repository"
	"cyberlab/pkg/log"
	"cyberlab/pkg/sid"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MigrateServer struct {
	db       *gorm.DB
	log      *log.Logger
	userRepo repository.UserRepository
	sid      *sid.Sid
}

func NewMigrateServer(db *gorm.DB, log *log.Logger, userRepo repository.UserRepository, sid *sid.Sid) *MigrateServer {
	return &MigrateServer{
		db:       db,
		log:      log,
		userRepo: userRepo,
		sid:      sid,
	}
}

func (m *MigrateServer) Start(ctx context.Context) error {
	if err := m.db.AutoMigrate(
		&model.User{},
		&model.Classroom{},
		&model.Student{},
		&model.NodeConfig{},
		&model.NodeStorage{},
		&model.VmTemplate{},
		&model.TemplateNodeMapping{},
		&model.VirtualMachine{},
	); err != nil {
		m.log.Error("migrate error", zap.Error(err))
		return err
	}
	m.log.Info("AutoMigrate success")

	if err := m.createDefaultUser(ctx); err != nil {
		m.log.Error("create default user error", zap.Error(err))
		return err
	}

	os.Exit(0)
	return nil
}

func (m *MigrateServer) Stop(ctx context.Context) error {
	m.log.Info("MigrateServer stop")
	return nil
}

func (m *MigrateServer) createDefaultUser(ctx context.Context) error {
	defaultUsername := "admin"
	defaultEmail := "admin@cyberlab.local"
	defaultPassword := "Ab123456"
	defaultNickname := "CyberLab Admin"

	existingUser, err := m.userRepo.GetByEmail(ctx, defaultEmail)
	if err != nil {
		return err
	}
	if existingUser != nil {
		m.log.Info("default user already exists", zap.String("email", defaultEmail))
		return nil
	}
	existingUser, err = m.userRepo.GetByUsername(ctx, defaultUsername)
	if err != nil {
		return err
	}
	if existingUser != nil {
		m.log.Info("default username already exists", zap.String("username", defaultUsername))
		return nil
	}

	userId, err := m.sid.GenString()
	if err != nil {
		return err
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &model.User{
		UserId:   userId,
		Username: defaultUsername,
		Email:    defaultEmail,
		Password: string(hashedPassword),
		Nickname: defaultNickname,
		Role:     model.RoleAdmin,
	}
	if err := m.userRepo.Create(ctx, user); err != nil {
		return err
	}
	m.log.Info("default user created",
		zap.String("username", defaultUsername),
		zap.String("email", defaultEmail))
	return nil
}
