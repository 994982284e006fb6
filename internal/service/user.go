package service

import (
	"context"
	"time"

	v1 "cyberlab/api/v1"
	"cyberlab/internal/model"
	"cyberlab/internal/repository"
	"cyberlab/pkg/jwt"
	"cyberlab/pkg/log"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *v1.RegisterRequest) error
	Login(ctx context.Context, req *v1.LoginRequest) (string, error)
	GetProfile(ctx context.Context, userId string) (*v1.GetProfileResponseData, error)
	UpdateProfile(ctx context.Context, userId string, req *v1.UpdateProfileRequest) error
}

func NewUserService(
	service *Service,
	userRepo repository.UserRepository,
	jwt *jwt.JWT,
	logger *log.Logger,
) UserService {
	return &userService{
		Service:  service,
		userRepo: userRepo,
		jwt:      jwt,
		logger:   logger,
	}
}

type userService struct {
	*Service
	userRepo repository.UserRepository
	jwt      *jwt.JWT
	logger   *log.Logger
}

func (s *userService) Register(ctx context.Context, req *v1.RegisterRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return v1.ErrInternalServerError
	}
	if user != nil {
		return v1.ErrEmailAlreadyUse
	}
	user, err = s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return v1.ErrInternalServerError
	}
	if user != nil {
		return v1.ErrUsernameAlreadyUse
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	userId, err := s.sid.GenString()
	if err != nil {
		return err
	}
	user = &model.User{
		UserId:   userId,
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
		Role:     model.RoleTeacher,
	}
	return s.tm.Transaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Create(ctx, user)
	})
}

func (s *userService) Login(ctx context.Context, req *v1.LoginRequest) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Account)
	if err != nil {
		return "", v1.ErrInternalServerError
	}
	if user == nil {
		user, err = s.userRepo.GetByEmail(ctx, req.Account)
		if err != nil {
			return "", v1.ErrInternalServerError
		}
	}
	if user == nil {
		return "", v1.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.WithContext(ctx).Warn("login rejected", zap.String("account", req.Account))
		return "", v1.ErrUnauthorized
	}
	token, err := s.jwt.GenToken(user.UserId, time.Now().Add(time.Hour*24*90))
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *userService) GetProfile(ctx context.Context, userId string) (*v1.GetProfileResponseData, error) {
	user, err := s.userRepo.GetByID(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, v1.ErrNotFound
	}
	return &v1.GetProfileResponseData{
		UserId:   user.UserId,
		Username: user.Username,
		Email:    user.Email,
		Nickname: user.Nickname,
		Role:     user.Role,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId string, req *v1.UpdateProfileRequest) error {
	user, err := s.userRepo.GetByID(ctx, userId)
	if err != nil {
		return err
	}
	if user == nil {
		return v1.ErrNotFound
	}
	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
			return v1.ErrUnauthorized
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.Password = string(hashed)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.WithContext(ctx).Error("failed to update profile", zap.Error(err))
		return v1.ErrInternalServerError
	}
	return nil
}
