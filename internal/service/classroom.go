package service

import (
	"context"
	"time"

	v1 "cyberlab/api/v1"
	"cyberlab/internal/model"
	"cyberlab/internal/repository"
	"cyberlab/pkg/log"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

type ClassroomService interface {
	CreateClassroom(ctx context.Context, userID string, req *v1.CreateClassroomRequest) (int64, error)
	DeleteClassroom(ctx context.Context, id int64) error
	GetClassroom(ctx context.Context, id int64) (*v1.ClassroomDetail, error)
	ListClassrooms(ctx context.Context, userID string) ([]v1.ClassroomDetail, error)

	CreateStudent(ctx context.Context, req *v1.CreateStudentRequest) (int64, error)
	DeleteStudent(ctx context.Context, id int64) error
	ResetStudentPassword(ctx context.Context, id int64, req *v1.ResetStudentPasswordRequest) error
	// AuthenticateStudent verifies lab credentials with a lockout after
	// repeated failures.
	AuthenticateStudent(ctx context.Context, username, password string) (*model.Student, error)
	// StudentLogin authenticates and returns the portal view: the student
	// plus the VMs provisioned for them.
	StudentLogin(ctx context.Context, req *v1.StudentLoginRequest) (*v1.StudentLoginResponseData, error)
}

func NewClassroomService(
	service *Service,
	classroomRepo repository.ClassroomRepository,
	studentRepo repository.StudentRepository,
	vmRepo repository.VirtualMachineRepository,
	logger *log.Logger,
) ClassroomService {
	return &classroomService{
		Service:       service,
		classroomRepo: classroomRepo,
		studentRepo:   studentRepo,
		vmRepo:        vmRepo,
		logger:        logger,
	}
}

type classroomService struct {
	*Service
	classroomRepo repository.ClassroomRepository
	studentRepo   repository.StudentRepository
	vmRepo        repository.VirtualMachineRepository
	logger        *log.Logger
}

func (s *classroomService) CreateClassroom(ctx context.Context, userID string, req *v1.CreateClassroomRequest) (int64, error) {
	classroom := &model.Classroom{
		ClassroomName: req.Name,
		UserID:        userID,
	}
	if err := s.classroomRepo.Create(ctx, classroom); err != nil {
		return 0, err
	}
	return classroom.Id, nil
}

func (s *classroomService) DeleteClassroom(ctx context.Context, id int64) error {
	students, err := s.studentRepo.ListByClassroom(ctx, id)
	if err != nil {
		return err
	}
	// A classroom with live VMs keeps its rows until the VMs are deleted.
	for _, student := range students {
		vms, err := s.vmRepo.ListByStudent(ctx, student.Id)
		if err != nil {
			return err
		}
		if len(vms) > 0 {
			return v1.ErrBadRequest
		}
	}
	return s.tm.Transaction(ctx, func(ctx context.Context) error {
		for _, student := range students {
			if err := s.studentRepo.Delete(ctx, student.Id); err != nil {
				return err
			}
		}
		return s.classroomRepo.Delete(ctx, id)
	})
}

func (s *classroomService) classroomDetail(ctx context.Context, classroom *model.Classroom, withStudents bool) (*v1.ClassroomDetail, error) {
	students, err := s.studentRepo.ListByClassroom(ctx, classroom.Id)
	if err != nil {
		return nil, err
	}
	detail := &v1.ClassroomDetail{
		Id:           classroom.Id,
		Name:         classroom.ClassroomName,
		StudentCount: int64(len(students)),
	}
	if withStudents {
		for _, student := range students {
			detail.Students = append(detail.Students, v1.StudentDetail{
				Id:          student.Id,
				Name:        student.StudentName,
				ClassroomID: student.ClassroomID,
				Username:    student.Username,
				IsActive:    student.IsActive == 1,
			})
		}
	}
	return detail, nil
}

func (s *classroomService) GetClassroom(ctx context.Context, id int64) (*v1.ClassroomDetail, error) {
	classroom, err := s.classroomRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if classroom == nil {
		return nil, v1.ErrNotFound
	}
	return s.classroomDetail(ctx, classroom, true)
}

func (s *classroomService) ListClassrooms(ctx context.Context, userID string) ([]v1.ClassroomDetail, error) {
	classrooms, err := s.classroomRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	details := make([]v1.ClassroomDetail, 0, len(classrooms))
	for _, classroom := range classrooms {
		detail, err := s.classroomDetail(ctx, classroom, false)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

func (s *classroomService) CreateStudent(ctx context.Context, req *v1.CreateStudentRequest) (int64, error) {
	classroom, err := s.classroomRepo.GetByID(ctx, req.ClassroomID)
	if err != nil {
		return 0, err
	}
	if classroom == nil {
		return 0, v1.ErrNotFound
	}
	existing, err := s.studentRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, v1.ErrUsernameAlreadyUse
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	student := &model.Student{
		StudentName: req.Name,
		ClassroomID: req.ClassroomID,
		Username:    req.Username,
		Password:    string(hashed),
		IsActive:    1,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return 0, err
	}
	return student.Id, nil
}

func (s *classroomService) DeleteStudent(ctx context.Context, id int64) error {
	vms, err := s.vmRepo.ListByStudent(ctx, id)
	if err != nil {
		return err
	}
	if len(vms) > 0 {
		return v1.ErrBadRequest
	}
	return s.studentRepo.Delete(ctx, id)
}

func (s *classroomService) ResetStudentPassword(ctx context.Context, id int64, req *v1.ResetStudentPasswordRequest) error {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if student == nil {
		return v1.ErrNotFound
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	student.Password = string(hashed)
	student.FailedLoginAttempts = 0
	student.LockedUntil = nil
	return s.studentRepo.Update(ctx, student)
}

func (s *classroomService) AuthenticateStudent(ctx context.Context, username, password string) (*model.Student, error) {
	student, err := s.studentRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if student == nil || student.IsActive != 1 {
		return nil, v1.ErrUnauthorized
	}
	if student.LockedUntil != nil && time.Now().Before(*student.LockedUntil) {
		return nil, v1.ErrAccountLocked
	}
	if err := bcrypt.CompareHashAndPassword([]byte(student.Password), []byte(password)); err != nil {
		student.FailedLoginAttempts++
		if student.FailedLoginAttempts >= maxFailedLogins {
			until := time.Now().Add(lockoutDuration)
			student.LockedUntil = &until
			student.FailedLoginAttempts = 0
			s.logger.WithContext(ctx).Warn("student account locked",
				zap.String("username", username))
		}
		if uerr := s.studentRepo.Update(ctx, student); uerr != nil {
			s.logger.WithContext(ctx).Error("failed to record login failure", zap.Error(uerr))
		}
		return nil, v1.ErrUnauthorized
	}
	if student.FailedLoginAttempts != 0 || student.LockedUntil != nil {
		student.FailedLoginAttempts = 0
		student.LockedUntil = nil
		if uerr := s.studentRepo.Update(ctx, student); uerr != nil {
			s.logger.WithContext(ctx).Error("failed to reset login counters", zap.Error(uerr))
		}
	}
	return student, nil
}

func (s *classroomService) StudentLogin(ctx context.Context, req *v1.StudentLoginRequest) (*v1.StudentLoginResponseData, error) {
	student, err := s.AuthenticateStudent(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	vms, err := s.vmRepo.ListByStudent(ctx, student.Id)
	if err != nil {
		return nil, err
	}
	data := &v1.StudentLoginResponseData{
		Student: v1.StudentDetail{
			Id:          student.Id,
			Name:        student.StudentName,
			ClassroomID: student.ClassroomID,
			Username:    student.Username,
			IsActive:    student.IsActive == 1,
		},
		VMs: make([]v1.VMDetail, 0, len(vms)),
	}
	for _, vm := range vms {
		data.VMs = append(data.VMs, *vmDetail(vm))
	}
	return data, nil
}
