package handler

import (
	"net/http"
	"strconv"

	v1 "cyberlab/api/v1"
	"cyberlab/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ClassroomHandler struct {
	*Handler
	classroomService service.ClassroomService
}

func NewClassroomHandler(handler *Handler, classroomService service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{
		Handler:          handler,
		classroomService: classroomService,
	}
}

func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return 0, false
	}
	return id, true
}

// CreateClassroom godoc
// @Summary Create a classroom
// @Tags Classroom
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.CreateClassroomRequest true "params"
// @Success 200 {object} v1.Response
// @Router /classrooms [post]
func (h *ClassroomHandler) CreateClassroom(ctx *gin.Context) {
	req := new(v1.CreateClassroomRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	id, err := h.classroomService.CreateClassroom(ctx, GetUserIdFromCtx(ctx), req)
	if err != nil {
		h.logger.WithContext(ctx).Error("classroomService.CreateClassroom error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, gin.H{"id": id})
}

// DeleteClassroom godoc
// @Summary Delete a classroom and its students
// @Tags Classroom
// @Produce json
// @Security Bearer
// @Param id path int true "classroom id"
// @Success 200 {object} v1.Response
// @Router /classrooms/{id} [delete]
func (h *ClassroomHandler) DeleteClassroom(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := h.classroomService.DeleteClassroom(ctx, id); err != nil {
		h.logger.WithContext(ctx).Error("classroomService.DeleteClassroom error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// GetClassroom godoc
// @Summary Get a classroom with its roster
// @Tags Classroom
// @Produce json
// @Security Bearer
// @Param id path int true "classroom id"
// @Success 200 {object} v1.Response
// @Router /classrooms/{id} [get]
func (h *ClassroomHandler) GetClassroom(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	detail, err := h.classroomService.GetClassroom(ctx, id)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, detail)
}

// ListClassrooms godoc
// @Summary List the signed-in teacher's classrooms
// @Tags Classroom
// @Produce json
// @Security Bearer
// @Success 200 {object} v1.ListClassroomResponse
// @Router /classrooms [get]
func (h *ClassroomHandler) ListClassrooms(ctx *gin.Context) {
	details, err := h.classroomService.ListClassrooms(ctx, GetUserIdFromCtx(ctx))
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, details)
}

// CreateStudent godoc
// @Summary Add a student to a classroom
// @Tags Classroom
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.CreateStudentRequest true "params"
// @Success 200 {object} v1.Response
// @Router /students [post]
func (h *ClassroomHandler) CreateStudent(ctx *gin.Context) {
	req := new(v1.CreateStudentRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	id, err := h.classroomService.CreateStudent(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("classroomService.CreateStudent error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, gin.H{"id": id})
}

// DeleteStudent godoc
// @Summary Remove a student
// @Tags Classroom
// @Produce json
// @Security Bearer
// @Param id path int true "student id"
// @Success 200 {object} v1.Response
// @Router /students/{id} [delete]
func (h *ClassroomHandler) DeleteStudent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := h.classroomService.DeleteStudent(ctx, id); err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// ResetStudentPassword godoc
// @Summary Reset a student's lab password
// @Tags Classroom
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "student id"
// @Param request body v1.ResetStudentPasswordRequest true "params"
// @Success 200 {object} v1.Response
// @Router /students/{id}/password [put]
func (h *ClassroomHandler) ResetStudentPassword(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	req := new(v1.ResetStudentPasswordRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	if err := h.classroomService.ResetStudentPassword(ctx, id, req); err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// StudentLogin godoc
// @Summary Student portal login
// @Description Returns the student's identity and provisioned VMs with their
// @Description console URLs. Locked after repeated failures.
// @Tags Classroom
// @Accept json
// @Produce json
// @Param request body v1.StudentLoginRequest true "params"
// @Success 200 {object} v1.Response
// @Router /student/login [post]
func (h *ClassroomHandler) StudentLogin(ctx *gin.Context) {
	req := new(v1.StudentLoginRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	data, err := h.classroomService.StudentLogin(ctx, req)
	if err != nil {
		if err == v1.ErrAccountLocked {
			v1.HandleError(ctx, http.StatusForbidden, err, nil)
			return
		}
		v1.HandleError(ctx, http.StatusUnauthorized, v1.ErrUnauthorized, nil)
		return
	}
	v1.HandleSuccess(ctx, data)
}
