package handler

import (
	"errors"
	"net/http"

	v1 "cyberlab/api/v1"
	"cyberlab/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type VMHandler struct {
	*Handler
	deployService service.DeployService
	bulkService   service.BulkDeployService
}

func NewVMHandler(
	handler *Handler,
	deployService service.DeployService,
	bulkService service.BulkDeployService,
) *VMHandler {
	return &VMHandler{
		Handler:       handler,
		deployService: deployService,
		bulkService:   bulkService,
	}
}

// handleDeployError maps orchestration failures onto API error codes.
func (h *VMHandler) handleDeployError(ctx *gin.Context, err error) {
	var mappingErr *service.MappingNotFoundError
	if errors.As(err, &mappingErr) {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrTemplateNotOnNode, gin.H{
			"template":        mappingErr.Template,
			"node":            mappingErr.Node,
			"available_nodes": mappingErr.AvailableNodes,
		})
		return
	}
	var backendErr *service.BackendError
	if errors.As(err, &backendErr) {
		v1.HandleError(ctx, http.StatusBadGateway, v1.ErrBackendFailure, gin.H{
			"operation": backendErr.Op,
		})
		return
	}
	v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
}

// DeployVM godoc
// @Summary Clone and start a VM for one student
// @Tags VM
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.DeployVMRequest true "params"
// @Success 200 {object} v1.Response
// @Router /vms/deploy [post]
func (h *VMHandler) DeployVM(ctx *gin.Context) {
	req := new(v1.DeployVMRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	detail, err := h.deployService.DeployVM(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("deployService.DeployVM error", zap.Error(err))
		h.handleDeployError(ctx, err)
		return
	}
	v1.HandleSuccess(ctx, detail)
}

// BulkDeployVM godoc
// @Summary Clone and start VMs for many students
// @Description fail_fast is required: true rolls the whole batch back on the
// @Description first failure, false records failures and continues.
// @Tags VM
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.BulkDeployVMRequest true "params"
// @Success 200 {object} v1.Response
// @Router /vms/bulk-deploy [post]
func (h *VMHandler) BulkDeployVM(ctx *gin.Context) {
	req := new(v1.BulkDeployVMRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	result, err := h.bulkService.DeployMany(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("bulkService.DeployMany error", zap.Error(err))
		h.handleDeployError(ctx, err)
		return
	}
	v1.HandleSuccess(ctx, result)
}

// PlanDeployment godoc
// @Summary Dry-run node and storage assignment for a batch
// @Tags VM
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.PlanDeploymentRequest true "params"
// @Success 200 {object} v1.Response
// @Router /vms/plan [post]
func (h *VMHandler) PlanDeployment(ctx *gin.Context) {
	req := new(v1.PlanDeploymentRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	plan, err := h.bulkService.PlanDeployment(ctx, req)
	if err != nil {
		h.handleDeployError(ctx, err)
		return
	}
	v1.HandleSuccess(ctx, plan)
}

// GetVM godoc
// @Summary Get one VM record
// @Tags VM
// @Produce json
// @Security Bearer
// @Param id path int true "vm record id"
// @Success 200 {object} v1.Response
// @Router /vms/{id} [get]
func (h *VMHandler) GetVM(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	detail, err := h.deployService.GetVM(ctx, id)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, detail)
}

// ListVMs godoc
// @Summary List VM records, optionally by student or classroom
// @Tags VM
// @Produce json
// @Security Bearer
// @Param student_id query int false "student id"
// @Param classroom_id query int false "classroom id"
// @Success 200 {object} v1.ListVMResponse
// @Router /vms [get]
func (h *VMHandler) ListVMs(ctx *gin.Context) {
	req := new(v1.ListVMRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	details, err := h.deployService.ListVMs(ctx, req)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, details)
}

func (h *VMHandler) lifecycle(ctx *gin.Context, op string, fn func(ctx *gin.Context, id int64) error) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := fn(ctx, id); err != nil {
		h.logger.WithContext(ctx).Error("vm lifecycle error",
			zap.String("op", op), zap.Int64("id", id), zap.Error(err))
		h.handleDeployError(ctx, err)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// StartVM godoc
// @Summary Start a VM
// @Tags VM
// @Produce json
// @Security Bearer
// @Param id path int true "vm record id"
// @Success 200 {object} v1.Response
// @Router /vms/{id}/start [post]
func (h *VMHandler) StartVM(ctx *gin.Context) {
	h.lifecycle(ctx, "start", func(ctx *gin.Context, id int64) error {
		return h.deployService.StartVM(ctx, id)
	})
}

// StopVM godoc
// @Summary Stop a VM
// @Tags VM
// @Produce json
// @Security Bearer
// @Param id path int true "vm record id"
// @Success 200 {object} v1.Response
// @Router /vms/{id}/stop [post]
func (h *VMHandler) StopVM(ctx *gin.Context) {
	h.lifecycle(ctx, "stop", func(ctx *gin.Context, id int64) error {
		return h.deployService.StopVM(ctx, id)
	})
}

// ResetVM godoc
// @Summary Hard-reset a VM
// @Tags VM
// @Produce json
// @Security Bearer
// @Param id path int true "vm record id"
// @Success 200 {object} v1.Response
// @Router /vms/{id}/reset [post]
func (h *VMHandler) ResetVM(ctx *gin.Context) {
	h.lifecycle(ctx, "reset", func(ctx *gin.Context, id int64) error {
		return h.deployService.ResetVM(ctx, id)
	})
}

// SuspendVM godoc
// @Summary Suspend a VM
// @Tags VM
// @Produce json
// @Security Bearer
// @Param id path int true "vm record id"
// @Success 200 {object} v1.Response
// @Router /vms/{id}/suspend [post]
func (h *VMHandler) SuspendVM(ctx *gin.Context) {
	h.lifecycle(ctx, "suspend", func(ctx *gin.Context, id int64) error {
		return h.deployService.SuspendVM(ctx, id)
	})
}

// ResumeVM godoc
// @Summary Resume a suspended VM
// @Tags VM
// @Produce json
// @Security Bearer
// @Param id path int true "vm record id"
// @Success 200 {object} v1.Response
// @Router /vms/{id}/resume [post]
func (h *VMHandler) ResumeVM(ctx *gin.Context) {
	h.lifecycle(ctx, "resume", func(ctx *gin.Context, id int64) error {
		return h.deployService.ResumeVM(ctx, id)
	})
}

// DeleteVM godoc
// @Summary Destroy a VM and remove its record
// @Tags VM
// @Produce json
// @Security Bearer
// @Param id path int true "vm record id"
// @Success 200 {object} v1.Response
// @Router /vms/{id} [delete]
func (h *VMHandler) DeleteVM(ctx *gin.Context) {
	h.lifecycle(ctx, "delete", func(ctx *gin.Context, id int64) error {
		return h.deployService.DeleteVM(ctx, id)
	})
}

// RefreshStatus godoc
// @Summary Re-read a VM's power state from the backend
// @Tags VM
// @Produce json
// @Security Bearer
// @Param id path int true "vm record id"
// @Success 200 {object} v1.Response
// @Router /vms/{id}/status [post]
func (h *VMHandler) RefreshStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	data, err := h.deployService.RefreshStatus(ctx, id)
	if err != nil {
		h.handleDeployError(ctx, err)
		return
	}
	v1.HandleSuccess(ctx, data)
}

// GetVMConsole godoc
// @Summary Issue a console URL and a short-lived websocket token
// @Tags VM
// @Produce json
// @Security Bearer
// @Param id path int true "vm record id"
// @Success 200 {object} v1.Response
// @Router /vms/{id}/console [post]
func (h *VMHandler) GetVMConsole(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	data, err := h.deployService.GetConsole(ctx, id)
	if err != nil {
		h.handleDeployError(ctx, err)
		return
	}
	v1.HandleSuccess(ctx, data)
}

var consoleUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// VMConsoleWS proxies the noVNC websocket. Auth runs on the one-time
// ws_token issued by GetVMConsole, not on the Authorization header, because
// browser websockets cannot set headers.
func (h *VMHandler) VMConsoleWS(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		v1.HandleError(ctx, http.StatusUnauthorized, v1.ErrUnauthorized, nil)
		return
	}
	backendConn, err := h.deployService.DialConsoleWebsocket(ctx, token)
	if err != nil {
		h.logger.WithContext(ctx).Error("console websocket dial failed", zap.Error(err))
		v1.HandleError(ctx, http.StatusBadGateway, v1.ErrBackendFailure, nil)
		return
	}

	clientConn, err := consoleUpgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		backendConn.Close()
		return
	}

	pump := func(dst, src *websocket.Conn) {
		defer dst.Close()
		defer src.Close()
		for {
			msgType, data, err := src.ReadMessage()
			if err != nil {
				return
			}
			if err := dst.WriteMessage(msgType, data); err != nil {
				return
			}
		}
	}
	go pump(backendConn, clientConn)
	pump(clientConn, backendConn)
}
