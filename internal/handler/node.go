package handler

import (
	"net/http"

	v1 "cyberlab/api/v1"
	"cyberlab/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NodeHandler struct {
	*Handler
	nodeService service.NodeRegistryService
}

func NewNodeHandler(handler *Handler, nodeService service.NodeRegistryService) *NodeHandler {
	return &NodeHandler{
		Handler:     handler,
		nodeService: nodeService,
	}
}

// ListNodes godoc
// @Summary List cluster nodes with load and capacity
// @Tags Node
// @Produce json
// @Security Bearer
// @Success 200 {object} v1.ListNodeResponse
// @Router /nodes [get]
func (h *NodeHandler) ListNodes(ctx *gin.Context) {
	details, err := h.nodeService.ListNodes(ctx)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, details)
}

// GetNode godoc
// @Summary Get one node with its storage pools
// @Tags Node
// @Produce json
// @Security Bearer
// @Param id path int true "node id"
// @Success 200 {object} v1.Response
// @Router /nodes/{id} [get]
func (h *NodeHandler) GetNode(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	detail, err := h.nodeService.GetNode(ctx, id)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, detail)
}

// UpdateNode godoc
// @Summary Tune a node's capacity, priority or active flag
// @Tags Node
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "node id"
// @Param request body v1.UpdateNodeRequest true "params"
// @Success 200 {object} v1.Response
// @Router /nodes/{id} [put]
func (h *NodeHandler) UpdateNode(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	req := new(v1.UpdateNodeRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	if err := h.nodeService.UpdateNode(ctx, id, req); err != nil {
		h.logger.WithContext(ctx).Error("nodeService.UpdateNode error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// SyncNodes godoc
// @Summary Discover cluster nodes and upsert the registry
// @Tags Node
// @Produce json
// @Security Bearer
// @Success 200 {object} v1.Response
// @Router /nodes/sync [post]
func (h *NodeHandler) SyncNodes(ctx *gin.Context) {
	if err := h.nodeService.ReconcileNodes(ctx); err != nil {
		h.logger.WithContext(ctx).Error("nodeService.ReconcileNodes error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, v1.ErrBackendFailure, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// GetStatistics godoc
// @Summary Cluster-wide capacity statistics
// @Tags Node
// @Produce json
// @Security Bearer
// @Success 200 {object} v1.Response
// @Router /nodes/statistics [get]
func (h *NodeHandler) GetStatistics(ctx *gin.Context) {
	stats, err := h.nodeService.GetStatistics(ctx)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, stats)
}

// ListStorages godoc
// @Summary List a node's storage pools
// @Tags Node
// @Produce json
// @Security Bearer
// @Param id path int true "node id"
// @Success 200 {object} v1.Response
// @Router /nodes/{id}/storages [get]
func (h *NodeHandler) ListStorages(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	details, err := h.nodeService.ListStorages(ctx, id)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, details)
}

// CreateStorage godoc
// @Summary Register a storage pool on a node
// @Tags Node
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "node id"
// @Param request body v1.CreateStorageRequest true "params"
// @Success 200 {object} v1.Response
// @Router /nodes/{id}/storages [post]
func (h *NodeHandler) CreateStorage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	req := new(v1.CreateStorageRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	if err := h.nodeService.CreateStorage(ctx, id, req); err != nil {
		h.logger.WithContext(ctx).Error("nodeService.CreateStorage error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// UpdateStorage godoc
// @Summary Update a storage pool's weight, cap or active flag
// @Tags Node
// @Accept json
// @Produce json
// @Security Bearer
// @Param storageId path int true "storage id"
// @Param request body v1.UpdateStorageRequest true "params"
// @Success 200 {object} v1.Response
// @Router /storages/{storageId} [put]
func (h *NodeHandler) UpdateStorage(ctx *gin.Context) {
	id, ok := pathID(ctx, "storageId")
	if !ok {
		return
	}
	req := new(v1.UpdateStorageRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	if err := h.nodeService.UpdateStorage(ctx, id, req); err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// DeleteStorage godoc
// @Summary Remove a storage pool row
// @Tags Node
// @Produce json
// @Security Bearer
// @Param storageId path int true "storage id"
// @Success 200 {object} v1.Response
// @Router /storages/{storageId} [delete]
func (h *NodeHandler) DeleteStorage(ctx *gin.Context) {
	id, ok := pathID(ctx, "storageId")
	if !ok {
		return
	}
	if err := h.nodeService.DeleteStorage(ctx, id); err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}
