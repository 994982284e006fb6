package handler

import (
	"net/http"

	v1 "cyberlab/api/v1"
	"cyberlab/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TemplateHandler struct {
	*Handler
	templateService service.TemplateService
}

func NewTemplateHandler(handler *Handler, templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		Handler:         handler,
		templateService: templateService,
	}
}

// CreateTemplate godoc
// @Summary Register a VM template
// @Tags Template
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.CreateTemplateRequest true "params"
// @Success 200 {object} v1.Response
// @Router /templates [post]
func (h *TemplateHandler) CreateTemplate(ctx *gin.Context) {
	req := new(v1.CreateTemplateRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	id, err := h.templateService.CreateTemplate(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("templateService.CreateTemplate error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, gin.H{"id": id})
}

// UpdateTemplate godoc
// @Summary Update template metadata or active flag
// @Tags Template
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "template id"
// @Param request body v1.UpdateTemplateRequest true "params"
// @Success 200 {object} v1.Response
// @Router /templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	req := new(v1.UpdateTemplateRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	if err := h.templateService.UpdateTemplate(ctx, id, req); err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// DeleteTemplate godoc
// @Summary Delete a template and its node mappings
// @Tags Template
// @Produce json
// @Security Bearer
// @Param id path int true "template id"
// @Success 200 {object} v1.Response
// @Router /templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := h.templateService.DeleteTemplate(ctx, id); err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// GetTemplate godoc
// @Summary Get a template with its node availability
// @Tags Template
// @Produce json
// @Security Bearer
// @Param id path int true "template id"
// @Success 200 {object} v1.Response
// @Router /templates/{id} [get]
func (h *TemplateHandler) GetTemplate(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	detail, err := h.templateService.GetTemplate(ctx, id)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, detail)
}

// ListTemplates godoc
// @Summary List templates
// @Tags Template
// @Produce json
// @Security Bearer
// @Param active query bool false "only active templates"
// @Success 200 {object} v1.ListTemplateResponse
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(ctx *gin.Context) {
	activeOnly := ctx.Query("active") == "true"
	details, err := h.templateService.ListTemplates(ctx, activeOnly)
	if err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, details)
}

// AddMapping godoc
// @Summary Register the template's VMID on one node
// @Tags Template
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "template id"
// @Param request body v1.CreateTemplateMappingRequest true "params"
// @Success 200 {object} v1.Response
// @Router /templates/{id}/mappings [post]
func (h *TemplateHandler) AddMapping(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	req := new(v1.CreateTemplateMappingRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	if err := h.templateService.AddMapping(ctx, id, req); err != nil {
		h.logger.WithContext(ctx).Error("templateService.AddMapping error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// RemoveMapping godoc
// @Summary Remove the template's mapping for one node
// @Tags Template
// @Produce json
// @Security Bearer
// @Param id path int true "template id"
// @Param node path string true "node name"
// @Success 200 {object} v1.Response
// @Router /templates/{id}/mappings/{node} [delete]
func (h *TemplateHandler) RemoveMapping(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	node := ctx.Param("node")
	if node == "" {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}
	if err := h.templateService.RemoveMapping(ctx, id, node); err != nil {
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}
