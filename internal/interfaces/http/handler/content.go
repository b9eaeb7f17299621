package handler

import (
	contentapp "github.com/comfund/backend/internal/application/content"
	"github.com/gin-gonic/gin"
)

// NoticeHandler serves the notice board
type NoticeHandler struct {
	BaseHandler
	notices *contentapp.NoticeService
}

// NewNoticeHandler creates a new notice handler
func NewNoticeHandler(notices *contentapp.NoticeService) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

// List godoc
// @Summary      List notices
// @Description  Notices, newest first
// @Tags         notices
// @Produce      json
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size"
// @Param        search    query string false "Title or content"
// @Param        priority  query string false "Normal or High"
// @Success      200 {object} APIResponse[[]contentapp.NoticeResponse]
// @Router       /notices [get]
func (h *NoticeHandler) List(c *gin.Context) {
	var f contentapp.NoticeListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	items, total, err := h.notices.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, f.Page, f.PageSize)
}

// Get godoc
// @Summary      Get notice
// @Tags         notices
// @Produce      json
// @Param        id path string true "Notice ID"
// @Success      200 {object} APIResponse[contentapp.NoticeResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /notices/{id} [get]
func (h *NoticeHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	n, err := h.notices.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, n)
}

// Create godoc
// @Summary      Post notice
// @Tags         notices
// @Accept       json
// @Produce      json
// @Param        request body contentapp.NoticeRequest true "Notice"
// @Success      201 {object} APIResponse[contentapp.NoticeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/notices [post]
func (h *NoticeHandler) Create(c *gin.Context) {
	var req contentapp.NoticeRequest
	if !h.bind(c, &req) {
		return
	}
	n, err := h.notices.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, n)
}

// Update godoc
// @Summary      Edit notice
// @Tags         notices
// @Accept       json
// @Produce      json
// @Param        id      path string                  true "Notice ID"
// @Param        request body contentapp.NoticeRequest true "Notice"
// @Success      200 {object} APIResponse[contentapp.NoticeResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/notices/{id} [put]
func (h *NoticeHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req contentapp.NoticeRequest
	if !h.bind(c, &req) {
		return
	}
	n, err := h.notices.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, n)
}

// Delete godoc
// @Summary      Delete notice
// @Tags         notices
// @Param        id path string true "Notice ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/notices/{id} [delete]
func (h *NoticeHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.notices.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ActivityHandler serves the activity board
type ActivityHandler struct {
	BaseHandler
	activities   *contentapp.ActivityService
	maxImageSize int64
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activities *contentapp.ActivityService, maxImageSize int64) *ActivityHandler {
	return &ActivityHandler{activities: activities, maxImageSize: maxImageSize}
}

// List godoc
// @Summary      List activities
// @Description  Activity posts, newest first
// @Tags         activities
// @Produce      json
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size"
// @Param        search    query string false "Title, description or location"
// @Success      200 {object} APIResponse[[]contentapp.ActivityResponse]
// @Router       /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	var f contentapp.ActivityListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	items, total, err := h.activities.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, f.Page, f.PageSize)
}

// Get godoc
// @Summary      Get activity
// @Tags         activities
// @Produce      json
// @Param        id path string true "Activity ID"
// @Success      200 {object} APIResponse[contentapp.ActivityResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /activities/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	a, err := h.activities.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// Create godoc
// @Summary      Post activity
// @Description  The image is a multipart file named "image" or a base64 data URL in the image field
// @Tags         activities
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request body contentapp.ActivityRequest true "Activity"
// @Success      201 {object} APIResponse[contentapp.ActivityResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	req, ok := h.bindActivity(c)
	if !ok {
		return
	}
	upload, err := readUpload(c, "image", req.Image, h.maxImageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	a, err := h.activities.Create(c.Request.Context(), req, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, a)
}

// Update godoc
// @Summary      Edit activity
// @Description  Without a new image the current one is kept unless removeImage is set
// @Tags         activities
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        id      path string                     true "Activity ID"
// @Param        request body contentapp.ActivityRequest true "Activity"
// @Success      200 {object} APIResponse[contentapp.ActivityResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/activities/{id} [put]
func (h *ActivityHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	req, ok := h.bindActivity(c)
	if !ok {
		return
	}
	upload, err := readUpload(c, "image", req.Image, h.maxImageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	a, err := h.activities.Update(c.Request.Context(), id, req, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// Delete godoc
// @Summary      Delete activity
// @Tags         activities
// @Param        id path string true "Activity ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.activities.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ActivityHandler) bindActivity(c *gin.Context) (contentapp.ActivityRequest, bool) {
	var req contentapp.ActivityRequest
	if isMultipart(c) {
		return req, h.bindForm(c, &req)
	}
	return req, h.bind(c, &req)
}
