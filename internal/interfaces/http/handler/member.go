package handler

import (
	membershipapp "github.com/comfund/backend/internal/application/membership"
	"github.com/comfund/backend/internal/domain/membership"
	"github.com/gin-gonic/gin"
)

// MemberHandler serves member administration, the member's own profile
// and message log, and the public committee list
type MemberHandler struct {
	BaseHandler
	members *membershipapp.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(members *membershipapp.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// List godoc
// @Summary      List members
// @Description  Lists members with optional status and role filters. Search matches name, email and phone.
// @Tags         members
// @Produce      json
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size"
// @Param        order_by  query string false "Sort field"
// @Param        order_dir query string false "asc or desc"
// @Param        search    query string false "Search text"
// @Param        status    query string false "Pending, Approved or Rejected"
// @Param        role      query string false "Admin or Member"
// @Success      200 {object} APIResponse[[]membershipapp.MemberResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/members [get]
func (h *MemberHandler) List(c *gin.Context) {
	var f membershipapp.MemberListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	members, total, err := h.members.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, members, total, f.Page, f.PageSize)
}

// Get godoc
// @Summary      Get member
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID"
// @Success      200 {object} APIResponse[membershipapp.MemberResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	m, err := h.members.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}

// SetStatus godoc
// @Summary      Review member
// @Description  Approves or rejects a member. Members may be re-reviewed; rejecting signs the member out everywhere.
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Member ID"
// @Param        request body membershipapp.SetStatusRequest  true "Decision"
// @Success      200 {object} APIResponse[membershipapp.MemberResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/members/{id}/status [patch]
func (h *MemberHandler) SetStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req membershipapp.SetStatusRequest
	if !h.bind(c, &req) {
		return
	}
	m, err := h.members.SetStatus(c.Request.Context(), actor, id, membership.MemberStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}

// Update godoc
// @Summary      Edit member
// @Description  Edits profile, dues settings and overrides. Only admins may change roles, permissions or admin accounts. Send null for manualDue or manualTotalPaid to clear the override.
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        id      path string                             true "Member ID"
// @Param        request body membershipapp.UpdateMemberRequest  true "Fields to change"
// @Success      200 {object} APIResponse[membershipapp.MemberResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/members/{id} [put]
func (h *MemberHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req membershipapp.UpdateMemberRequest
	if !h.bind(c, &req) {
		return
	}
	m, err := h.members.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}

// Delete godoc
// @Summary      Delete member
// @Description  Removes the member and their message log. Their donations are kept. Deleting a missing member succeeds.
// @Tags         members
// @Param        id path string true "Member ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/members/{id} [delete]
func (h *MemberHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.members.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SendMessage godoc
// @Summary      Message member
// @Description  Appends a message to the member's log
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        id      path string                            true "Member ID"
// @Param        request body membershipapp.SendMessageRequest  true "Message"
// @Success      201 {object} APIResponse[membershipapp.MessageResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/members/{id}/messages [post]
func (h *MemberHandler) SendMessage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req membershipapp.SendMessageRequest
	if !h.bind(c, &req) {
		return
	}
	msg, err := h.members.SendMessage(c.Request.Context(), actor, id, req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// Messages godoc
// @Summary      Member messages
// @Description  Lists a member's messages, newest first
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID"
// @Success      200 {object} APIResponse[[]membershipapp.MessageResponse]
// @Security     BearerAuth
// @Router       /admin/members/{id}/messages [get]
func (h *MemberHandler) Messages(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	msgs, err := h.members.Messages(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msgs)
}

// Profile godoc
// @Summary      My profile
// @Tags         me
// @Produce      json
// @Success      200 {object} APIResponse[membershipapp.MemberResponse]
// @Security     BearerAuth
// @Router       /me/profile [get]
func (h *MemberHandler) Profile(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	h.Success(c, membershipapp.ToMemberResponse(p))
}

// UpdateProfile godoc
// @Summary      Edit my profile
// @Description  Lets a member change their own contact details
// @Tags         me
// @Accept       json
// @Produce      json
// @Param        request body membershipapp.UpdateProfileRequest true "Contact details"
// @Success      200 {object} APIResponse[membershipapp.MemberResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /me/profile [put]
func (h *MemberHandler) UpdateProfile(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req membershipapp.UpdateProfileRequest
	if !h.bind(c, &req) {
		return
	}
	m, err := h.members.UpdateProfile(c.Request.Context(), p.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}

// MyMessages godoc
// @Summary      My messages
// @Description  Messages the admins sent to the signed-in member, newest first
// @Tags         me
// @Produce      json
// @Success      200 {object} APIResponse[[]membershipapp.MessageResponse]
// @Security     BearerAuth
// @Router       /me/messages [get]
func (h *MemberHandler) MyMessages(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	msgs, err := h.members.Messages(c.Request.Context(), p.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msgs)
}

// Committee godoc
// @Summary      Committee
// @Description  Approved members holding a committee position, highest rank first
// @Tags         public
// @Produce      json
// @Success      200 {object} APIResponse[[]membershipapp.CommitteeMemberResponse]
// @Router       /committee [get]
func (h *MemberHandler) Committee(c *gin.Context) {
	members, err := h.members.Committee(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}
