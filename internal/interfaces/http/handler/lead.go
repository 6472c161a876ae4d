package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	applead "github.com/minicrm/backend/internal/application/lead"
	"github.com/minicrm/backend/internal/domain/shared"
	"github.com/minicrm/backend/internal/interfaces/http/dto"
)

// LeadHandler handles the lead store endpoints
type LeadHandler struct {
	BaseHandler
	leadService *applead.Service
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadService *applead.Service) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
	}
}

// List godoc
// @ID           listLeads
// @Summary      List leads
// @Description  Returns every lead, most recent first
// @Tags         leads
// @Produce      json
// @Success      200 {array}  lead.Lead
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	leads, err := h.leadService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LeadList(leads))
}

// Create godoc
// @ID           createLead
// @Summary      Add a lead
// @Description  Stores a new lead with status "new". Fields are not validated.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        request body applead.CreateLeadInput true "Lead fields"
// @Success      201 {object} dto.CreateLeadResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      413 {object} dto.MessageResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req applead.CreateLeadInput
	if err := bindJSON(c, &req); err != nil {
		h.HandleError(c, shared.NewStoreError(applead.MsgCreateFailed, err))
		return
	}

	id, err := h.leadService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreateLeadResponse{
		Message: dto.MsgLeadAdded,
		LeadID:  id,
	})
}

// Update godoc
// @ID           updateLead
// @Summary      Change a lead's status and notes
// @Description  Replaces status and notes. An unknown id still answers success.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id      path int                     true "Lead ID"
// @Param        request body applead.UpdateLeadInput true "New status and notes"
// @Success      200 {object} dto.MessageResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      413 {object} dto.MessageResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	id, err := parseLeadID(c)
	if err != nil {
		h.HandleError(c, shared.NewStoreError(applead.MsgUpdateFailed, err))
		return
	}

	var req applead.UpdateLeadInput
	if err := bindJSON(c, &req); err != nil {
		h.HandleError(c, shared.NewStoreError(applead.MsgUpdateFailed, err))
		return
	}

	if err := h.leadService.Update(c.Request.Context(), id, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, http.StatusOK, dto.MsgLeadUpdated)
}

// Delete godoc
// @ID           deleteLead
// @Summary      Delete a lead
// @Description  Removes the lead. An unknown id still answers success.
// @Tags         leads
// @Produce      json
// @Param        id path int true "Lead ID"
// @Success      200 {object} dto.MessageResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	id, err := parseLeadID(c)
	if err != nil {
		h.HandleError(c, shared.NewStoreError(applead.MsgDeleteFailed, err))
		return
	}

	if err := h.leadService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, http.StatusOK, dto.MsgLeadDeleted)
}

func parseLeadID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lead id %q", raw)
	}
	return id, nil
}

// bindJSON decodes the body. An empty body leaves req untouched.
func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
