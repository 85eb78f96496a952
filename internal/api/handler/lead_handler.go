package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/leadstack/crm-api/internal/core/ports"
)

// LeadHandler exposes the lead workflow over HTTP.
type LeadHandler struct {
	leadService ports.LeadService
}

func NewLeadHandler(leadService ports.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

type createLeadRequest struct {
	Title   string `json:"title" validate:"required"`
	Company string `json:"company"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Status  string `json:"status" validate:"omitempty,oneof=NEW CONTACTED QUALIFIED WON LOST"`
	OwnerID *int64 `json:"ownerId"`
}

type updateLeadRequest struct {
	Title   *string `json:"title"`
	Company *string `json:"company"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Status  *string `json:"status" validate:"omitempty,oneof=NEW CONTACTED QUALIFIED WON LOST"`
	OwnerID *int64  `json:"ownerId"`
}

// Create handles POST /api/leads.
func (h *LeadHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createLeadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	lead, err := h.leadService.Create(c.Request().Context(), p, ports.CreateLeadInput{
		Title:   req.Title,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Status:  req.Status,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, lead)
}

// List handles GET /api/leads with status/owner filters and pagination.
func (h *LeadHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	in := ports.ListLeadsInput{Status: c.QueryParam("status")}
	if v := c.QueryParam("ownerId"); v != "" {
		ownerID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid ownerId")
		}
		in.OwnerID = &ownerID
	}
	in.Page, _ = strconv.Atoi(c.QueryParam("page"))
	in.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	result, err := h.leadService.List(c.Request().Context(), p, in)
	if err != nil {
		return err
	}

	return respondPaged(c, http.StatusOK, result.Items, result.Page, result.Limit, result.Total, result.Pages)
}

// Get handles GET /api/leads/:id.
func (h *LeadHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	detail, err := h.leadService.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, detail)
}

// Update handles PUT /api/leads/:id. Absent fields are left unchanged.
func (h *LeadHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateLeadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	lead, err := h.leadService.Update(c.Request().Context(), p, id, ports.UpdateLeadInput{
		Title:   req.Title,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Status:  req.Status,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, lead)
}

// Delete handles DELETE /api/leads/:id.
func (h *LeadHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.leadService.Delete(c.Request().Context(), p, id); err != nil {
		return err
	}

	return respond(c, http.StatusOK, map[string]string{"message": "lead deleted"})
}
