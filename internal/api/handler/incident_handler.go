package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/incident-tracker/internal/core/ports"
)

// IncidentHandler handles HTTP requests for incident operations.
type IncidentHandler struct {
	service ports.IncidentService
}

func NewIncidentHandler(service ports.IncidentService) *IncidentHandler {
	return &IncidentHandler{service: service}
}

// Create handles POST /incidents.
//
// @Summary      File a new incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIncidentRequest  true  "Incident details"
// @Success      200   {object}  createIncidentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /incidents [post]
func (h *IncidentHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	incident, err := h.service.Create(c.Request().Context(), actor, toCreateInput(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, createIncidentResponse{
		Message: "Incident created successfully!",
		ID:      incident.ID,
	})
}

// List handles GET /incidents. Every authenticated user sees every incident.
//
// @Summary      List all incidents
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   incidentSummaryResponse
// @Failure      401  {object}  errorResponse
// @Router       /incidents [get]
func (h *IncidentHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	items, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(items))
}

// Mine handles GET /incidents/mine.
//
// @Summary      List incidents filed by the caller
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   incidentSummaryResponse
// @Failure      401  {object}  errorResponse
// @Router       /incidents/mine [get]
func (h *IncidentHandler) Mine(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	items, err := h.service.ListCreatedBy(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(items))
}

// Get handles GET /incidents/:id.
//
// @Summary      Get an incident
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Incident ID"
// @Success      200  {object}  incidentSummaryResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /incidents/{id} [get]
func (h *IncidentHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := incidentID(c)
	if err != nil {
		return err
	}

	incident, err := h.service.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSummaryResponse(incident))
}

// Update handles PUT /incidents/:id. Omitted fields keep their value;
// "assigned_to": null clears the assignee.
//
// @Summary      Update an incident's status or assignee
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                    true  "Incident ID"
// @Param        body  body      updateIncidentRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /incidents/{id} [put]
func (h *IncidentHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := incidentID(c)
	if err != nil {
		return err
	}

	var req updateIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Status.Set && req.Status.Value == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "status cannot be null")
	}

	if _, err := h.service.Update(c.Request().Context(), actor, id, toUpdateInput(req)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Incident updated successfully!"})
}

func incidentID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid incident id")
	}
	return id, nil
}
