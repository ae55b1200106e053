package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citypulse/events-api/internal/api/handler/v1/request"
	"github.com/citypulse/events-api/internal/api/handler/v1/response"
	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/service"
)

type LocationService interface {
	CreateLocation(ctx context.Context, location domain.Location) (domain.Location, error)
	GetLocation(ctx context.Context, id uint) (domain.Location, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)
	UpdateLocation(ctx context.Context, location domain.Location) (domain.Location, error)
	DeleteLocation(ctx context.Context, id uint) error
}

// LocationHandler serves the location collection. Every operation here,
// reads included, is staff-only.
type LocationHandler struct {
	svc  LocationService
	uSvc UserService
}

func NewLocationHandler(svc LocationService, uSvc UserService) *LocationHandler {
	return &LocationHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListLocations godoc
// @Summary      List locations
// @Tags         locations
// @Produce      json
// @Success      200  {array}   domain.Location
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /locations [get]
// @Security BearerAuth
func (h *LocationHandler) HandleListLocations(ctx *gin.Context) {
	if _, respErr := requireStaff(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	locations, err := h.svc.ListLocations(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListLocations -> h.svc.ListLocations -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, locations)
}

// HandleCreateLocation godoc
// @Summary      Create a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateLocationRequest true "request body"
// @Success      201      {object}  domain.Location
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /locations [post]
// @Security BearerAuth
func (h *LocationHandler) HandleCreateLocation(ctx *gin.Context) {
	if _, respErr := requireStaff(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.CreateLocationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	location, err := h.svc.CreateLocation(ctx.Request.Context(), domain.Location{
		Name: req.Name,
		Lat:  req.Lat,
		Lon:  req.Lon,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateLocation -> h.svc.CreateLocation -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, location)
}

// HandleGetLocation godoc
// @Summary      Get a location by ID
// @Tags         locations
// @Produce      json
// @Param        locationID  path      int  true  "location ID"
// @Success      200  {object}  domain.Location
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /locations/{locationID} [get]
// @Security BearerAuth
func (h *LocationHandler) HandleGetLocation(ctx *gin.Context) {
	if _, respErr := requireStaff(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	id, err := parseIDParam(ctx, "locationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	location, err := h.svc.GetLocation(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("location", "ID", id))

			return
		}

		err = fmt.Errorf("v1.HandleGetLocation -> h.svc.GetLocation -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, location)
}

// HandleUpdateLocation godoc
// @Summary      Update a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        locationID  path      int  true  "location ID"
// @Param        request     body      request.UpdateLocationRequest true "request body"
// @Success      200  {object}  domain.Location
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /locations/{locationID} [put]
// @Security BearerAuth
func (h *LocationHandler) HandleUpdateLocation(ctx *gin.Context) {
	if _, respErr := requireStaff(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	id, err := parseIDParam(ctx, "locationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.UpdateLocationRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	location, err := h.svc.UpdateLocation(ctx.Request.Context(), domain.Location{
		ID:   id,
		Name: req.Name,
		Lat:  req.Lat,
		Lon:  req.Lon,
	})
	if err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("location", "ID", id))

			return
		}

		err = fmt.Errorf("v1.HandleUpdateLocation -> h.svc.UpdateLocation -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, location)
}

// HandleDeleteLocation godoc
// @Summary      Delete a location and its events
// @Tags         locations
// @Param        locationID  path  int  true  "location ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /locations/{locationID} [delete]
// @Security BearerAuth
func (h *LocationHandler) HandleDeleteLocation(ctx *gin.Context) {
	if _, respErr := requireStaff(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	id, err := parseIDParam(ctx, "locationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = h.svc.DeleteLocation(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("location", "ID", id))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteLocation -> h.svc.DeleteLocation -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}
