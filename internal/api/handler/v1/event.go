package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citypulse/events-api/internal/api/handler/v1/request"
	"github.com/citypulse/events-api/internal/api/handler/v1/response"
	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/service"
	"github.com/citypulse/events-api/internal/spreadsheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EventService interface {
	ListEvents(ctx context.Context, filter domain.EventFilter, caller *domain.User) ([]domain.Event, int64, error)
	GetEvent(ctx context.Context, id uint, caller *domain.User) (domain.Event, error)
	CreateEvent(ctx context.Context, event domain.Event, author domain.User) (domain.Event, error)
	UpdateEvent(ctx context.Context, id uint, event domain.Event) (domain.Event, error)
	PatchEvent(ctx context.Context, id uint, patch service.EventPatch) (domain.Event, error)
	DeleteEvent(ctx context.Context, id uint) error
	AttachImage(ctx context.Context, eventID uint, filename string, data []byte) (domain.EventImage, error)
	ExportEvents(ctx context.Context, filter domain.EventFilter, caller *domain.User) ([]domain.Event, error)
	ImportEvents(ctx context.Context, r io.Reader, importer domain.User) (int, error)
}

type EventHandler struct {
	svc  EventService
	uSvc UserService
}

func NewEventHandler(svc EventService, uSvc UserService) *EventHandler {
	return &EventHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListEvents godoc
// @Summary      List events
// @Description  Anonymous callers see published events only; staff also sees drafts.
// @Tags         events
// @Produce      json
// @Param        start_date_after   query  string  false  "start date lower bound"
// @Param        start_date_before  query  string  false  "start date upper bound"
// @Param        end_date_after     query  string  false  "end date lower bound"
// @Param        end_date_before    query  string  false  "end date upper bound"
// @Param        rating_min         query  int     false  "rating lower bound"
// @Param        rating_max         query  int     false  "rating upper bound"
// @Param        location           query  []int   false  "location IDs"
// @Param        status             query  string  false  "draft or published"
// @Param        search             query  string  false  "search over title and location name"
// @Param        ordering           query  string  false  "title, start_date or end_date, '-' prefix for descending"
// @Param        page               query  int     false  "page number"
// @Param        page_size          query  int     false  "page size"
// @Success      200  {object}  response.ListEventsResponse
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	caller, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	filter, err := request.ParseEventFilter(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	events, total, err := h.svc.ListEvents(ctx.Request.Context(), filter, caller)
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.ListEventsResponse{
		Count:   total,
		Results: events,
	})
}

// HandleGetEvent godoc
// @Summary      Get an event by ID
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	caller, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	id, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), id, caller)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", id))

			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  The author is always the caller; any author in the payload is ignored.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest true "request body"
// @Success      201  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [post]
// @Security BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	user, respErr := requireStaff(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), domain.Event{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		LocationID:  req.LocationID,
		Rating:      req.Rating,
		Status:      domain.EventStatus(req.Status),
	}, *user)
	if err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrLocationNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Setting status to published on a draft enqueues one notification email.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Param        request  body      request.UpdateEventRequest true "request body"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [put]
// @Security BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	if _, respErr := requireStaff(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	id, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.UpdateEventRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), id, domain.Event{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		LocationID:  req.LocationID,
		Rating:      req.Rating,
		Status:      domain.EventStatus(req.Status),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", id))
		case errors.Is(err, service.ErrLocationNotFound):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrLocationNotFound))
		default:
			err = fmt.Errorf("v1.HandleUpdateEvent -> h.svc.UpdateEvent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandlePatchEvent godoc
// @Summary      Partially update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Param        request  body      request.PatchEventRequest true "request body"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [patch]
// @Security BearerAuth
func (h *EventHandler) HandlePatchEvent(ctx *gin.Context) {
	if _, respErr := requireStaff(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	id, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.PatchEventRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	patch := service.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		LocationID:  req.LocationID,
		Rating:      req.Rating,
	}
	if req.Status != nil {
		status := domain.EventStatus(*req.Status)
		patch.Status = &status
	}

	event, err := h.svc.PatchEvent(ctx.Request.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", id))
		case errors.Is(err, service.ErrLocationNotFound):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrLocationNotFound))
		default:
			err = fmt.Errorf("v1.HandlePatchEvent -> h.svc.PatchEvent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Tags         events
// @Param        eventID  path  int  true  "event ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [delete]
// @Security BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	if _, respErr := requireStaff(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	id, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = h.svc.DeleteEvent(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", id))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteEvent -> h.svc.DeleteEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleUploadImage godoc
// @Summary      Attach an image to an event
// @Description  JPEG and PNG uploads get a thumbnail with the longer side scaled to 200px.
// @Tags         events
// @Accept       mpfd
// @Produce      json
// @Param        eventID  path      int   true  "event ID"
// @Param        image    formData  file  true  "image file"
// @Success      201  {object}  domain.EventImage
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/images [post]
// @Security BearerAuth
func (h *EventHandler) HandleUploadImage(ctx *gin.Context) {
	if _, respErr := requireStaff(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	id, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("image file is required")))

		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		err = fmt.Errorf("v1.HandleUploadImage -> fileHeader.Open -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		err = fmt.Errorf("v1.HandleUploadImage -> io.ReadAll -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	image, err := h.svc.AttachImage(ctx.Request.Context(), id, fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", id))
		case errors.Is(err, service.ErrBadImage):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleUploadImage -> h.svc.AttachImage -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, image)
}

// HandleExportEvents godoc
// @Summary      Export events as a spreadsheet
// @Description  Streams the filtered event set visible to the caller as an XLSX download.
// @Tags         events
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    binary
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/export-xlsx [get]
func (h *EventHandler) HandleExportEvents(ctx *gin.Context) {
	caller, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	filter, err := request.ParseEventFilter(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	events, err := h.svc.ExportEvents(ctx.Request.Context(), filter, caller)
	if err != nil {
		err = fmt.Errorf("v1.HandleExportEvents -> h.svc.ExportEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	workbook, err := spreadsheet.WriteEvents(events)
	if err != nil {
		err = fmt.Errorf("v1.HandleExportEvents -> spreadsheet.WriteEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="events.xlsx"`)
	ctx.Header("Content-Type", xlsxContentType)
	if _, err = workbook.WriteTo(ctx.Writer); err != nil {
		// Headers are already out, nothing to render.
		_ = ctx.Error(fmt.Errorf("v1.HandleExportEvents -> workbook.WriteTo -> %w", err))
	}
}

// HandleImportEvents godoc
// @Summary      Import events from a spreadsheet
// @Description  Bulk-creates published events owned by the caller. Runs as a single transaction.
// @Tags         events
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file  true  "XLSX workbook"
// @Success      200  {object}  response.ImportEventsResponse
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/import-xlsx [post]
// @Security BearerAuth
func (h *EventHandler) HandleImportEvents(ctx *gin.Context) {
	user, respErr := requireStaff(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("workbook file is required")))

		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		err = fmt.Errorf("v1.HandleImportEvents -> fileHeader.Open -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}
	defer file.Close()

	created, err := h.svc.ImportEvents(ctx.Request.Context(), file, *user)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWorkbook) {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}

		err = fmt.Errorf("v1.HandleImportEvents -> h.svc.ImportEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.ImportEventsResponse{
		Created: created,
	})
}
