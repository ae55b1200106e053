package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/events-api/internal/api/handler/v1/response"
	"github.com/citypulse/events-api/internal/domain"
)

func newEventRouter(svc *fakeEventService, callerID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewEventHandler(svc, newFakeUserService(testStaff, testRegular))

	router := gin.New()
	group := router.Group("/api/v1")
	if callerID != 0 {
		group.Use(authAs(callerID))
	}
	group.GET("/events", handler.HandleListEvents)
	group.POST("/events", handler.HandleCreateEvent)
	group.GET("/events/export-xlsx", handler.HandleExportEvents)
	group.POST("/events/import-xlsx", handler.HandleImportEvents)
	group.GET("/events/:eventID", handler.HandleGetEvent)
	group.PUT("/events/:eventID", handler.HandleUpdateEvent)
	group.PATCH("/events/:eventID", handler.HandlePatchEvent)
	group.DELETE("/events/:eventID", handler.HandleDeleteEvent)

	return router
}

func TestHandleListEventsAnonymous(t *testing.T) {
	draft := publishedEvent(2, "Hidden draft")
	draft.Status = domain.StatusDraft

	svc := newFakeEventService(publishedEvent(1, "Visible"), draft)
	router := newEventRouter(svc, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.lastCaller)

	var body response.ListEventsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, int64(1), body.Count)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Visible", body.Results[0].Title)
}

func TestHandleListEventsStaffSeesDrafts(t *testing.T) {
	draft := publishedEvent(2, "Draft")
	draft.Status = domain.StatusDraft

	svc := newFakeEventService(publishedEvent(1, "Visible"), draft)
	router := newEventRouter(svc, testStaff.ID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastCaller)
	assert.True(t, svc.lastCaller.IsStaff())

	var body response.ListEventsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Count)
}

func TestHandleListEventsUnknownCaller(t *testing.T) {
	router := newEventRouter(newFakeEventService(), 99)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleListEventsUserLookupFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uSvc := newFakeUserService(testStaff)
	uSvc.err = errors.New("connection refused")
	handler := NewEventHandler(newFakeEventService(), uSvc)

	router := gin.New()
	router.GET("/api/v1/events", authAs(testStaff.ID), handler.HandleListEvents)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	router.ServeHTTP(w, req)

	// A backend outage is not the caller's fault.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleListEventsBadFilter(t *testing.T) {
	router := newEventRouter(newFakeEventService(), 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?rating_min=lots", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetEventDraftInvisibleToAnonymous(t *testing.T) {
	draft := publishedEvent(1, "Draft")
	draft.Status = domain.StatusDraft

	router := newEventRouter(newFakeEventService(draft), 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func createEventBody(t *testing.T) *bytes.Buffer {
	t.Helper()

	body, err := json.Marshal(gin.H{
		"title":      "New event",
		"start_date": "2026-09-01T18:00:00Z",
		"end_date":   "2026-09-01T20:00:00Z",
		"location":   1,
		"rating":     10,
	})
	require.NoError(t, err)

	return bytes.NewBuffer(body)
}

func TestHandleCreateEventAnonymousForbidden(t *testing.T) {
	svc := newFakeEventService()
	router := newEventRouter(svc, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", createEventBody(t))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, svc.created)
}

func TestHandleCreateEventRegularUserForbidden(t *testing.T) {
	svc := newFakeEventService()
	router := newEventRouter(svc, testRegular.ID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", createEventBody(t))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, svc.created)
}

func TestHandleCreateEventStaff(t *testing.T) {
	svc := newFakeEventService()
	router := newEventRouter(svc, testStaff.ID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", createEventBody(t))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "New event", svc.created.Title)
	assert.Equal(t, testStaff.ID, svc.author.ID)
}

func TestHandleCreateEventValidation(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
	}{
		{
			name: "missing title",
			body: gin.H{
				"start_date": "2026-09-01T18:00:00Z",
				"end_date":   "2026-09-01T20:00:00Z",
				"location":   1,
			},
		},
		{
			name: "end before start",
			body: gin.H{
				"title":      "Backwards",
				"start_date": "2026-09-01T20:00:00Z",
				"end_date":   "2026-09-01T18:00:00Z",
				"location":   1,
			},
		},
		{
			name: "rating too high",
			body: gin.H{
				"title":      "Overrated",
				"start_date": "2026-09-01T18:00:00Z",
				"end_date":   "2026-09-01T20:00:00Z",
				"location":   1,
				"rating":     26,
			},
		},
		{
			name: "unknown status",
			body: gin.H{
				"title":      "Odd status",
				"start_date": "2026-09-01T18:00:00Z",
				"end_date":   "2026-09-01T20:00:00Z",
				"location":   1,
				"status":     "archived",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newFakeEventService()
			router := newEventRouter(svc, testStaff.ID)

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, svc.created)
		})
	}
}

func TestHandlePatchEvent(t *testing.T) {
	svc := newFakeEventService(publishedEvent(1, "Before"))
	router := newEventRouter(svc, testStaff.ID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/events/1", strings.NewReader(`{"title": "After"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body domain.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "After", body.Title)
}

func TestHandleDeleteEvent(t *testing.T) {
	svc := newFakeEventService(publishedEvent(1, "Doomed"))
	router := newEventRouter(svc, testStaff.ID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/events/1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/events/1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleExportEvents(t *testing.T) {
	svc := newFakeEventService(publishedEvent(1, "Exported"))
	router := newEventRouter(svc, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/export-xlsx", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "events.xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestHandleImportEventsAnonymousForbidden(t *testing.T) {
	router := newEventRouter(newFakeEventService(), 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/import-xlsx", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
