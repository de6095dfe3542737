package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"communityevents/internal/delivery/http/helpers"
	"communityevents/internal/delivery/http/middleware"
	"communityevents/internal/domain"
)

// CalendarRenderer renders events as an iCalendar document.
type CalendarRenderer interface {
	Render(ctx context.Context, events []*domain.Event, now time.Time) string
}

type RegistrationController struct {
	Logger   *slog.Logger
	Service  domain.RegistrationService
	Renderer CalendarRenderer
	Now      func() time.Time
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService, renderer CalendarRenderer) *RegistrationController {
	return &RegistrationController{
		Logger:   logger,
		Service:  svc,
		Renderer: renderer,
		Now:      time.Now,
	}
}

// RegisterRequest is the request body for POST /registrations.
type RegisterRequest struct {
	EventID      string `json:"event_id"`
	UserID       string `json:"user_id,omitempty"`
	SyncCalendar bool   `json:"sync_calendar,omitempty"`
	Credential   string `json:"credential,omitempty"`
}

// Validate implements helpers.Validator.
func (r *RegisterRequest) Validate() []string {
	r.EventID = strings.TrimSpace(r.EventID)
	r.UserID = strings.TrimSpace(r.UserID)
	r.Credential = strings.TrimSpace(r.Credential)
	if r.EventID == "" {
		return []string{"event_id is required"}
	}
	return nil
}

// SyncStatus reports the calendar step of a registration request.
type SyncStatus struct {
	Success         bool              `json:"success"`
	Created         bool              `json:"created"`
	ExternalEventID string            `json:"external_event_id,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	Error           *helpers.APIError `json:"error,omitempty"`
}

// RegisterResponse is the data payload of a successful POST /registrations.
type RegisterResponse struct {
	Registration *domain.Registration `json:"registration"`
	Sync         *SyncStatus          `json:"sync,omitempty"`
}

// RegisterSuccessResponse is the success envelope for POST /registrations.
type RegisterSuccessResponse struct {
	Success bool              `json:"success"`
	Data    *RegisterResponse `json:"data"`
	Error   *helpers.APIError `json:"error"`
}

// Register godoc
// @Summary Register the current user for an event
// @Description Creates a registration for the authenticated user. With sync_calendar the event is also mirrored to the user's calendar; a sync failure is reported in data.sync and the registration still stands.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Calendar-Token header string false "Calendar access token, used when credential is not in the body"
// @Param body body controllers.RegisterRequest true "Registration"
// @Success 201 {object} controllers.RegisterSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_input"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_registered"
// @Failure 500 {object} helpers.APIResponse "error.code: server_error"
// @Router /registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.authorizedUser(w, r)
	if !ok {
		return
	}
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.UserID != "" && req.UserID != userID {
		helpers.WriteJSONError(w, http.StatusForbidden, domain.CodeForbidden, "cannot register another user")
		return
	}

	if !req.SyncCalendar {
		reg, err := c.Service.Register(r.Context(), userID, req.EventID)
		if err != nil {
			c.fail(w, r, err)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusCreated, &RegisterResponse{Registration: reg})
		return
	}

	cred := domain.Credential(req.Credential)
	if cred == "" {
		cred = middleware.CalendarCredential(r)
	}
	res, err := c.Service.RegisterAndSync(r.Context(), userID, req.EventID, cred)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, &RegisterResponse{
		Registration: res.Registration,
		Sync:         syncStatus(res.Sync),
	})
}

func syncStatus(o *domain.SyncOutcome) *SyncStatus {
	if o == nil {
		return nil
	}
	if o.Err != nil {
		return &SyncStatus{Error: &helpers.APIError{Code: o.Code, Message: o.Err.Error()}}
	}
	st := &SyncStatus{Success: true}
	if o.Result != nil {
		st.Created = o.Result.Created
		st.ExternalEventID = o.Result.ExternalEventID
		st.Reason = o.Result.Reason
	}
	return st
}

// MyEventsResponse is the data payload of GET /registrations.
type MyEventsResponse struct {
	Events []*domain.Event `json:"events"`
}

// ListMyEvents godoc
// @Summary List the events the current user registered for
// @Description Returns catalog events for every registration of the user. Registrations whose event no longer resolves are omitted.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "Must match the authenticated user when given"
// @Success 200 {object} helpers.APIResponse{data=controllers.MyEventsResponse}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: server_error"
// @Router /registrations [get]
func (c *RegistrationController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.authorizedUser(w, r)
	if !ok {
		return
	}
	if q := strings.TrimSpace(r.URL.Query().Get("user_id")); q != "" && q != userID {
		helpers.WriteJSONError(w, http.StatusForbidden, domain.CodeForbidden, "cannot list another user's events")
		return
	}
	events, err := c.Service.ListMyEvents(r.Context(), userID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &MyEventsResponse{Events: events})
}

// SyncCalendarRequest is the request body for POST /calendar/sync.
type SyncCalendarRequest struct {
	EventID    string `json:"event_id"`
	Credential string `json:"credential,omitempty"`
}

// Validate implements helpers.Validator.
func (r *SyncCalendarRequest) Validate() []string {
	r.EventID = strings.TrimSpace(r.EventID)
	r.Credential = strings.TrimSpace(r.Credential)
	if r.EventID == "" {
		return []string{"event_id is required"}
	}
	return nil
}

// SyncCalendar godoc
// @Summary Add an event to the user's external calendar
// @Description Mirrors a catalog event into the primary calendar of the credential's owner. An event with the same title in the same window is reported as a duplicate instead of being created again.
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Calendar-Token header string false "Calendar access token, used when credential is not in the body"
// @Param body body controllers.SyncCalendarRequest true "Event to sync"
// @Success 200 {object} helpers.APIResponse{data=domain.SyncResult}
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_input, missing_credential or invalid_schedule"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: provider_error"
// @Router /calendar/sync [post]
func (c *RegistrationController) SyncCalendar(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.authorizedUser(w, r); !ok {
		return
	}
	var req SyncCalendarRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	cred := domain.Credential(req.Credential)
	if cred == "" {
		cred = middleware.CalendarCredential(r)
	}
	res, err := c.Service.SyncToCalendar(r.Context(), req.EventID, cred)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// ExportCalendar godoc
// @Summary Download the current user's registrations as iCalendar
// @Tags calendar
// @Produce text/calendar
// @Security BearerAuth
// @Success 200 {string} string "VCALENDAR document"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: server_error"
// @Router /registrations/calendar.ics [get]
func (c *RegistrationController) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.authorizedUser(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListMyEvents(r.Context(), userID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	body := c.Renderer.Render(r.Context(), events, c.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="registrations.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (c *RegistrationController) authorizedUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, domain.CodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

func (c *RegistrationController) fail(w http.ResponseWriter, r *http.Request, err error) {
	if helpers.StatusFor(err) >= http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteServiceError(w, err)
}
