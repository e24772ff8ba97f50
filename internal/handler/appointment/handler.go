package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-booking/internal/handler"
	"github.com/jwalitptl/clinic-booking/internal/middleware"
	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/service/appointment"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
	loc     *time.Location
}

func NewHandler(service *appointment.Service, loc *time.Location) *Handler {
	return &Handler{service: service, loc: loc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", auth.Require(model.RolePatient), h.Book)
		appointments.GET("", auth.Require(model.RoleDoctor), h.ListForDoctor)
		appointments.GET("/:id", auth.Require(model.RolePatient, model.RoleDoctor, model.RoleAdmin), h.Get)
		appointments.PUT("/:id", auth.Require(model.RolePatient), h.Update)
		appointments.DELETE("/:id", auth.Require(model.RolePatient, model.RoleAdmin), h.Cancel)
	}
}

func (h *Handler) parseTime(c *gin.Context, value string) (time.Time, bool) {
	at, err := model.ParseAppointmentTime(value, h.loc)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return time.Time{}, false
	}
	return at, true
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	at, ok := h.parseTime(c, req.AppointmentTime)
	if !ok {
		return
	}

	detail, err := h.service.Book(c.Request.Context(), middleware.Principal(c), req.DoctorID, at)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, detail.View(h.loc))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	at, ok := h.parseTime(c, req.AppointmentTime)
	if !ok {
		return
	}

	detail, err := h.service.Update(c.Request.Context(), middleware.Principal(c), id, req.DoctorID, at)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, detail.View(h.loc))
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), middleware.Principal(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, detail.View(h.loc))
}

// ListForDoctor returns the calling doctor's appointments on date (default today),
// optionally filtered by patient_name.
func (h *Handler) ListForDoctor(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		raw = time.Now().In(h.loc).Format(model.DateLayout)
	}
	date, err := model.ParseDate(raw, h.loc)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	details, err := h.service.ListForDoctor(c.Request.Context(), middleware.Principal(c), date, c.Query("patient_name"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, model.Views(details, h.loc))
}
