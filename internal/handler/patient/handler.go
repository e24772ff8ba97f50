package patient

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-booking/internal/handler"
	"github.com/jwalitptl/clinic-booking/internal/middleware"
	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/service/filter"
	"github.com/jwalitptl/clinic-booking/internal/service/patient"
	"github.com/jwalitptl/clinic-booking/pkg/httputil"
)

type Handler struct {
	service  *patient.Service
	resolver *filter.Resolver
	loc      *time.Location
}

func NewHandler(service *patient.Service, resolver *filter.Resolver, loc *time.Location) *Handler {
	return &Handler{service: service, resolver: resolver, loc: loc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware, limit ...gin.HandlerFunc) {
	patients := r.Group("/patients")
	{
		signup := append(append([]gin.HandlerFunc{}, limit...), h.Signup)
		patients.POST("", signup...)

		me := patients.Group("/me", auth.Require(model.RolePatient))
		me.GET("", h.Details)
		me.GET("/appointments", h.Appointments)
	}
}

func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupPatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, p)
}

func (h *Handler) Details(c *gin.Context) {
	p, err := h.service.Details(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

// Appointments lists the caller's appointments, filtered by condition (past or
// future) and doctor_name.
func (h *Handler) Appointments(c *gin.Context) {
	principal := middleware.Principal(c)
	details, err := h.resolver.PatientAppointments(c.Request.Context(), principal.ID, filter.AppointmentFilter{
		Condition:  c.Query("condition"),
		DoctorName: c.Query("doctor_name"),
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, model.Views(details, h.loc))
}
