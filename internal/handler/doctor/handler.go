package doctor

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-booking/internal/handler"
	"github.com/jwalitptl/clinic-booking/internal/middleware"
	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/service/availability"
	"github.com/jwalitptl/clinic-booking/internal/service/doctor"
	"github.com/jwalitptl/clinic-booking/internal/service/filter"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/httputil"
)

type Handler struct {
	service  *doctor.Service
	resolver *filter.Resolver
	engine   *availability.Engine
}

func NewHandler(service *doctor.Service, resolver *filter.Resolver, engine *availability.Engine) *Handler {
	return &Handler{service: service, resolver: resolver, engine: engine}
}

type AvailabilityResponse struct {
	DoctorID       string   `json:"doctor_id"`
	Date           string   `json:"date"`
	AvailableTimes []string `json:"available_times"`
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.List)
		doctors.GET("/filter", h.Filter)
		doctors.GET("/:id/availability",
			auth.Require(model.RolePatient, model.RoleDoctor, model.RoleAdmin), h.Availability)

		admin := doctors.Group("", auth.Require(model.RoleAdmin))
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	doctors, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}

// Filter narrows the doctor list by name, specialty and time (AM or PM).
func (h *Handler) Filter(c *gin.Context) {
	doctors, err := h.resolver.Doctors(c.Request.Context(), filter.DoctorFilter{
		Name:      c.Query("name"),
		Specialty: c.Query("specialty"),
		Time:      c.Query("time"),
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) Availability(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	raw := c.Query("date")
	if raw == "" {
		raw = time.Now().In(h.engine.Location()).Format(model.DateLayout)
	}
	date, err := model.ParseDate(raw, h.engine.Location())
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}

	slots, err := h.engine.Availability(c.Request.Context(), id, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, AvailabilityResponse{
		DoctorID:       id.String(),
		Date:           date.Format(model.DateLayout),
		AvailableTimes: slots,
	})
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	d, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, d)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	d, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
