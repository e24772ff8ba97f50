package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	appointmentHandler "github.com/jwalitptl/clinic-booking/internal/handler/appointment"
	authHandler "github.com/jwalitptl/clinic-booking/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/clinic-booking/internal/handler/doctor"
	"github.com/jwalitptl/clinic-booking/internal/handler/health"
	patientHandler "github.com/jwalitptl/clinic-booking/internal/handler/patient"
	prescriptionHandler "github.com/jwalitptl/clinic-booking/internal/handler/prescription"
	"github.com/jwalitptl/clinic-booking/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-booking/internal/middleware"
	"github.com/jwalitptl/clinic-booking/internal/repository/cache"
	"github.com/jwalitptl/clinic-booking/internal/repository/memory"
	"github.com/jwalitptl/clinic-booking/internal/router"
	appointmentService "github.com/jwalitptl/clinic-booking/internal/service/appointment"
	authService "github.com/jwalitptl/clinic-booking/internal/service/auth"
	"github.com/jwalitptl/clinic-booking/internal/service/availability"
	doctorService "github.com/jwalitptl/clinic-booking/internal/service/doctor"
	"github.com/jwalitptl/clinic-booking/internal/service/filter"
	patientService "github.com/jwalitptl/clinic-booking/internal/service/patient"
	prescriptionService "github.com/jwalitptl/clinic-booking/internal/service/prescription"
	"github.com/jwalitptl/clinic-booking/pkg/auth"
	"github.com/jwalitptl/clinic-booking/pkg/lock"
	"github.com/jwalitptl/clinic-booking/pkg/security"
)

// APIResponse represents the API response structure
type APIResponse struct {
	Status  string          `json:"status"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// TestResponse wraps the API response for testing
type TestResponse struct {
	HTTPStatus int
	APIResponse
}

func (r TestResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r TestResponse) Decode(v interface{}) error {
	return json.Unmarshal(r.Data, v)
}

type APISuite struct {
	suite.Suite
	engine *gin.Engine
	day    time.Time
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := memory.NewStore()
	jwtSvc, err := auth.NewJWTService(auth.Config{Secret: "router-test-secret"})
	s.Require().NoError(err)
	hasher := security.NewBcryptHasher(4)
	doctors := cache.NewDoctorRepository(store.Doctors(), time.Minute)

	prom := prometheus.New("clinic_booking_test")
	engine := availability.NewEngine(doctors, store.Appointments(), time.UTC)
	resolver := filter.NewResolver(doctors, store.Appointments())
	authSvc := authService.NewService(store.Admins(), doctors, store.Patients(), jwtSvc, hasher, prom.Metrics())
	appointmentSvc := appointmentService.NewService(store, doctors, store.Appointments(), engine,
		lock.NewLocalLocker(time.Second), appointmentService.WithMetrics(prom.Metrics()))
	s.Require().NoError(authSvc.BootstrapAdmin(ctx, store, "admin", "adminpass"))

	r := router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		router.Handlers{
			Auth:         authHandler.NewHandler(authSvc),
			Doctor:       doctorHandler.NewHandler(doctorService.NewService(store, doctors, store.Patients(), store.Appointments(), hasher), resolver, engine),
			Patient:      patientHandler.NewHandler(patientService.NewService(store, store.Patients(), doctors, hasher), resolver, time.UTC),
			Appointment:  appointmentHandler.NewHandler(appointmentSvc, time.UTC),
			Prescription: prescriptionHandler.NewHandler(prescriptionService.NewService(store.Prescriptions(), store.Appointments(), appointmentSvc)),
			Health:       health.NewHandler(nil),
			Prometheus:   prom,
		},
		router.RouterConfig{
			CORSConfig: middleware.CORSConfig{AllowOrigins: []string{"*"}},
		},
	)
	r.Setup()
	s.engine = r.Engine()

	y, m, d := time.Now().UTC().AddDate(0, 0, 7).Date()
	s.day = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *APISuite) makeRequest(method, path string, body interface{}, token string) TestResponse {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	resp := TestResponse{HTTPStatus: w.Code}
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp.APIResponse), w.Body.String())
	}
	return resp
}

func (s *APISuite) login(role, field, identifier, password string) string {
	resp := s.makeRequest(http.MethodPost, "/auth/"+role+"/login", map[string]string{
		field:      identifier,
		"password": password,
	}, "")
	s.Require().True(resp.IsSuccess(), resp.Message)

	var token struct {
		Token string `json:"token"`
	}
	s.Require().NoError(resp.Decode(&token))
	return token.Token
}

func (s *APISuite) createDoctor(adminToken string) string {
	resp := s.makeRequest(http.MethodPost, "/doctors", map[string]interface{}{
		"email":           "lee@clinic.test",
		"name":            "Dr. Lee",
		"specialty":       "Cardiology",
		"phone":           "5551234567",
		"password":        "doctorpass",
		"available_times": []string{"09:00", "10:00", "14:00"},
	}, adminToken)
	s.Require().Equal(http.StatusCreated, resp.HTTPStatus, resp.Message)

	var doctor struct {
		ID string `json:"id"`
	}
	s.Require().NoError(resp.Decode(&doctor))
	return doctor.ID
}

func (s *APISuite) signupPatient(email, phone string) string {
	resp := s.makeRequest(http.MethodPost, "/patients", map[string]string{
		"email":    email,
		"phone":    phone,
		"name":     "Pat Jones",
		"address":  "12 Elm Street",
		"password": "patientpass",
	}, "")
	s.Require().Equal(http.StatusCreated, resp.HTTPStatus, resp.Message)
	return s.login("patient", "email", email, "patientpass")
}

func (s *APISuite) slot(clock string) string {
	return s.day.Format("2006-01-02") + "T" + clock + ":00Z"
}

func (s *APISuite) TestBookingLifecycle() {
	adminToken := s.login("admin", "username", "admin", "adminpass")
	doctorID := s.createDoctor(adminToken)
	patientToken := s.signupPatient("pat@example.test", "5550000001")
	otherToken := s.signupPatient("sam@example.test", "5550000002")
	doctorToken := s.login("doctor", "email", "lee@clinic.test", "doctorpass")

	availabilityPath := fmt.Sprintf("/doctors/%s/availability?date=%s", doctorID, s.day.Format("2006-01-02"))
	resp := s.makeRequest(http.MethodGet, availabilityPath, nil, patientToken)
	s.Require().True(resp.IsSuccess(), resp.Message)

	resp = s.makeRequest(http.MethodPost, "/appointments", map[string]string{
		"doctor_id":        doctorID,
		"appointment_time": s.slot("10:00"),
	}, patientToken)
	s.Require().Equal(http.StatusCreated, resp.HTTPStatus, resp.Message)
	var booked struct {
		ID        string `json:"id"`
		TimeOfDay string `json:"time_of_day"`
		Status    string `json:"status"`
	}
	s.Require().NoError(resp.Decode(&booked))
	s.Equal("10:00", booked.TimeOfDay)
	s.Equal("scheduled", booked.Status)

	resp = s.makeRequest(http.MethodPost, "/appointments", map[string]string{
		"doctor_id":        doctorID,
		"appointment_time": s.slot("10:00"),
	}, otherToken)
	s.Equal(http.StatusConflict, resp.HTTPStatus)
	s.Equal("CONFLICT", resp.Code)

	resp = s.makeRequest(http.MethodGet, availabilityPath, nil, doctorToken)
	var slots struct {
		AvailableTimes []string `json:"available_times"`
	}
	s.Require().NoError(resp.Decode(&slots))
	s.Equal([]string{"09:00", "14:00"}, slots.AvailableTimes)

	// a patient token is not a doctor token
	resp = s.makeRequest(http.MethodGet, "/appointments?date="+s.day.Format("2006-01-02"), nil, patientToken)
	s.Equal(http.StatusUnauthorized, resp.HTTPStatus)

	resp = s.makeRequest(http.MethodGet, "/appointments?patient_name=jones&date="+s.day.Format("2006-01-02"), nil, doctorToken)
	s.Require().True(resp.IsSuccess(), resp.Message)
	var day []map[string]interface{}
	s.Require().NoError(resp.Decode(&day))
	s.Len(day, 1)

	resp = s.makeRequest(http.MethodPost, "/prescriptions", map[string]string{
		"appointment_id": booked.ID,
		"patient_name":   "Pat Jones",
		"medication":     "Amoxicillin",
		"dosage":         "500mg",
	}, doctorToken)
	s.Require().Equal(http.StatusCreated, resp.HTTPStatus, resp.Message)

	resp = s.makeRequest(http.MethodGet, "/patients/me/appointments?condition=past", nil, patientToken)
	s.Require().True(resp.IsSuccess(), resp.Message)
	var past []map[string]interface{}
	s.Require().NoError(resp.Decode(&past))
	s.Require().Len(past, 1)
	s.Equal("completed", past[0]["status"])

	resp = s.makeRequest(http.MethodPut, "/appointments/"+booked.ID, map[string]string{
		"doctor_id":        doctorID,
		"appointment_time": s.slot("14:00"),
	}, patientToken)
	s.Equal(http.StatusBadRequest, resp.HTTPStatus)

	resp = s.makeRequest(http.MethodDelete, "/appointments/"+booked.ID, nil, otherToken)
	s.Equal(http.StatusUnauthorized, resp.HTTPStatus)

	resp = s.makeRequest(http.MethodDelete, "/appointments/"+booked.ID, nil, adminToken)
	s.Equal(http.StatusNoContent, resp.HTTPStatus)

	resp = s.makeRequest(http.MethodGet, "/appointments/"+booked.ID, nil, patientToken)
	s.Equal(http.StatusNotFound, resp.HTTPStatus)
}

func (s *APISuite) TestValidationAndFilters() {
	adminToken := s.login("admin", "username", "admin", "adminpass")
	s.createDoctor(adminToken)

	resp := s.makeRequest(http.MethodPost, "/doctors", map[string]interface{}{
		"email":           "kim@clinic.test",
		"name":            "Dr. Kim",
		"specialty":       "Dermatology",
		"phone":           "555-123",
		"password":        "doctorpass",
		"available_times": []string{"9am"},
	}, adminToken)
	s.Equal(http.StatusBadRequest, resp.HTTPStatus)
	s.Equal("INVALID_INPUT", resp.Code)

	resp = s.makeRequest(http.MethodGet, "/doctors/filter?specialty=cardiology&time=pm", nil, "")
	s.Require().True(resp.IsSuccess(), resp.Message)
	var doctors []map[string]interface{}
	s.Require().NoError(resp.Decode(&doctors))
	s.Len(doctors, 1)

	resp = s.makeRequest(http.MethodGet, "/doctors/filter?time=evening", nil, "")
	s.Equal(http.StatusBadRequest, resp.HTTPStatus)

	resp = s.makeRequest(http.MethodPost, "/auth/doctor/login", map[string]string{
		"email": "lee@clinic.test", "password": "wrong-password",
	}, "")
	s.Equal(http.StatusUnauthorized, resp.HTTPStatus)

	resp = s.makeRequest(http.MethodPost, "/doctors", map[string]interface{}{}, "")
	s.Equal(http.StatusUnauthorized, resp.HTTPStatus)
}

func (s *APISuite) TestHealthAndMetrics() {
	resp := s.makeRequest(http.MethodGet, "/health/ready", nil, "")
	s.Equal(http.StatusOK, resp.HTTPStatus)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "clinic_booking_test_http_requests_total")
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}
