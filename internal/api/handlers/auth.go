package handlers

import (
	"net/http"

	"github.com/eventuraa/server/internal/api/middleware"
	"github.com/eventuraa/server/internal/api/problem"
	"github.com/eventuraa/server/internal/domain/users"
	"github.com/eventuraa/server/internal/metrics"
)

type AuthHandler struct {
	Users *users.Service
	Env   string
}

func NewAuthHandler(service *users.Service, env string) *AuthHandler {
	return &AuthHandler{Users: service, Env: env}
}

type authResponse struct {
	Token string           `json:"token"`
	User  users.Projection `json:"user"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var params users.SignupParams
	if !decodeBody(w, r, &params, h.Env) {
		return
	}

	identity, token, err := h.Users.Signup(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	metrics.SignupsTotal.WithLabelValues(identity.Role).Inc()
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: users.Project(identity)})
}

// SignupOrganizer handles POST /api/auth/organizer/signup
func (h *AuthHandler) SignupOrganizer(w http.ResponseWriter, r *http.Request) {
	var params users.OrganizerSignupParams
	if !decodeBody(w, r, &params, h.Env) {
		return
	}

	identity, token, err := h.Users.SignupOrganizer(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	metrics.SignupsTotal.WithLabelValues(identity.Role).Inc()
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: users.Project(identity)})
}

// SignupDoctor handles POST /api/auth/doctor/signup
func (h *AuthHandler) SignupDoctor(w http.ResponseWriter, r *http.Request) {
	var params users.DoctorSignupParams
	if !decodeBody(w, r, &params, h.Env) {
		return
	}

	identity, token, err := h.Users.SignupDoctor(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	metrics.SignupsTotal.WithLabelValues(identity.Role).Inc()
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: users.Project(identity)})
}

// SignupAdmin handles POST /api/auth/admin/signup
func (h *AuthHandler) SignupAdmin(w http.ResponseWriter, r *http.Request) {
	var params users.AdminSignupParams
	if !decodeBody(w, r, &params, h.Env) {
		return
	}

	identity, token, err := h.Users.SignupAdmin(r.Context(), params)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	metrics.SignupsTotal.WithLabelValues(identity.Role).Inc()
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: users.Project(identity)})
}

// Signin handles POST /api/auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &params, h.Env) {
		return
	}

	identity, token, err := h.Users.Authenticate(r.Context(), params.Email, params.Password)
	if err != nil {
		metrics.SigninsTotal.WithLabelValues("failure").Inc()
		writeDomainError(w, r, err, h.Env)
		return
	}

	metrics.SigninsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: users.Project(identity)})
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Authentication required", nil, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]users.Projection{"user": users.Project(identity)})
}
