package handlers

import (
	"errors"
	"net/http"

	"eventboard-backend/internal/models"
	"eventboard-backend/internal/repository"
	"eventboard-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
	maxBody     int64
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, maxBody int64) *UserHandler {
	return &UserHandler{
		userService: userService,
		maxBody:     maxBody,
	}
}

func (h *UserHandler) readFields(form *requestForm) (models.UserFields, error) {
	age, err := form.number("User", "age")
	if err != nil {
		return models.UserFields{}, err
	}
	return models.UserFields{
		Name:  form.str("name"),
		Email: form.str("email"),
		Age:   age,
	}, nil
}

// CreateUser handles POST /CreateUser
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(w, r, h.maxBody)
	if err != nil {
		respondFormError(w, r, err)
		return
	}
	defer form.close()

	if form.upload == nil {
		respondWriteError(w, r, services.ErrMissingImage, "Failed to create user")
		return
	}
	fields, err := h.readFields(form)
	if err != nil {
		respondWriteError(w, r, err, "Failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), fields, form.upload)
	if err != nil {
		respondWriteError(w, r, err, "Failed to create user")
		return
	}

	respondJSON(w, user, http.StatusOK)
}

// UpdateUser handles PUT /updateUser/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	form, err := parseForm(w, r, h.maxBody)
	if err != nil {
		respondFormError(w, r, err)
		return
	}
	defer form.close()

	fields, err := h.readFields(form)
	if err != nil {
		respondWriteError(w, r, err, "Failed to update user")
		return
	}

	user, err := h.userService.Update(r.Context(), id, fields, form.upload)
	if err != nil {
		respondWriteError(w, r, err, "Failed to update user")
		return
	}

	respondJSON(w, user, http.StatusOK)
}

// ListUsers handles GET /
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to list users")
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, users, http.StatusOK)
}

// DeleteUser handles DELETE /deleteUser/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.userService.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondNull(w)
			return
		}
		respondPassthrough(w, r, err, "Failed to delete user")
		return
	}

	respondJSON(w, user, http.StatusOK)
}

// GetUser handles GET /getUser/{id} and GET /SingleUser/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondNull(w)
			return
		}
		respondPassthrough(w, r, err, "Failed to get user")
		return
	}

	respondJSON(w, user, http.StatusOK)
}
