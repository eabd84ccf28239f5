package handlers

import (
	"errors"
	"net/http"

	"eventboard-backend/internal/models"
	"eventboard-backend/internal/repository"
	"eventboard-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService *services.EventService
	maxBody      int64
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService, maxBody int64) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		maxBody:      maxBody,
	}
}

func readEventFields(form *requestForm) models.EventFields {
	fields := models.EventFields{
		EventName:    form.str("eventName"),
		Creator:      form.str("creator"),
		Participants: form.list("participants"),
		Description:  form.str("description"),
		Location:     form.str("location"),
	}
	if date := form.str("date"); date != nil {
		fields.Date = *date
	}
	return fields
}

// CreateEvent handles POST /CreateEvents
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(w, r, h.maxBody)
	if err != nil {
		respondFormError(w, r, err)
		return
	}
	defer form.close()

	event, err := h.eventService.Create(r.Context(), readEventFields(form), form.upload)
	if err != nil {
		respondWriteError(w, r, err, "Failed to create event")
		return
	}

	respondJSON(w, event, http.StatusOK)
}

// UpdateEvent handles PUT /editEvent/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	form, err := parseForm(w, r, h.maxBody)
	if err != nil {
		respondFormError(w, r, err)
		return
	}
	defer form.close()

	event, err := h.eventService.Update(r.Context(), id, readEventFields(form), form.upload)
	if err != nil {
		respondWriteError(w, r, err, "Failed to update event")
		return
	}

	respondJSON(w, event, http.StatusOK)
}

// ListEvents handles GET /Events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.List(r.Context())
	if err != nil {
		respondServerError(w, r, err, "Failed to list events")
		return
	}
	respondJSON(w, events, http.StatusOK)
}

// ListByCreator handles GET /PostsByCreator/{creatorId}
func (h *EventHandler) ListByCreator(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListByCreator(r.Context(), chi.URLParam(r, "creatorId"))
	if err != nil {
		respondServerError(w, r, err, "Failed to list events by creator")
		return
	}
	respondJSON(w, events, http.StatusOK)
}

// ListByParticipant handles GET /EventsByParticipant/{participantsId}
func (h *EventHandler) ListByParticipant(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListByParticipant(r.Context(), chi.URLParam(r, "participantsId"))
	if err != nil {
		respondServerError(w, r, err, "Failed to list events by participant")
		return
	}
	respondJSON(w, events, http.StatusOK)
}

// DeleteEvent handles DELETE /deletePost/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondNull(w)
			return
		}
		respondPassthrough(w, r, err, "Failed to delete event")
		return
	}
	respondJSON(w, event, http.StatusOK)
}

// GetEvent handles GET /getPost/{id}. With ?populate=name the creator and
// participants are resolved to names.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var (
		event any
		err   error
	)
	if r.URL.Query().Get("populate") == "name" {
		event, err = h.eventService.Get(r.Context(), id)
	} else {
		event, err = h.eventService.GetRaw(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondNull(w)
			return
		}
		respondPassthrough(w, r, err, "Failed to get event")
		return
	}
	respondJSON(w, event, http.StatusOK)
}

// GetExpandedEvent handles GET /SingleEvent/{id}
func (h *EventHandler) GetExpandedEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.GetExpanded(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondMessage(w, "Post not found", http.StatusNotFound)
			return
		}
		respondServerError(w, r, err, "Failed to get event")
		return
	}
	respondJSON(w, event, http.StatusOK)
}
