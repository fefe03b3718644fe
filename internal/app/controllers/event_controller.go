package controllers

import (
	"context"
	"net/http"

	"github.com/communityhub/server/internal/app/services"
	"github.com/communityhub/server/internal/domain/event"
)

type EventController struct {
	service services.CalendarEventService
}

func NewEventController(s services.CalendarEventService) *EventController {
	return &EventController{service: s}
}

func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var in event.CreateInput
	if !decodeBody(w, r, &in) {
		return
	}
	ev, err := c.service.Create(r.Context(), in, caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	ev, err := c.service.Get(r.Context(), r.PathValue("id"), caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var in event.UpdateInput
	if !decodeBody(w, r, &in) {
		return
	}
	ev, err := c.service.Update(r.Context(), r.PathValue("id"), in, caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (c *EventController) Publish(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Publish)
}

func (c *EventController) Hide(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Hide)
}

func (c *EventController) Unpublish(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Unpublish)
}

func (c *EventController) Cancel(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Cancel)
}

func (c *EventController) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, eventID, callerID string) (*event.Event, error)) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	ev, err := fn(r.Context(), r.PathValue("id"), caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
