package controllers

import (
	"net/http"

	"github.com/communityhub/server/internal/app/services"
	"github.com/communityhub/server/internal/domain/community"
)

type CommunityController struct {
	communities services.CommunityService
	events      services.CalendarEventService
}

func NewCommunityController(communities services.CommunityService, events services.CalendarEventService) *CommunityController {
	return &CommunityController{communities: communities, events: events}
}

func (c *CommunityController) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var in community.CreateInput
	if !decodeBody(w, r, &in) {
		return
	}
	comm, err := c.communities.Create(r.Context(), in, caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comm)
}

func (c *CommunityController) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.communities.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetBySlug serves the community profile. Anonymous callers get the public
// fields only.
func (c *CommunityController) GetBySlug(w http.ResponseWriter, r *http.Request) {
	profile, err := c.communities.GetBySlug(r.Context(), r.PathValue("slug"), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (c *CommunityController) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var in community.UpdateInput
	if !decodeBody(w, r, &in) {
		return
	}
	comm, err := c.communities.Update(r.Context(), r.PathValue("id"), in, caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comm)
}

func (c *CommunityController) Archive(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := c.communities.Archive(r.Context(), r.PathValue("id"), caller.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *CommunityController) Join(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if _, err := c.communities.Join(r.Context(), r.PathValue("id"), caller.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"joined": true})
}

func (c *CommunityController) Leave(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := c.communities.Leave(r.Context(), r.PathValue("id"), caller.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"left": true})
}

func (c *CommunityController) ListEvents(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	items, err := c.events.List(r.Context(), r.PathValue("id"), caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
