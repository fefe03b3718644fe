package controllers

import (
	"net/http"

	"github.com/communityhub/server/internal/app/services"
	"github.com/communityhub/server/internal/domain/asset"
)

type FileController struct {
	service services.FileService
}

func NewFileController(s services.FileService) *FileController {
	return &FileController{service: s}
}

func (c *FileController) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var in asset.CreateInput
	if !decodeBody(w, r, &in) {
		return
	}
	out, err := c.service.Create(r.Context(), in, caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (c *FileController) MarkUploaded(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	a, err := c.service.MarkUploaded(r.Context(), r.PathValue("id"), caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (c *FileController) DownloadURL(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	url, err := c.service.DownloadURL(r.Context(), r.PathValue("id"), caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (c *FileController) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := c.service.Delete(r.Context(), r.PathValue("id"), caller.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *FileController) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	items, err := c.service.ListMine(r.Context(), caller.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
