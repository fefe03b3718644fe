package controllers

import (
	"net/http"

	"github.com/communityhub/server/internal/app/services"
	"github.com/communityhub/server/internal/domain/user"
)

type AuthController struct {
	service services.UserService
}

func NewAuthController(s services.UserService) *AuthController {
	return &AuthController{service: s}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in user.RegisterInput
	if !decodeBody(w, r, &in) {
		return
	}
	u, err := c.service.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (c *AuthController) Token(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Subject string `json:"subject"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	token, err := c.service.IssueToken(r.Context(), in.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, caller)
}
