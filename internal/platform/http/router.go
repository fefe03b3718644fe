package http

import (
	"encoding/json"
	"log/slog"
	stdhttp "net/http"
	"os"
	"sync"

	yaml "gopkg.in/yaml.v3"

	"github.com/communityhub/server/internal/app/controllers"
	"github.com/communityhub/server/internal/app/services"
	"github.com/communityhub/server/internal/platform/middleware"
)

type RouterConfig struct {
	AuthCtrl      *controllers.AuthController
	CommunityCtrl *controllers.CommunityController
	EventCtrl     *controllers.EventController
	FileCtrl      *controllers.FileController
	Users         services.UserService
	Logger        *slog.Logger
	SwaggerEnable bool
}

func NewRouter(cfg RouterConfig) stdhttp.Handler {
	mux := stdhttp.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"name":        "CommunityHub API",
			"version":     "0.1.0",
			"description": "Community and event management API",
			"features": map[string]bool{
				"communities": true,
				"events":      true,
				"digests":     true,
				"files":       cfg.FileCtrl != nil,
			},
			"endpoints": map[string]string{
				"health":        "/health",
				"documentation": "/docs",
				"openapi_yaml":  "/openapi.yaml",
				"openapi_json":  "/openapi.json",
			},
		})
	})

	mux.HandleFunc("GET /health", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	if cfg.SwaggerEnable {
		registerDocs(mux)
	}

	mux.HandleFunc("POST /auth/register", cfg.AuthCtrl.Register)
	mux.HandleFunc("POST /auth/token", cfg.AuthCtrl.Token)
	mux.HandleFunc("GET /auth/me", cfg.AuthCtrl.Me)

	mux.HandleFunc("POST /communities", cfg.CommunityCtrl.Create)
	mux.HandleFunc("GET /communities", cfg.CommunityCtrl.List)
	mux.HandleFunc("GET /communities/slug/{slug}", cfg.CommunityCtrl.GetBySlug)
	mux.HandleFunc("PATCH /communities/{id}", cfg.CommunityCtrl.Update)
	mux.HandleFunc("DELETE /communities/{id}", cfg.CommunityCtrl.Archive)
	mux.HandleFunc("POST /communities/{id}/join", cfg.CommunityCtrl.Join)
	mux.HandleFunc("POST /communities/{id}/leave", cfg.CommunityCtrl.Leave)
	mux.HandleFunc("GET /communities/{id}/events", cfg.CommunityCtrl.ListEvents)

	mux.HandleFunc("POST /events", cfg.EventCtrl.Create)
	mux.HandleFunc("GET /events/{id}", cfg.EventCtrl.Get)
	mux.HandleFunc("PATCH /events/{id}", cfg.EventCtrl.Update)
	mux.HandleFunc("POST /events/{id}/publish", cfg.EventCtrl.Publish)
	mux.HandleFunc("POST /events/{id}/hide", cfg.EventCtrl.Hide)
	mux.HandleFunc("POST /events/{id}/unpublish", cfg.EventCtrl.Unpublish)
	mux.HandleFunc("POST /events/{id}/cancel", cfg.EventCtrl.Cancel)

	if cfg.FileCtrl != nil {
		mux.HandleFunc("POST /files", cfg.FileCtrl.Create)
		mux.HandleFunc("GET /files", cfg.FileCtrl.ListMine)
		mux.HandleFunc("POST /files/{id}/uploaded", cfg.FileCtrl.MarkUploaded)
		mux.HandleFunc("GET /files/{id}/url", cfg.FileCtrl.DownloadURL)
		mux.HandleFunc("DELETE /files/{id}", cfg.FileCtrl.Delete)
	}

	var handler stdhttp.Handler = mux
	handler = middleware.Authenticate(cfg.Users)(handler)
	handler = middleware.Logging(cfg.Logger)(handler)
	handler = middleware.CORS(handler)
	return handler
}

func registerDocs(mux *stdhttp.ServeMux) {
	var (
		once     sync.Once
		yamlData []byte
		yamlErr  error
	)
	loadYAML := func() ([]byte, error) {
		once.Do(func() { yamlData, yamlErr = os.ReadFile("docs/openapi.yaml") })
		return yamlData, yamlErr
	}
	mux.HandleFunc("GET /openapi.yaml", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		data, err := loadYAML()
		if err != nil {
			w.WriteHeader(stdhttp.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Write(data)
	})
	mux.HandleFunc("GET /openapi.json", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		data, err := loadYAML()
		if err != nil {
			w.WriteHeader(stdhttp.StatusNotFound)
			return
		}
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			w.WriteHeader(stdhttp.StatusInternalServerError)
			return
		}
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			w.WriteHeader(stdhttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(jsonBytes)
	})
	mux.HandleFunc("GET /docs", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<!DOCTYPE html><html><head><title>API Docs</title><link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css"/></head><body><div id="swagger-ui"></div><script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script><script>window.onload=()=>{SwaggerUIBundle({url:'/openapi.yaml',dom_id:'#swagger-ui'});};</script></body></html>`))
	})
}
