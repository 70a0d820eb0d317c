package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-curator/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	categoriesHandler := handlers.NewCategoriesHandler(s.lib)
	analysisHandler := handlers.NewAnalysisHandler(s.svc)
	queueHandler := handlers.NewQueueHandler(s.queue)
	imagesHandler := handlers.NewImagesHandler(s.lib)
	paramsHandler := handlers.NewParamsHandler(s.config.Params)
	statusHandler := handlers.NewStatusHandler(s.lib, s.svc, s.queue)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", statusHandler.Get)
		r.Get("/params", paramsHandler.Get)

		// Categories and images
		r.Get("/categories", categoriesHandler.List)
		r.Get("/categories/{category}/images/{filename}", imagesHandler.Get)

		// Detection
		r.Get("/categories/{category}/duplicates", analysisHandler.Duplicates)
		r.Get("/categories/{category}/similar", analysisHandler.Similar)
		r.Get("/categories/{category}/outliers", analysisHandler.Outliers)
		r.Get("/categories/{category}/analysis", analysisHandler.Combined)

		// Cache control
		r.Delete("/categories/{category}/cache", analysisHandler.InvalidateCache)
		r.Delete("/cache", statusHandler.ClearCache)

		// Deletion queue
		r.Get("/queue", queueHandler.Get)
		r.Post("/queue", queueHandler.Add)
		r.Delete("/queue/item", queueHandler.Remove)
		r.Delete("/queue", queueHandler.Clear)
		r.Get("/queue/preview", queueHandler.Preview)
		r.Post("/queue/confirm", queueHandler.Confirm)
	})

	s.router.Get("/", s.serveIndex)
}

// serveIndex returns a minimal landing page pointing at the API.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Photo Curator</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Photo Curator</h1>
        <p>API is available at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
