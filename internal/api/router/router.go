package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/media-exporter/internal/api/handlers/batch"
	"github.com/aliskhannn/media-exporter/internal/middleware"
)

func Setup(h *batch.Handler) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.CORSMiddleware())
	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")

	api.POST("/batches", h.Create)              // uploading a batch of images
	api.GET("/batches/:id", h.Get)              // batch status and outcomes
	api.GET("/batches/:id/archive", h.Archive)  // downloading the export archive
	api.POST("/preview", h.Preview)             // rendering a crop preview

	return r
}
