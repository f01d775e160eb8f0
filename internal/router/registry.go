package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Registry collects feature modules and mounts them under one API group.
// Middleware added with Use applies to every module route.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll mounts the health probe on the engine root, then every module.
func (r *Registry) RegisterAll() {
	r.Engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}

// LogRoutes prints the route table at debug level.
func (r *Registry) LogRoutes(logger *logrus.Logger) {
	for _, rt := range r.Engine.Routes() {
		logger.WithFields(logrus.Fields{"method": rt.Method, "path": rt.Path}).Debug("route")
	}
}
