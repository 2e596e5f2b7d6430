package router

import "github.com/gin-gonic/gin"

// APIVersionPrefix is where resource modules are mounted, below /api.
const APIVersionPrefix = "/v1"

// Registry collects modules per mount point: the engine root (webhooks),
// /api (operational endpoints) and /api/v1 (resources). Middleware added with
// Use applies to everything under /api.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	apiModules  []Module
	rootModules []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

// Add mounts mod under /api/v1.
func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// AddAPI mounts mod directly under /api.
func (r *Registry) AddAPI(mod Module) {
	r.apiModules = append(r.apiModules, mod)
}

// AddRoot mounts mod on the engine root, outside the /api middleware.
func (r *Registry) AddRoot(mod Module) {
	r.rootModules = append(r.rootModules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.rootModules {
		m.Register(&r.Engine.RouterGroup)
	}
	for _, m := range r.apiModules {
		m.Register(r.API)
	}
	v1 := r.API.Group(APIVersionPrefix)
	for _, m := range r.modules {
		m.Register(v1)
	}
}
