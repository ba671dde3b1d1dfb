// Package router gom các domain router vào /api/v1.
package router

import (
	"sync"

	"film_camp/config"
	basesvc "film_camp/internal/api/base/service"
	"film_camp/internal/api/events"
	"film_camp/internal/api/middleware"
	"film_camp/internal/cache"
	"film_camp/internal/delivery"
	"film_camp/internal/storage"

	"github.com/gofiber/fiber/v3"
)

// ============================================================================
// LƯU Ý FIBER V3: middleware truyền trực tiếp vào router.Get(path, mw, handler)
// không được gọi. Middleware luôn gắn qua Group + Use (RegisterGroup).
// Use áp dụng cho mọi path dưới prefix, nên mỗi prefix chỉ có một bộ middleware:
// /auth công khai, /me và /applications cần đăng nhập, /admin và /users cho staff.
// ============================================================================

// Deps là các thành phần dùng chung được khởi tạo ở cmd/server và truyền cho domain router
type Deps struct {
	Config   *config.Configuration
	Resolver middleware.SessionResolver // Chuyển token thành session
	Cache    cache.Cache
	Store    storage.ObjectStore
	Mail     *delivery.Queue
	Hub      *events.Hub
	Tx       basesvc.Transactor
}

// Router giữ app Fiber và Deps cho các domain router cần tới
type Router struct {
	app  *fiber.App
	deps Deps

	mu     sync.Mutex
	groups map[string]fiber.Router
}

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // /api
	V1   string // /api/v1
}

// NewRoutePrefix tạo RoutePrefix mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// NewRouter tạo Router
func NewRouter(app *fiber.App, deps Deps) *Router {
	return &Router{app: app, deps: deps, groups: make(map[string]fiber.Router)}
}

// Deps trả về các thành phần dùng chung
func (r *Router) Deps() Deps {
	return r.deps
}

// RequireAuth là AuthMiddleware dùng Resolver của Deps
func (r *Router) RequireAuth(roles ...string) fiber.Handler {
	return middleware.AuthMiddleware(r.deps.Resolver, roles...)
}

// OptionalAuth gắn session nếu request có token
func (r *Router) OptionalAuth() fiber.Handler {
	return middleware.OptionalAuth(r.deps.Resolver)
}

// App trả về fiber.App
func (r *Router) App() *fiber.App {
	return r.app
}

// Route là một endpoint trong group
type Route struct {
	Method  string
	Path    string
	Handler fiber.Handler
}

func GET(path string, h fiber.Handler) Route    { return Route{Method: fiber.MethodGet, Path: path, Handler: h} }
func POST(path string, h fiber.Handler) Route   { return Route{Method: fiber.MethodPost, Path: path, Handler: h} }
func PUT(path string, h fiber.Handler) Route    { return Route{Method: fiber.MethodPut, Path: path, Handler: h} }
func PATCH(path string, h fiber.Handler) Route  { return Route{Method: fiber.MethodPatch, Path: path, Handler: h} }
func DELETE(path string, h fiber.Handler) Route { return Route{Method: fiber.MethodDelete, Path: path, Handler: h} }

// RegisterGroup tạo group prefix, gắn middlewares một lần qua Use rồi đăng ký routes.
//
//	RegisterGroup(v1, "/me", []fiber.Handler{authMiddleware},
//		GET("", handler.HandleMe),
//	)
func RegisterGroup(router fiber.Router, prefix string, middlewares []fiber.Handler, routes ...Route) fiber.Router {
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}
	addRoutes(routeGroup, routes)
	return routeGroup
}

func addRoutes(routeGroup fiber.Router, routes []Route) {
	for _, rt := range routes {
		switch rt.Method {
		case fiber.MethodGet:
			routeGroup.Get(rt.Path, rt.Handler)
		case fiber.MethodPost:
			routeGroup.Post(rt.Path, rt.Handler)
		case fiber.MethodPut:
			routeGroup.Put(rt.Path, rt.Handler)
		case fiber.MethodPatch:
			routeGroup.Patch(rt.Path, rt.Handler)
		case fiber.MethodDelete:
			routeGroup.Delete(rt.Path, rt.Handler)
		}
	}
}

// Mount giống RegisterGroup nhưng dùng lại group đã tạo cho cùng prefix, để nhiều domain
// (hồ sơ, thành viên, bình luận, phim ngắn) cùng treo route dưới /applications mà middleware chỉ chạy một lần.
// Lần gọi sau với cùng prefix bỏ qua middlewares.
func (r *Router) Mount(parent fiber.Router, prefix string, middlewares []fiber.Handler, routes ...Route) fiber.Router {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[prefix]
	if !ok {
		group = RegisterGroup(parent, prefix, middlewares)
		r.groups[prefix] = group
	}
	addRoutes(group, routes)
	return group
}

// RegisterFunc là hàm đăng ký route của một domain (do domain/router export)
type RegisterFunc func(v1 fiber.Router, r *Router) error

// SetupRoutes đăng ký route của từng domain dưới /api/v1. Caller truyền Register của từng domain để tránh import cycle.
func SetupRoutes(app *fiber.App, deps Deps, regs ...RegisterFunc) error {
	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	r := NewRouter(app, deps)
	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}
