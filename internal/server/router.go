package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/launchr/internal/args"
	"github.com/loykin/launchr/internal/supervisor"
)

// Router provides embeddable HTTP handlers over a supervisor and its handle registry.
// Endpoints:
//
//	POST   {basePath}/launchers             body: CreateRequest, creates a handle
//	GET    {basePath}/launchers             list of statuses
//	GET    {basePath}/launchers/:id         single status
//	POST   {basePath}/launchers/:id/launch  launch the handle
//	DELETE {basePath}/launchers/:id         destroy and forget the handle
//	POST   {basePath}/encode                body: EncodeRequest
//	POST   {basePath}/decode                body: DecodeRequest
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	sup      *supervisor.Supervisor
	reg      *supervisor.Registry
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
func NewRouter(sup *supervisor.Supervisor, reg *supervisor.Registry, basePath string) *Router {
	if reg == nil {
		reg = supervisor.NewRegistry()
	}
	return &Router{sup: sup, reg: reg, basePath: cleanBasePath(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	r.Mount(g.Group(r.basePath))
	return g
}

// Mount registers the routes on an existing gin group.
func (r *Router) Mount(group *gin.RouterGroup) {
	group.POST("/launchers", r.handleCreate)
	group.GET("/launchers", r.handleList)
	group.GET("/launchers/:id", r.handleStatus)
	group.POST("/launchers/:id/launch", r.handleLaunch)
	group.DELETE("/launchers/:id", r.handleDestroy)
	group.POST("/encode", r.handleEncode)
	group.POST("/decode", r.handleDecode)
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr string, r *Router) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

// --- Request / response bodies ---

type ArgPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type CreateRequest struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Args    []ArgPair `json:"args"`
	Verbose bool      `json:"verbose"`
	Launch  bool      `json:"launch"`
}

type EncodeRequest struct {
	Args []ArgPair `json:"args"`
}

type EncodeResponse struct {
	Arguments   string   `json:"arguments"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

type DecodeRequest struct {
	Argv []string `json:"argv"`
}

type DecodeResponse struct {
	Keys   []string `json:"keys"`
	Values []string `json:"values"`
}

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

func splitPairs(pairs []ArgPair) (keys, values []string) {
	keys = make([]string, 0, len(pairs))
	values = make([]string, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, p.Key)
		values = append(values, p.Value)
	}
	return keys, values
}

// statusCode maps supervisor errors to HTTP codes.
func statusCode(err error) int {
	var le *supervisor.LaunchError
	switch {
	case errors.Is(err, supervisor.ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, supervisor.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, supervisor.ErrNotFound), errors.Is(err, supervisor.ErrEmptyPath),
		errors.Is(err, supervisor.ErrNilConfig):
		return http.StatusBadRequest
	case errors.As(err, &le):
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// --- Handlers ---

func (r *Router) handleCreate(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Name != "" && !validLauncherName(req.Name) {
		writeError(c, http.StatusBadRequest, "invalid name: 1-64 of [A-Za-z0-9._-], starting with a letter or digit, no '..'")
		return
	}
	if !validExecutablePath(req.Path) {
		writeError(c, http.StatusBadRequest, "invalid path: must be a clean absolute path")
		return
	}
	keys, values := splitPairs(req.Args)
	h, err := r.sup.Create(&supervisor.Config{
		Name:           req.Name,
		Path:           req.Path,
		ArgumentKeys:   keys,
		ArgumentValues: values,
		Verbose:        req.Verbose,
	}, supervisor.Callbacks{})
	if err != nil {
		writeError(c, statusCode(err), err.Error())
		return
	}
	if req.Launch {
		// a handle whose first launch failed is never registered
		if err := r.sup.Launch(h); err != nil {
			r.sup.Destroy(h)
			writeError(c, statusCode(err), err.Error())
			return
		}
	}
	r.reg.Add(h)
	writeJSON(c, http.StatusCreated, h.Status())
}

func (r *Router) handleList(c *gin.Context) {
	handles := r.reg.List()
	out := make([]supervisor.Status, 0, len(handles))
	for _, h := range handles {
		out = append(out, h.Status())
	}
	writeJSON(c, http.StatusOK, out)
}

func (r *Router) lookup(c *gin.Context) (*supervisor.Handle, bool) {
	h, ok := r.reg.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "launcher not found: "+c.Param("id"))
	}
	return h, ok
}

func (r *Router) handleStatus(c *gin.Context) {
	h, ok := r.lookup(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, h.Status())
}

func (r *Router) handleLaunch(c *gin.Context) {
	h, ok := r.lookup(c)
	if !ok {
		return
	}
	if err := r.sup.Launch(h); err != nil {
		writeError(c, statusCode(err), err.Error())
		return
	}
	writeJSON(c, http.StatusOK, h.Status())
}

func (r *Router) handleDestroy(c *gin.Context) {
	h, ok := r.reg.Remove(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "launcher not found: "+c.Param("id"))
		return
	}
	r.sup.Destroy(h)
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleEncode(c *gin.Context) {
	var req EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	keys, values := splitPairs(req.Args)
	encoded, diags := args.EncodeChecked(keys, values)
	resp := EncodeResponse{Arguments: encoded}
	for _, d := range diags {
		resp.Diagnostics = append(resp.Diagnostics, d.String())
	}
	writeJSON(c, http.StatusOK, resp)
}

func (r *Router) handleDecode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	writeJSON(c, http.StatusOK, DecodeResponse{
		Keys:   args.DecodeKeys(req.Argv),
		Values: args.DecodeValues(req.Argv),
	})
}
