package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"sjsage522/menufinder/internal/crawler"
	"sjsage522/menufinder/internal/finder"
	"sjsage522/menufinder/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// RecipeCatalog is the recipe collection the server browses
type RecipeCatalog interface {
	Len() int
	Get(id string) (crawler.Recipe, bool)
	Search(selected []string, query string) []finder.Result
	Ingredients() []string
	ReloadFrom(ctx context.Context, collectionURL string, max int) ([]crawler.Recipe, error)
}

// Options configures the defaults shown on the settings form
type Options struct {
	CollectionURL string
	MaxRecipes    int
	AllowOrigins  []string
}

// Server serves the recipe browser and its JSON API
type Server struct {
	router   *gin.Engine
	http     *http.Server
	catalog  RecipeCatalog
	opts     Options
	reloadMu sync.Mutex
}

// New creates a server with every route registered
func New(catalog RecipeCatalog, opts Options) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger())
	router.Use(cors.New(corsConfig(opts.AllowOrigins)))
	router.SetHTMLTemplate(template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html"),
	))

	s := &Server{
		router:  router,
		catalog: catalog,
		opts:    opts,
		http: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.registerRoutes()
	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, RequestIDHeader)
	cfg.ExposeHeaders = []string{RequestIDHeader}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.index)
	s.router.GET("/recipes/:id", s.recipePage)
	s.router.POST("/reload", s.reloadPage)
	s.router.GET("/sample", s.samplePage)
	s.router.GET("/healthz", s.health)

	api := s.router.Group("/api/v1")
	api.GET("/recipes", s.apiSearch)
	api.GET("/recipes/:id", s.apiRecipe)
	api.GET("/ingredients", s.apiIngredients)
	api.POST("/reload", s.apiReload)

	s.router.NoRoute(func(c *gin.Context) {
		s.notFound(c, "ไม่พบหน้าที่ต้องการ")
	})
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called.
// After Shutdown, Start returns nil without serving.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown is called
func (s *Server) Serve(ln net.Listener) error {
	logger.ForServer().Info().Str("addr", ln.Addr().String()).Msg("Starting HTTP server")
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

var templateFuncs = template.FuncMap{
	"percent": func(score float64) string {
		return fmt.Sprintf("%.0f", score*100)
	},
	"orUnknown": func(value string) string {
		if value == "" {
			return crawler.NotSpecified
		}
		return value
	},
}
