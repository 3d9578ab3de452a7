// Package server exposes the card store and study statistics as a JSON
// REST API.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/gakuroku/gakuroku/internal/stats"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CardStore is the storage the API serves.
type CardStore interface {
	Lists(ctx context.Context) ([]flashcard.List, error)
	CreateList(ctx context.Context, name string) (*flashcard.List, error)
	UpdateList(ctx context.Context, id int64, name, description string) (*flashcard.List, error)
	DeleteList(ctx context.Context, id int64) error
	FetchCards(ctx context.Context, listID int64) ([]flashcard.Flashcard, error)
	AddCard(ctx context.Context, listID int64, entryID, note string) (*flashcard.Flashcard, error)
	PersistLearned(ctx context.Context, cardID int64, learned bool, note string) (*flashcard.Flashcard, error)
	DeleteCard(ctx context.Context, id int64) error
	SearchEntries(ctx context.Context, keyword string) ([]flashcard.Word, error)
}

// Options configures the HTTP layer.
type Options struct {
	// Token, when set, is required as "Authorization: Bearer <token>" on
	// every /api route.
	Token       string
	CORSOrigins []string
	// Quiet disables gin's request logger.
	Quiet bool
}

// Server routes REST requests to the store.
type Server struct {
	store  CardStore
	stats  stats.Provider
	opts   Options
	engine *gin.Engine
}

// New builds the router.
func New(store CardStore, st stats.Provider, opts Options) *Server {
	s := &Server{store: store, stats: st, opts: opts}

	e := gin.New()
	if !opts.Quiet {
		e.Use(gin.Logger())
	}
	e.Use(gin.Recovery())

	e.GET("/", s.root)
	e.GET("/healthz", s.health)

	api := e.Group("/api", s.requireToken)
	api.GET("/lists", s.listLists)
	api.POST("/lists", s.createList)
	api.PATCH("/lists/:id", s.updateList)
	api.DELETE("/lists/:id", s.deleteList)
	api.GET("/lists/:id/flashcards", s.listCards)
	api.POST("/flashcards", s.createCard)
	api.PATCH("/flashcards/:id", s.updateCard)
	api.DELETE("/flashcards/:id", s.deleteCard)
	api.GET("/search", s.search)
	api.GET("/stats/heatmap", s.heatmap)
	api.GET("/stats/overview", s.overview)

	s.engine = e
	return s
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(s.engine)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("gakuroku API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requireToken(c *gin.Context) {
	if s.opts.Token == "" {
		c.Next()
		return
	}
	got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.Token)) != 1 {
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	c.Next()
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Gakuroku API", "status": "running"})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
