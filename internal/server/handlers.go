package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/gin-gonic/gin"
)

type listCreateRequest struct {
	Name string `json:"name" binding:"required"`
}

type listUpdateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type cardCreateRequest struct {
	ListID  int64  `json:"list_id" binding:"required,gt=0"`
	EntryID string `json:"entry_id" binding:"required"`
	Note    string `json:"note"`
}

type cardUpdateRequest struct {
	IsMemorized *bool  `json:"is_memorized" binding:"required"`
	Note        string `json:"note"`
}

func (s *Server) listLists(c *gin.Context) {
	lists, err := s.store.Lists(c.Request.Context())
	if err != nil {
		s.fail(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (s *Server) createList(c *gin.Context) {
	var req listCreateRequest
	if !bind(c, &req) {
		return
	}
	l, err := s.store.CreateList(c.Request.Context(), req.Name)
	if err != nil {
		s.fail(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) updateList(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req listUpdateRequest
	if !bind(c, &req) {
		return
	}
	l, err := s.store.UpdateList(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		s.fail(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) deleteList(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteList(c.Request.Context(), id); err != nil {
		s.fail(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) listCards(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cards, err := s.store.FetchCards(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (s *Server) createCard(c *gin.Context) {
	var req cardCreateRequest
	if !bind(c, &req) {
		return
	}
	card, err := s.store.AddCard(c.Request.Context(), req.ListID, req.EntryID, req.Note)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, card)
	case errors.Is(err, flashcard.ErrDuplicate):
		detail(c, http.StatusConflict, "Flashcard already exists in this list")
	case errors.Is(err, flashcard.ErrNotFound):
		detail(c, http.StatusBadRequest, "Invalid list_id or entry_id")
	default:
		s.fail(c, err, "Flashcard")
	}
}

func (s *Server) updateCard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req cardUpdateRequest
	if !bind(c, &req) {
		return
	}
	card, err := s.store.PersistLearned(c.Request.Context(), id, *req.IsMemorized, req.Note)
	if err != nil {
		s.fail(c, err, "Flashcard")
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) deleteCard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteCard(c.Request.Context(), id); err != nil {
		s.fail(c, err, "Flashcard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) search(c *gin.Context) {
	keyword, ok := c.GetQuery("keyword")
	if !ok {
		detail(c, http.StatusUnprocessableEntity, "keyword: field required")
		return
	}
	words, err := s.store.SearchEntries(c.Request.Context(), keyword)
	if err != nil {
		s.fail(c, err, "Entry")
		return
	}
	if words == nil {
		words = []flashcard.Word{}
	}
	c.JSON(http.StatusOK, words)
}

func (s *Server) heatmap(c *gin.Context) {
	days, err := s.stats.Heatmap(c.Request.Context())
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, days)
}

func (s *Server) overview(c *gin.Context) {
	ov, err := s.stats.Overview(c.Request.Context())
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, ov)
}

// fail maps a store error onto an HTTP status. resource names the entity
// in 404 messages.
func (s *Server) fail(c *gin.Context, err error, resource string) {
	var invalid *flashcard.InvalidError
	switch {
	case errors.Is(err, flashcard.ErrNotFound):
		detail(c, http.StatusNotFound, resource+" not found")
	case errors.Is(err, flashcard.ErrDuplicate):
		detail(c, http.StatusConflict, err.Error())
	case errors.As(err, &invalid):
		detail(c, http.StatusUnprocessableEntity, invalid.Error())
	default:
		log.Printf("server: %s %s: %v", c.Request.Method, c.FullPath(), err)
		detail(c, http.StatusServiceUnavailable, "Database connection error")
	}
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		detail(c, http.StatusUnprocessableEntity, bindMessage(err))
		return false
	}
	return true
}

func bindMessage(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return fmt.Sprintf("invalid request body: %s", msg)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		detail(c, http.StatusUnprocessableEntity, fmt.Sprintf("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
