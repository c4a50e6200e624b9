package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agenthands/persona/internal/core"
	"github.com/agenthands/persona/internal/core/aggregate"
	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/core/rag"
	"github.com/agenthands/persona/internal/platform/logger"
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Server struct {
	Engine     *core.Engine
	PersonaDir string
	log        *logger.Logger
}

func NewServer(engine *core.Engine, personaDir string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{Engine: engine, PersonaDir: personaDir, log: log}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/personas/:user_id", s.GetPersona)
	r.GET("/personas/:user_id/graph", s.GetGraph)
	r.POST("/personas/:user_id/ask", s.Ask)

	return r
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type AskRequest struct {
	Question  string             `json:"question" binding:"required"`
	TopK      int                `json:"top_k"`
	Community string             `json:"community"`
	Kind      model.FragmentKind `json:"kind"`
}

func (s *Server) Ask(c *gin.Context) {
	userID := c.Param("user_id")
	if !userIDPattern.MatchString(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.TopK < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "top_k must be positive"})
		return
	}

	ans, err := s.Engine.Ask(c.Request.Context(), rag.Query{
		UserID:   userID,
		Question: req.Question,
		TopK:     req.TopK,
		Filter:   model.FragmentFilter{Community: req.Community, Kind: req.Kind},
	})
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("query failed", "user_id", userID, "error", err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ans)
}

func (s *Server) GetPersona(c *gin.Context) {
	userID := c.Param("user_id")
	if !userIDPattern.MatchString(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	rec, err := aggregate.Load(aggregate.PersonaPath(s.PersonaDir, userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "persona not found"})
			return
		}
		s.log.Error("failed to load persona", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load persona"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetGraph returns the user's community edges as stored in the graph database.
func (s *Server) GetGraph(c *gin.Context) {
	userID := c.Param("user_id")
	if !userIDPattern.MatchString(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if s.Engine.Graph == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "graph export is disabled"})
		return
	}
	edges, err := s.Engine.Graph.Communities(c.Request.Context(), userID)
	if err != nil {
		s.log.Error("failed to read persona graph", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read persona graph"})
		return
	}
	if len(edges) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "persona not in graph"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "communities": edges})
}

// StatusFor maps pipeline errors onto HTTP status codes.
func StatusFor(err error) int {
	var empty *model.EmptyPersonaIndexError
	var mismatch *model.EmbeddingMismatchError
	var capability *model.ExternalCapabilityError
	switch {
	case errors.As(err, &empty):
		return http.StatusNotFound
	case errors.As(err, &mismatch):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &capability):
		return http.StatusBadGateway
	case model.IsUserError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
