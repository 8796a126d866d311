package stub

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// resources are the collections the admin API exposes.
var resources = []string{
	"users", "mentors", "teams", "projects",
	"stock", "consumables", "locations", "suppliers", "messages",
}

// Server is the stub admin backend.
type Server struct {
	store *Store
	log   *slog.Logger
}

// NewServer creates a Server over the given store.
func NewServer(store *Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{store: store, log: log}
}

// Router builds the gin engine with all API routes and the fault injector.
func (s *Server) Router(faults *FaultInjector) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if faults != nil {
		r.Use(faults.Middleware())
	}

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "stub"})
	})

	for _, res := range resources {
		api.GET("/"+res, s.list(res))
		api.GET("/"+res+"/:id", s.get(res))
		api.POST("/"+res, s.create(res))
		api.PUT("/"+res+"/:id", s.update(res))
		api.DELETE("/"+res+"/:id", s.remove(res))
	}

	api.POST("/stock/:id/adjust", s.adjustNumeric("stock", "quantity"))
	api.POST("/consumables/:id/consume", s.adjustNumeric("consumables", "remaining"))
	api.GET("/teams/:id/members", s.teamMembers)
	return r
}

func (s *Server) list(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := s.store.List(c.Request.Context(), resource)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, docs)
	}
}

func (s *Server) get(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		doc, err := s.store.Get(c.Request.Context(), resource, id)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", doc)
	}
}

func (s *Server) create(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc map[string]any
		if err := c.ShouldBindJSON(&doc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
			return
		}
		if resource == "messages" {
			doc["sentAt"] = time.Now().UTC().Format(time.RFC3339)
		}
		stored, err := s.store.Insert(c.Request.Context(), resource, doc)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Data(http.StatusCreated, "application/json", stored)
	}
}

func (s *Server) update(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var doc map[string]any
		if err := c.ShouldBindJSON(&doc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
			return
		}
		stored, err := s.store.Update(c.Request.Context(), resource, id, doc)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", stored)
	}
}

func (s *Server) remove(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := s.store.Delete(c.Request.Context(), resource, id); err != nil {
			s.fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// adjustNumeric applies a delta to one numeric field of a document, the way
// stock adjustments and consumable usage work on the real backend.
func (s *Server) adjustNumeric(resource, field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var body struct {
			Delta float64 `json:"delta"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
			return
		}

		raw, err := s.store.Get(c.Request.Context(), resource, id)
		if err != nil {
			s.fail(c, err)
			return
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.fail(c, err)
			return
		}
		current, _ := doc[field].(float64)
		next := current + body.Delta
		if next < 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"message": "insufficient " + field,
				"field":   field,
			})
			return
		}
		doc[field] = next
		stored, err := s.store.Update(c.Request.Context(), resource, id, doc)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", stored)
	}
}

// teamMembers lists the users whose teamId matches the path id.
func (s *Server) teamMembers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := s.store.Get(c.Request.Context(), "teams", id); err != nil {
		s.fail(c, err)
		return
	}
	docs, err := s.store.List(c.Request.Context(), "users")
	if err != nil {
		s.fail(c, err)
		return
	}
	members := make([]json.RawMessage, 0)
	for _, raw := range docs {
		var doc struct {
			TeamID int64 `json:"teamId"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if doc.TeamID == id {
			members = append(members, raw)
		}
	}
	c.JSON(http.StatusOK, members)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}

func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "record not found"})
		return
	}
	s.log.Error("stub request failed", slog.String("path", c.FullPath()), slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}
