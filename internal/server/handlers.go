package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/v0xg/puppetrec/internal/codegen"
	"github.com/v0xg/puppetrec/internal/config"
	"github.com/v0xg/puppetrec/internal/jscheck"
	"github.com/v0xg/puppetrec/internal/recording"
	"github.com/v0xg/puppetrec/internal/store"
	"go.uber.org/zap"
)

const scriptContentType = "text/javascript; charset=utf-8"

type compileRequest struct {
	Events  json.RawMessage   `json:"events"`
	Options codegen.Overrides `json:"options"`
}

type saveRequest struct {
	Name   string          `json:"name"`
	Events json.RawMessage `json:"events"`
}

type optionsResponse struct {
	Options    codegen.Options `json:"options"`
	Attributes []string        `json:"attributes"`
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleOptions(c *gin.Context) {
	opts := s.cfg.Options()
	c.JSON(http.StatusOK, optionsResponse{
		Options:    opts,
		Attributes: config.Attributes(opts),
	})
}

func (s *Server) handleMatchAttribute(c *gin.Context) {
	attribute := c.Query("attribute")
	if attribute == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "attribute is required"})
		return
	}

	matcher, err := config.NewAttributeMatcher(s.cfg.Options())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attribute": attribute, "match": matcher.Match(attribute)})
}

func (s *Server) handleCompile(c *gin.Context) {
	var req compileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}

	events, ok := s.parseEvents(c, req.Events)
	if !ok {
		return
	}
	s.writeScript(c, events, s.cfg.Options(req.Options))
}

func (s *Server) handleSaveRecording(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}

	events, ok := s.parseEvents(c, req.Events)
	if !ok {
		return
	}

	rec, err := s.store.Save(c.Request.Context(), req.Name, events)
	if errors.Is(err, store.ErrNoEvents) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.storageError(c, "save", err)
		return
	}

	s.logger.Info("recording saved",
		zap.String("id", rec.ID),
		zap.String("name", rec.Name),
		zap.Int("events", len(rec.Events)))
	c.JSON(http.StatusCreated, gin.H{"id": rec.ID, "name": rec.Name, "createdAt": rec.CreatedAt})
}

func (s *Server) handleListRecordings(c *gin.Context) {
	list, err := s.store.List(c.Request.Context())
	if err != nil {
		s.storageError(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetRecording(c *gin.Context) {
	rec, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDeleteRecording(c *gin.Context) {
	err := s.store.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.storageError(c, "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRecordingScript(c *gin.Context) {
	rec, ok := s.lookup(c)
	if !ok {
		return
	}

	overrides, err := queryOverrides(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.writeScript(c, rec.Events, s.cfg.Options(overrides))
}

// parseEvents decodes the events array record by record, dropping malformed records.
func (s *Server) parseEvents(c *gin.Context, raw json.RawMessage) ([]recording.Event, bool) {
	events, skipped, err := recording.ParseEvents(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	for _, sk := range skipped {
		s.logger.Debug("skipped malformed event",
			zap.Int("index", sk.Index),
			zap.Error(sk.Err))
	}
	return events, true
}

func (s *Server) lookup(c *gin.Context) (store.Recording, bool) {
	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return store.Recording{}, false
	}
	if err != nil {
		s.storageError(c, "get", err)
		return store.Recording{}, false
	}
	return rec, true
}

func (s *Server) writeScript(c *gin.Context, events []recording.Event, opts codegen.Options) {
	script := codegen.New(opts, s.logger).Generate(events)

	if c.Query("check") == "1" {
		if err := jscheck.Check(script, opts); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "script": script})
			return
		}
	}
	c.Data(http.StatusOK, scriptContentType, []byte(script))
}

func (s *Server) storageError(c *gin.Context, op string, err error) {
	s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
}

// queryOverrides reads generator options from query parameters named like the JSON
// option fields, e.g. ?wrapAsync=false&customLineAfterClick=...
func queryOverrides(c *gin.Context) (codegen.Overrides, error) {
	var ov codegen.Overrides

	bools := map[string]**bool{
		"wrapAsync":                &ov.WrapAsync,
		"headless":                 &ov.Headless,
		"waitForNavigation":        &ov.WaitForNavigation,
		"waitForSelectorOnClick":   &ov.WaitForSelectorOnClick,
		"blankLinesBetweenBlocks":  &ov.BlankLinesBetweenBlocks,
		"useRegexForDataAttribute": &ov.UseRegexForDataAttribute,
	}
	for name, dst := range bools {
		raw, ok := c.GetQuery(name)
		if !ok {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return ov, fmt.Errorf("invalid %s: %q", name, raw)
		}
		*dst = &v
	}

	if v, ok := c.GetQuery("dataAttribute"); ok {
		ov.DataAttribute = &v
	}
	if v, ok := c.GetQuery("customLineAfterClick"); ok {
		ov.CustomLineAfterClick = &v
	}
	return ov, nil
}
