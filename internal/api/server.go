package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/dkaplan/opportunity-pipeline/internal/auth"
	"github.com/dkaplan/opportunity-pipeline/internal/db"
	"github.com/dkaplan/opportunity-pipeline/internal/models"
	"github.com/dkaplan/opportunity-pipeline/internal/pipeline"
)

type Server struct {
	Store db.Backend
	Echo  *echo.Echo

	log *logrus.Logger
}

// NewServer wires the echo instance, middleware and routes. All pipeline
// routes sit behind bearer token validation; the health probe stays open.
func NewServer(store db.Backend, jwtSecret []byte, corsOrigins []string, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s := &Server{
		Store: store,
		Echo:  e,
		log:   log,
	}

	s.routes(jwtSecret)
	return s
}

func (s *Server) routes(jwtSecret []byte) {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")
	api.Use(auth.Middleware(jwtSecret))

	api.GET("/opportunities", s.handleListOpportunities)
	api.POST("/opportunities", s.handleCreateOpportunity)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.PUT("/opportunities/:id", s.handleUpdateOpportunity)
	api.PUT("/opportunities/:id/status", s.handleUpdateOpportunityStatus)
	api.DELETE("/opportunities/:id", s.handleDeleteOpportunity)

	api.GET("/speaking-opportunities", s.handleListSpeaking)
	api.POST("/speaking-opportunities", s.handleCreateSpeaking)
	api.GET("/speaking-opportunities/:id", s.handleGetSpeaking)
	api.PUT("/speaking-opportunities/:id", s.handleUpdateSpeaking)
	api.PUT("/speaking-opportunities/:id/status", s.handleUpdateSpeakingStatus)
	api.DELETE("/speaking-opportunities/:id", s.handleDeleteSpeaking)

	api.GET("/pipeline/analytics", s.handleAnalytics)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	opps, err := s.Store.ListOpportunities(c.Request().Context())
	if err != nil {
		s.log.WithError(err).Error("failed to list opportunities")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, opps)
}

func (s *Server) handleCreateOpportunity(c echo.Context) error {
	var g models.GenericOpportunity
	if err := c.Bind(&g); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := validateGeneric(&g); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	created, err := s.Store.CreateOpportunity(c.Request().Context(), g)
	if err != nil {
		s.log.WithError(err).Error("failed to create opportunity")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create opportunity"})
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}
	opp, err := s.Store.GetOpportunity(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
		}
		s.log.WithError(err).Error("failed to get opportunity")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleUpdateOpportunity(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}

	var g models.GenericOpportunity
	if err := c.Bind(&g); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	g.ID = id
	if err := validateGeneric(&g); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	updated, err := s.Store.UpdateOpportunity(c.Request().Context(), g)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
		}
		s.log.WithError(err).Error("failed to update opportunity")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update opportunity"})
	}
	return c.JSON(http.StatusOK, updated)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateOpportunityStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}

	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	status, ok := models.ParseStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid status value"})
	}

	updated, err := s.Store.UpdateOpportunityStatus(c.Request().Context(), id, status)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
		}
		s.log.WithError(err).Error("failed to update opportunity status")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update opportunity status"})
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteOpportunity(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}
	if err := s.Store.DeleteOpportunity(c.Request().Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
		}
		s.log.WithError(err).Error("failed to delete opportunity")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete opportunity"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListSpeaking(c echo.Context) error {
	opps, err := s.Store.ListSpeaking(c.Request().Context())
	if err != nil {
		s.log.WithError(err).Error("failed to list speaking opportunities")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, opps)
}

func (s *Server) handleCreateSpeaking(c echo.Context) error {
	var sp models.SpeakingOpportunity
	if err := c.Bind(&sp); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := validateSpeaking(&sp); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	created, err := s.Store.CreateSpeaking(c.Request().Context(), sp)
	if err != nil {
		s.log.WithError(err).Error("failed to create speaking opportunity")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create speaking opportunity"})
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetSpeaking(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}
	sp, err := s.Store.GetSpeaking(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
		}
		s.log.WithError(err).Error("failed to get speaking opportunity")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, sp)
}

func (s *Server) handleUpdateSpeaking(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}

	var sp models.SpeakingOpportunity
	if err := c.Bind(&sp); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	sp.ID = id
	if err := validateSpeaking(&sp); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	updated, err := s.Store.UpdateSpeaking(c.Request().Context(), sp)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
		}
		s.log.WithError(err).Error("failed to update speaking opportunity")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update speaking opportunity"})
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleUpdateSpeakingStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}

	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	status, ok := models.ParseStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid status value"})
	}

	updated, err := s.Store.UpdateSpeakingStatus(c.Request().Context(), id, status)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
		}
		s.log.WithError(err).Error("failed to update speaking status")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update speaking status"})
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteSpeaking(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}
	if err := s.Store.DeleteSpeaking(c.Request().Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
		}
		s.log.WithError(err).Error("failed to delete speaking opportunity")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete speaking opportunity"})
	}
	return c.NoContent(http.StatusNoContent)
}

// handleAnalytics mirrors the client-side computation: it merges both
// collections and runs the same pure analytics the engine runs locally, so
// the two views always agree.
func (s *Server) handleAnalytics(c echo.Context) error {
	ctx := c.Request().Context()

	generic, err := s.Store.ListOpportunities(ctx)
	if err != nil {
		s.log.WithError(err).Error("failed to list opportunities for analytics")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	speaking, err := s.Store.ListSpeaking(ctx)
	if err != nil {
		s.log.WithError(err).Error("failed to list speaking opportunities for analytics")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	merged := models.MergeCollections(generic, speaking)
	return c.JSON(http.StatusOK, pipeline.Analyze(merged))
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}
