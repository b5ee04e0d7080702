package api

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/registry"
)

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateReportRequest is the body of POST /api/reports.
type CreateReportRequest struct {
	PersonName string `json:"personName"`
	Fact       string `json:"fact"`
	ReportedBy string `json:"reportedBy"`
}

// CreateReportResponse is returned when a report is stored.
type CreateReportResponse struct {
	Message string          `json:"message"`
	Report  registry.Report `json:"report"`
	Person  registry.Person `json:"person"`

	// Warning is set when the report could not be flushed to storage.
	Warning string `json:"warning,omitempty"`
}

// BotStatsResponse is the body of GET /api/bot/stats.
type BotStatsResponse struct {
	Message     string `json:"message,omitempty"`
	IsOnline    bool   `json:"isOnline"`
	ServerCount int    `json:"serverCount"`
	UserCount   int    `json:"userCount"`
}

const (
	msgRequiredFields = "personName, fact, and reportedBy are required"
	msgPersonNotFound = "Person not found"
	msgReportNotFound = "Report not found"
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListPeople returns every person with their reports.
func (s *Server) handleListPeople(c *fiber.Ctx) error {
	return c.JSON(s.service.Registry().ListPeopleWithReports())
}

// handleGetPerson returns one person, matched by name ignoring case, with
// their reports.
func (s *Server) handleGetPerson(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid name"})
	}

	info, err := s.service.Info(c.UserContext(), name)
	switch {
	case registry.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(MessageResponse{Message: msgPersonNotFound})
	case errors.Is(err, registry.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "name is required"})
	case err != nil:
		s.logger.Error("looking up person", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to look up person"})
	}

	return c.JSON(registry.PersonWithReports{Person: info.Person, Reports: info.Reports})
}

// handleListReports returns every report in insertion order.
func (s *Server) handleListReports(c *fiber.Ctx) error {
	return c.JSON(s.service.Registry().ListReports())
}

// handleCreateReport stores a report submitted from the dashboard.
func (s *Server) handleCreateReport(c *fiber.Ctx) error {
	var req CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	outcome, err := s.service.RecordReport(c.UserContext(), req.PersonName, req.Fact, req.ReportedBy)
	var validation registry.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msgRequiredFields})
	}
	if err != nil {
		s.logger.Error("creating report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to create report"})
	}

	resp := CreateReportResponse{
		Message: "Report created successfully",
		Report:  outcome.Report,
		Person:  outcome.Person,
	}
	if outcome.Warning != nil {
		resp.Warning = outcome.Warning.Error()
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// handleDeletePerson removes a person and every report about them.
func (s *Server) handleDeletePerson(c *fiber.Ctx) error {
	ok, err := s.service.Registry().DeletePerson(c.UserContext(), c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: msgPersonNotFound})
	}
	if err != nil {
		s.logger.Warn("person deleted but not persisted", zap.Error(err))
	}

	return c.JSON(MessageResponse{Message: "Person and all reports deleted successfully"})
}

// handleDeleteReport removes a single report.
func (s *Server) handleDeleteReport(c *fiber.Ctx) error {
	ok, err := s.service.Registry().DeleteReport(c.UserContext(), c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: msgReportNotFound})
	}
	if err != nil {
		s.logger.Warn("report deleted but not persisted", zap.Error(err))
	}

	return c.JSON(MessageResponse{Message: "Report deleted successfully"})
}

// handleBotStats reports the chat gateway state.
func (s *Server) handleBotStats(c *fiber.Ctx) error {
	if s.stats == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(BotStatsResponse{Message: "Bot not available"})
	}

	stats := s.stats.Stats()
	return c.JSON(BotStatsResponse{
		IsOnline:    stats.IsOnline,
		ServerCount: stats.ServerCount,
		UserCount:   stats.UserCount,
	})
}
