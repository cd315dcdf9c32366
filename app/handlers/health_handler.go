package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	"github.com/amirphl/Eligibility-Roster/lookuplog"
	"github.com/amirphl/Eligibility-Roster/roster"
	"github.com/amirphl/Eligibility-Roster/utils"
)

// HealthHandlerInterface defines the contract for the health handler
type HealthHandlerInterface interface {
	Health(c fiber.Ctx) error
}

// HealthHandler reports the loaded state of the service
type HealthHandler struct {
	engine   *roster.Engine
	history  *lookuplog.Log
	sessions *roster.SessionRegistry
}

func NewHealthHandler(engine *roster.Engine, history *lookuplog.Log, sessions *roster.SessionRegistry) *HealthHandler {
	return &HealthHandler{engine: engine, history: history, sessions: sessions}
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	res := dto.HealthResponse{
		Status:     "ok",
		Customers:  h.engine.Len(),
		Called:     h.engine.Partition().Len(),
		Generation: h.engine.Generation(),
		CheckedAt:  utils.UTCNow().Format(time.RFC3339),
	}
	if h.history != nil {
		res.Lookups = h.history.Len()
	}
	if h.sessions != nil {
		res.Sessions = h.sessions.Len()
	}
	return successResponse(c, fiber.StatusOK, "Service is healthy", res)
}
