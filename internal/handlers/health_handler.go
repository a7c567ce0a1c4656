package handlers

import (
	"context"
	"time"

	"github.com/edmorua/admin-user-back/internal/dto"
	"github.com/edmorua/admin-user-back/internal/store"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	repo    store.Repository
	timeout time.Duration
}

func NewHealthHandler(repo store.Repository, timeout time.Duration) *HealthHandler {
	return &HealthHandler{repo: repo, timeout: timeout}
}

func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.SendString("Api Running")
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	dbStatus := "ok"
	if err := h.repo.Ping(ctx); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
