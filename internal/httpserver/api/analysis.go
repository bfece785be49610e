package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mvucinic/billsight/internal/app"
	"github.com/mvucinic/billsight/internal/httpserver/httputil"
	"github.com/mvucinic/billsight/internal/services/analysis"
)

func handleGenerateAnalysis(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		var payload struct {
			AnalysisType string `json:"analysis_type"`
			Days         int    `json:"days"`
		}
		if err := c.BodyParser(&payload); err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
		}
		if payload.AnalysisType == "" {
			payload.AnalysisType = string(analysis.KindMonthly)
		}

		record, err := container.Analysis.Generate(c.UserContext(), user.ID, payload.AnalysisType, payload.Days)
		if err != nil {
			return writeAnalysisError(c, container, err)
		}
		return c.Status(fiber.StatusCreated).JSON(record)
	}
}

func handleLatestAnalysis(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		record, err := container.Analysis.Latest(c.UserContext(), user.ID, c.Query("type"))
		if err != nil {
			return writeAnalysisError(c, container, err)
		}
		return c.JSON(record)
	}
}

func handleAnalysisHistory(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		limit := c.QueryInt("limit")
		offset := c.QueryInt("offset")

		records, total, err := container.Analysis.History(c.UserContext(), user.ID, limit, offset)
		if err != nil {
			container.Logger.Error("analysis history failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "could not load analysis history")
		}
		return c.JSON(fiber.Map{
			"analyses": records,
			"total":    total,
		})
	}
}

func handleGetAnalysis(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid analysis id")
		}

		record, err := container.Analysis.GetByID(c.UserContext(), user.ID, id)
		if err != nil {
			return writeAnalysisError(c, container, err)
		}
		return c.JSON(record)
	}
}

func handleDeleteAnalysis(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid analysis id")
		}

		if err := container.Analysis.Delete(c.UserContext(), user.ID, id); err != nil {
			return writeAnalysisError(c, container, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func writeAnalysisError(c *fiber.Ctx, container *app.Container, err error) error {
	switch {
	case errors.Is(err, analysis.ErrRateLimitExceeded):
		return httputil.WriteError(c, fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, analysis.ErrNoBillsFound):
		return httputil.WriteError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, analysis.ErrInvalidKind), errors.Is(err, analysis.ErrInvalidDays):
		return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, analysis.ErrNotFound):
		return httputil.WriteError(c, fiber.StatusNotFound, "analysis not found")
	default:
		container.Logger.Error("analysis request failed", "error", err)
		return httputil.WriteError(c, fiber.StatusInternalServerError, "analysis request failed")
	}
}
