package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvucinic/billsight/internal/app"
	"github.com/mvucinic/billsight/internal/httpserver/httputil"
	"github.com/mvucinic/billsight/internal/services/bills"
)

const dateLayout = "2006-01-02"

type billPayload struct {
	Amount          decimal.Decimal `json:"amount"`
	BeneficiaryName string          `json:"beneficiary_name"`
	ReferenceDate   string          `json:"reference_date"`
	Status          string          `json:"status"`
}

func (p billPayload) toWriteParams() (bills.WriteParams, error) {
	if p.BeneficiaryName == "" {
		return bills.WriteParams{}, errors.New("beneficiary_name is required")
	}
	if p.Amount.IsNegative() {
		return bills.WriteParams{}, errors.New("amount must not be negative")
	}
	date, err := time.Parse(dateLayout, p.ReferenceDate)
	if err != nil {
		return bills.WriteParams{}, errors.New("reference_date must be formatted YYYY-MM-DD")
	}
	status := p.Status
	if status == "" {
		status = "paid"
	}
	return bills.WriteParams{
		Amount:          p.Amount,
		BeneficiaryName: p.BeneficiaryName,
		ReferenceDate:   date,
		Status:          status,
	}, nil
}

func handleListBills(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		records, err := container.Bills.List(c.UserContext(), user.ID)
		if err != nil {
			container.Logger.Error("list bills failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "could not list bills")
		}
		return c.JSON(fiber.Map{"bills": records, "total": len(records)})
	}
}

func handleCreateBill(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		var payload billPayload
		if err := c.BodyParser(&payload); err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
		}
		params, err := payload.toWriteParams()
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
		}

		record, err := container.Bills.Create(c.UserContext(), user.ID, params)
		if err != nil {
			container.Logger.Error("create bill failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "could not create bill")
		}
		return c.Status(fiber.StatusCreated).JSON(record)
	}
}

func handleGetBill(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid bill id")
		}

		record, err := container.Bills.GetByID(c.UserContext(), user.ID, id)
		if err != nil {
			if errors.Is(err, bills.ErrNotFound) {
				return httputil.WriteError(c, fiber.StatusNotFound, "bill not found")
			}
			container.Logger.Error("get bill failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "could not load bill")
		}
		return c.JSON(record)
	}
}

func handleUpdateBill(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid bill id")
		}
		var payload billPayload
		if err := c.BodyParser(&payload); err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
		}
		params, err := payload.toWriteParams()
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
		}

		record, err := container.Bills.Update(c.UserContext(), user.ID, id, params)
		if err != nil {
			if errors.Is(err, bills.ErrNotFound) {
				return httputil.WriteError(c, fiber.StatusNotFound, "bill not found")
			}
			container.Logger.Error("update bill failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "could not update bill")
		}
		return c.JSON(record)
	}
}

func handleDeleteBill(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid bill id")
		}

		if err := container.Bills.Delete(c.UserContext(), user.ID, id); err != nil {
			if errors.Is(err, bills.ErrNotFound) {
				return httputil.WriteError(c, fiber.StatusNotFound, "bill not found")
			}
			container.Logger.Error("delete bill failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "could not delete bill")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
