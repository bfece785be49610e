package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvucinic/billsight/internal/app"
	"github.com/mvucinic/billsight/internal/httpserver/httputil"
	"github.com/mvucinic/billsight/internal/services/transactions"
)

type transactionPayload struct {
	Amount          decimal.Decimal `json:"amount"`
	MerchantName    string          `json:"merchant_name"`
	TransactionDate string          `json:"transaction_date"`
	Status          string          `json:"status"`
}

func (p transactionPayload) toWriteParams() (transactions.WriteParams, error) {
	if p.MerchantName == "" {
		return transactions.WriteParams{}, errors.New("merchant_name is required")
	}
	if p.Amount.IsNegative() {
		return transactions.WriteParams{}, errors.New("amount must not be negative")
	}
	date, err := time.Parse(dateLayout, p.TransactionDate)
	if err != nil {
		return transactions.WriteParams{}, errors.New("transaction_date must be formatted YYYY-MM-DD")
	}
	status := p.Status
	if status == "" {
		status = "completed"
	}
	return transactions.WriteParams{
		Amount:          p.Amount,
		MerchantName:    p.MerchantName,
		TransactionDate: date,
		Status:          status,
	}, nil
}

func handleListTransactions(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		records, err := container.Transactions.List(c.UserContext(), user.ID)
		if err != nil {
			container.Logger.Error("list transactions failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "could not list transactions")
		}
		return c.JSON(fiber.Map{"transactions": records, "total": len(records)})
	}
}

func handleCreateTransaction(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		var payload transactionPayload
		if err := c.BodyParser(&payload); err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
		}
		params, err := payload.toWriteParams()
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
		}

		record, err := container.Transactions.Create(c.UserContext(), user.ID, params)
		if err != nil {
			container.Logger.Error("create transaction failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "could not create transaction")
		}
		return c.Status(fiber.StatusCreated).JSON(record)
	}
}

func handleGetTransaction(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid transaction id")
		}

		record, err := container.Transactions.GetByID(c.UserContext(), user.ID, id)
		if err != nil {
			if errors.Is(err, transactions.ErrNotFound) {
				return httputil.WriteError(c, fiber.StatusNotFound, "transaction not found")
			}
			container.Logger.Error("get transaction failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "could not load transaction")
		}
		return c.JSON(record)
	}
}

func handleUpdateTransaction(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid transaction id")
		}
		var payload transactionPayload
		if err := c.BodyParser(&payload); err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
		}
		params, err := payload.toWriteParams()
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
		}

		record, err := container.Transactions.Update(c.UserContext(), user.ID, id, params)
		if err != nil {
			if errors.Is(err, transactions.ErrNotFound) {
				return httputil.WriteError(c, fiber.StatusNotFound, "transaction not found")
			}
			container.Logger.Error("update transaction failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "could not update transaction")
		}
		return c.JSON(record)
	}
}

func handleDeleteTransaction(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := mustCurrentUser(c)
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid transaction id")
		}

		if err := container.Transactions.Delete(c.UserContext(), user.ID, id); err != nil {
			if errors.Is(err, transactions.ErrNotFound) {
				return httputil.WriteError(c, fiber.StatusNotFound, "transaction not found")
			}
			container.Logger.Error("delete transaction failed", "error", err)
			return httputil.WriteError(c, fiber.StatusInternalServerError, "could not delete transaction")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
