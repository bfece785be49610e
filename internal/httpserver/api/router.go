package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mvucinic/billsight/internal/app"
)

// Register mounts the versioned API routes.
func Register(router fiber.Router, container *app.Container) {
	v1 := router.Group("/api/v1")
	v1.Use(rateLimitMiddleware(container))

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", handleRegister(container))
	authGroup.Post("/login", handleLogin(container))
	authGroup.Post("/refresh", handleRefresh(container))
	authGroup.Get("/me", authMiddleware(container), handleMe())

	protected := v1.Group("", authMiddleware(container))

	billGroup := protected.Group("/bills")
	billGroup.Get("/", handleListBills(container))
	billGroup.Post("/", handleCreateBill(container))
	billGroup.Get("/:id", handleGetBill(container))
	billGroup.Put("/:id", handleUpdateBill(container))
	billGroup.Delete("/:id", handleDeleteBill(container))

	transactionGroup := protected.Group("/transactions")
	transactionGroup.Get("/", handleListTransactions(container))
	transactionGroup.Post("/", handleCreateTransaction(container))
	transactionGroup.Get("/:id", handleGetTransaction(container))
	transactionGroup.Put("/:id", handleUpdateTransaction(container))
	transactionGroup.Delete("/:id", handleDeleteTransaction(container))

	analysisGroup := protected.Group("/analysis")
	analysisGroup.Post("/generate", handleGenerateAnalysis(container))
	analysisGroup.Get("/latest", handleLatestAnalysis(container))
	analysisGroup.Get("/history", handleAnalysisHistory(container))
	analysisGroup.Get("/:id", handleGetAnalysis(container))
	analysisGroup.Delete("/:id", handleDeleteAnalysis(container))
}
