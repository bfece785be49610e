package main

import (
	"context"
	"flag"
	"log"
	"time"

	decimal "github.com/shopspring/decimal"

	"github.com/mvucinic/billsight/internal/auth"
	"github.com/mvucinic/billsight/internal/config"
	"github.com/mvucinic/billsight/internal/database"
	"github.com/mvucinic/billsight/internal/services/bills"
	"github.com/mvucinic/billsight/internal/services/users"
)

// Seeds a demo account with a few months of utility bills so the analysis
// endpoints have something to chew on in a fresh environment.
func main() {
	email := flag.String("email", "demo@billsight.local", "demo account email")
	password := flag.String("password", "demo-password-1", "demo account password")
	flag.Parse()

	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()

	if err := database.RunMigrations(ctx, cfg.Database); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	userStore := users.NewStore(pool)
	authSvc, err := auth.NewService(cfg.Auth, userStore)
	if err != nil {
		log.Fatalf("build auth service: %v", err)
	}

	account, err := authSvc.Register(ctx, auth.RegisterParams{
		Username:  "demo",
		Email:     *email,
		Password:  *password,
		FirstName: "Demo",
		LastName:  "User",
	})
	if err != nil {
		log.Fatalf("create demo user: %v", err)
	}

	billStore := bills.NewStore(pool)
	now := time.Now()
	seed := []struct {
		beneficiary string
		amount      string
		daysAgo     int
	}{
		{"EPCG", "48.20", 5},
		{"EPCG", "51.75", 35},
		{"EPCG", "46.90", 65},
		{"Vodovod", "14.30", 8},
		{"Vodovod", "13.85", 38},
		{"Telemach", "25.00", 12},
		{"Telemach", "25.00", 42},
		{"Crnogorski Telekom", "18.60", 3},
		{"Gradska cistoca", "9.40", 20},
	}
	for _, entry := range seed {
		_, err := billStore.Create(ctx, account.ID, bills.WriteParams{
			Amount:          decimal.RequireFromString(entry.amount),
			BeneficiaryName: entry.beneficiary,
			ReferenceDate:   now.AddDate(0, 0, -entry.daysAgo),
			Status:          "paid",
		})
		if err != nil {
			log.Fatalf("seed bill %s: %v", entry.beneficiary, err)
		}
	}

	log.Printf("seeded %d bills for %s (%s)", len(seed), account.Email, account.ID)
}
