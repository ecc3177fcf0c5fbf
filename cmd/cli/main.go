package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/cardroom/internal/infrastructure/config"
	"github.com/iho/cardroom/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cardroom-cli",
		Short: "Cardroom CLI tool",
		Long:  `A command line interface for operating the cardroom API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the cardroom API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Migration commands
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(false)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(true)
		},
	})
	rootCmd.AddCommand(migrateCmd)

	// Seed command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create demo accounts and tables",
		Run: func(cmd *cobra.Command, args []string) {
			seed()
		},
	})

	// Table commands
	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "Table operations",
	}
	tablesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tables in the lobby",
		Run: func(cmd *cobra.Command, args []string) {
			listTables()
		},
	})
	rootCmd.AddCommand(tablesCmd)

	// Reconcile command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "reconcile",
		Short: "Run a ledger and occupancy consistency check",
		Run: func(cmd *cobra.Command, args []string) {
			reconcile()
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runMigrations(down bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "internal/infrastructure/postgres/migrations"
	}

	if down {
		err = postgres.RunMigrationsDown(cfg.DatabaseURL, migrationsPath)
	} else {
		err = postgres.RunMigrations(cfg.DatabaseURL, migrationsPath)
	}
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migrations applied")
}

type seedAccount struct {
	UserID  string
	Balance float64
}

type seedTable struct {
	Name     string  `json:"name"`
	Game     string  `json:"game"`
	Variant  string  `json:"variant"`
	MinBet   float64 `json:"min_bet"`
	MaxBet   float64 `json:"max_bet"`
	Capacity int     `json:"capacity"`
}

func seed() {
	accounts := []seedAccount{
		{UserID: "PokerPro", Balance: 2500},
		{UserID: "BlackjackKing", Balance: 1800},
		{UserID: "LuckyCharm", Balance: 750},
		{UserID: "CasinoNewbie", Balance: 100},
	}

	tables := []seedTable{
		{Name: "Royal High Stakes", Game: "POKER", Variant: "texas_holdem", MinBet: 10, MaxBet: 500, Capacity: 6},
		{Name: "Beginner Friendly", Game: "POKER", Variant: "texas_holdem", MinBet: 1, MaxBet: 25, Capacity: 6},
		{Name: "Mid Stakes Action", Game: "POKER", Variant: "texas_holdem", MinBet: 5, MaxBet: 100, Capacity: 6},
		{Name: "Classic 21", Game: "BLACKJACK", Variant: "european", MinBet: 5, MaxBet: 100, Capacity: 5},
		{Name: "VIP Blackjack", Game: "BLACKJACK", Variant: "european", MinBet: 25, MaxBet: 1000, Capacity: 5},
		{Name: "Speed Blackjack", Game: "BLACKJACK", Variant: "speed", MinBet: 2, MaxBet: 50, Capacity: 7},
	}

	for _, a := range accounts {
		created, err := postJSON("/api/v1/accounts/", map[string]any{
			"user_id":  a.UserID,
			"currency": "USD",
		})
		if err != nil {
			fmt.Printf("Failed to create account %s: %v\n", a.UserID, err)
			os.Exit(1)
		}

		accountID, _ := created["id"].(string)
		if _, err := postJSON(fmt.Sprintf("/api/v1/accounts/%s/deposit", accountID), map[string]any{
			"amount":      a.Balance,
			"method":      "seed",
			"description": "Initial Demo Deposit",
		}); err != nil {
			fmt.Printf("Failed to deposit for %s: %v\n", a.UserID, err)
			os.Exit(1)
		}

		fmt.Printf("Created account %s (%s) with %.2f USD pending\n", a.UserID, accountID, a.Balance)
	}

	for _, tbl := range tables {
		created, err := postJSON("/api/v1/tables/", tbl)
		if err != nil {
			fmt.Printf("Failed to create table %s: %v\n", tbl.Name, err)
			os.Exit(1)
		}
		fmt.Printf("Created table %s (%s)\n", tbl.Name, created["id"])
	}

	fmt.Println("Seed complete. Deposits settle after the payment delay.")
}

func listTables() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/tables/")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Listing failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result struct {
		Tables []struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			Game      string `json:"game"`
			Status    string `json:"status"`
			Occupancy int    `json:"occupancy"`
			Capacity  int    `json:"capacity"`
		} `json:"tables"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	for _, tbl := range result.Tables {
		fmt.Printf("%-28s %-10s %-8s %d/%d  %s\n", tbl.Name, tbl.Game, tbl.Status, tbl.Occupancy, tbl.Capacity, tbl.ID)
	}
}

func reconcile() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+"/api/v1/admin/reconcile", "application/json", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Reconciliation FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result struct {
		Clean  bool            `json:"clean"`
		Report json.RawMessage `json:"report"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if result.Clean {
		fmt.Println("Reconciliation PASSED: no discrepancies")
		return
	}

	fmt.Println("Reconciliation found discrepancies:")
	fmt.Println(string(result.Report))
	os.Exit(1)
}

func postJSON(path string, payload any) (map[string]any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	return result, nil
}
