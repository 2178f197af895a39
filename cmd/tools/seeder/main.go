package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedSettings(db)
	seedCampaigns(db)

	log.Println("Seeding completed successfully!")
}

func seedSettings(db *sql.DB) {
	fmt.Println("Seeding Platform Settings...")

	settings := []struct {
		Key   string
		Value string
	}{
		{"fee_policy", `{"enabled":true,"percentage":2.9,"fixed":30,"maxFee":50000}`},
		{"currency_format", `{"symbol":"$","position":"before","decimalPlaces":2,"decimalSeparator":".","thousandSeparator":","}`},
	}
	for _, s := range settings {
		_, err := db.Exec(`
			INSERT INTO platform_settings (key, value) VALUES ($1, $2::jsonb)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		`, s.Key, s.Value)
		if err != nil {
			log.Fatalf("Failed to seed setting %s: %v", s.Key, err)
		}
	}
}

func seedCampaigns(db *sql.DB) {
	fmt.Println("Seeding Campaigns...")

	campaigns := []struct {
		Title      string
		OwnerEmail string
		HasGoal    bool
		GoalType   sql.NullString
		GoalTarget sql.NullInt64
		Rewards    []seedReward
	}{
		{
			Title:      "Solar Lamp for Rural Schools",
			OwnerEmail: "maya@example.com",
			HasGoal:    true,
			GoalType:   sql.NullString{String: "RAISED_AMOUNT", Valid: true},
			GoalTarget: sql.NullInt64{Int64: 2500000, Valid: true},
			Rewards: []seedReward{
				{
					Title:  "One Lamp",
					Amount: 4500,
					Rates: []seedRate{
						{"ID", 1500},
						{"SG", 2500},
						{"REST_OF_WORLD", 6000},
					},
				},
				{
					Title:  "Classroom Pack",
					Amount: 25000,
					Rates: []seedRate{
						{"ID", 3000},
						{"REST_OF_WORLD", 12000},
					},
				},
			},
		},
		{
			Title:      "Community Cookbook",
			OwnerEmail: "rafi@example.com",
			HasGoal:    true,
			GoalType:   sql.NullString{String: "NUMBER_OF_CONTRIBUTORS", Valid: true},
			GoalTarget: sql.NullInt64{Int64: 100, Valid: true},
			Rewards: []seedReward{
				{Title: "Digital Copy", Amount: 1200},
				{
					Title:  "Printed Copy",
					Amount: 3500,
					Rates: []seedRate{
						{"ID", 1000},
						{"REST_OF_WORLD", 4500},
					},
				},
			},
		},
		{
			Title:      "Open Hardware Keyboard",
			OwnerEmail: "lena@example.com",
			HasGoal:    false,
		},
	}

	for _, c := range campaigns {
		campaignID := uuid.NewString()
		_, err := db.Exec(`
			INSERT INTO campaigns (id, title, owner_email, has_goal, goal_type, goal_target)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, campaignID, c.Title, c.OwnerEmail, c.HasGoal, c.GoalType, c.GoalTarget)
		if err != nil {
			log.Fatalf("Failed to seed campaign %q: %v", c.Title, err)
		}
		for _, r := range c.Rewards {
			rewardID := uuid.NewString()
			_, err := db.Exec(`
				INSERT INTO rewards (id, campaign_id, title, amount)
				VALUES ($1, $2, $3, $4)
			`, rewardID, campaignID, r.Title, r.Amount)
			if err != nil {
				log.Fatalf("Failed to seed reward %q: %v", r.Title, err)
			}
			for i, rate := range r.Rates {
				_, err := db.Exec(`
					INSERT INTO reward_shipping_rates (reward_id, location, cost, sort_order)
					VALUES ($1, $2, $3, $4)
				`, rewardID, rate.Location, rate.Cost, i)
				if err != nil {
					log.Fatalf("Failed to seed shipping rate %s: %v", rate.Location, err)
				}
			}
		}
		log.Printf("Seeded campaign %q (%s)", c.Title, campaignID)
	}
}

type seedReward struct {
	Title  string
	Amount int64
	Rates  []seedRate
}

type seedRate struct {
	Location string
	Cost     int64
}
