package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a bootstrap admin account and the default holiday calendar.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"calendar_event_links", "calendar_tokens", "password_reset_tokens",
				"leave_requests", "leave_balances", "employees", "holidays",
				"departments", "settings", "users",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "ChangeMe123"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		adminEmail := "admin@example.com"
		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("admin user already exists:", adminEmail)
		} else {
			err := db.Exec(`INSERT INTO users (email, name, password_hash, role, is_active, invite_status, must_change_password, created_at, updated_at)
				VALUES (?, 'Administrator', ?, 'admin', true, 'active', true, now(), now())`,
				adminEmail, string(hash)).Error
			if err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminEmail, "password:", password)
		}

		year := time.Now().Year()
		holidays := []struct {
			Name      string
			Date      string
			Recurring bool
		}{
			{"New Year's Day", fmt.Sprintf("%d-01-01", year), true},
			{"Republic Day", fmt.Sprintf("%d-01-26", year), true},
			{"Independence Day", fmt.Sprintf("%d-08-15", year), true},
			{"Gandhi Jayanti", fmt.Sprintf("%d-10-02", year), true},
			{"Christmas Day", fmt.Sprintf("%d-12-25", year), true},
		}

		for _, h := range holidays {
			var exists int
			row := db.Raw("SELECT 1 FROM holidays WHERE name = ?", h.Name).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			err := db.Exec(`INSERT INTO holidays (name, date, recurring, is_active, created_at, updated_at)
				VALUES (?, ?::date, ?, true, now(), now())`,
				h.Name, h.Date, h.Recurring).Error
			if err != nil {
				log.Fatalf("failed to insert holiday %s: %v", h.Name, err)
			}
			fmt.Println("Seeded holiday:", h.Name)
		}

		fmt.Println("Seeding complete")
	},
}
