package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"custom_reports", "timesheet_entries", "user_settings", "tasks", "departments", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		departments := []struct {
			Name string
			Desc string
		}{
			{"Engineering", "Product development and platform work"},
			{"Design", "UX and visual design"},
			{"Operations", "Internal operations and support"},
		}

		for _, d := range departments {
			var exists int
			if err := db.Raw("SELECT 1 FROM departments WHERE name = ?", d.Name).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO departments (name, description, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())", d.Name, d.Desc).Error; err != nil {
				log.Fatalf("failed to insert department %s: %v", d.Name, err)
			}
			fmt.Println("Seeded department:", d.Name)
		}

		tasks := []struct {
			Department string
			Name       string
			Desc       string
		}{
			{"Engineering", "Feature Development", "Building new product features"},
			{"Engineering", "Code Review", "Reviewing pull requests"},
			{"Engineering", "On-call", "Incident response and maintenance"},
			{"Design", "Wireframing", "Early stage design exploration"},
			{"Design", "Design Review", "Reviewing design proposals"},
			{"Operations", "Reporting", "Internal and client reporting"},
		}

		for _, t := range tasks {
			var deptID int64
			if err := db.Raw("SELECT id FROM departments WHERE name = ?", t.Department).Row().Scan(&deptID); err != nil {
				log.Fatalf("department not found for task %s: %v", t.Name, err)
			}

			var exists int
			if err := db.Raw("SELECT 1 FROM tasks WHERE department_id = ? AND name = ?", deptID, t.Name).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO tasks (department_id, name, description, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())", deptID, t.Name, t.Desc).Error; err != nil {
				log.Fatalf("failed to insert task %s: %v", t.Name, err)
			}
			fmt.Println("Seeded task:", t.Name)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []struct {
			Email      string
			Name       string
			Role       string
			Department string
		}{
			{"admin@mail.com", "Ana Admin", "ADMIN", "Operations"},
			{"supervisor@mail.com", "Sari Supervisor", "SUPERVISOR", "Engineering"},
			{"staff@mail.com", "Surya Staff", "STAFF", "Engineering"},
		}

		for _, u := range users {
			var exists int
			if err := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row().Scan(&exists); err == nil {
				fmt.Println("user already exists:", u.Email)
				continue
			}
			if err := db.Exec("INSERT INTO users (email, name, password_hash, role, department, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())", u.Email, u.Name, string(hash), u.Role, u.Department).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}

		fmt.Println("Seeding complete. All seeded users log in with password:", password)
	},
}
