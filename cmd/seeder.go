package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users, menus and permissions for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"menu_audit_permission", "menu_audit", "password_reset_tokens", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedUsers(db)
		seedMenus(db)
	},
}

func seedUsers(db *gorm.DB) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

	users := []struct {
		Code   string
		First  string
		Last   string
		Email  string
		RoleID int
	}{
		{"AUD001", "Anan", "Auditor", "anan@ptec.local", 2},
		{"ADM001", "Siri", "Admin", "siri@ptec.local", 1},
	}

	for _, u := range users {
		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE user_code = ?", u.Code).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("user already exists:", u.Code)
			continue
		}

		err := db.Exec(
			"INSERT INTO users (user_code, frist_name, last_name, email, password_hash, role_id, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, true, now(), now())",
			u.Code, u.First, u.Last, u.Email, string(hash), u.RoleID,
		).Error
		if err != nil {
			log.Fatalf("failed to insert user %s: %v", u.Code, err)
		}
		fmt.Println("Seeded user:", u.Code)
	}
}

func seedMenus(db *gorm.DB) {
	menus := []struct {
		ID     int64
		Name   string
		Path   string
		Icon   string
		Parent *int64
		Order  int
	}{
		{1, "Dashboard", "/dashboard", "home", nil, 1},
		{2, "Audit", "/audit", "clipboard", nil, 2},
		{3, "Audit Plan", "/audit/plan", "calendar", ptr(2), 1},
		{4, "Audit Report", "/audit/report", "file-text", ptr(2), 2},
		{5, "Administration", "/admin", "settings", nil, 3},
		{6, "User Management", "/admin/users", "users", ptr(5), 1},
	}

	for _, m := range menus {
		var exists int
		row := db.Raw("SELECT 1 FROM menu_audit WHERE menu_id = ?", m.ID).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}

		err := db.Exec(
			"INSERT INTO menu_audit (menu_id, name, path, icon, parent_id, order_no, is_active) VALUES (?, ?, ?, ?, ?, ?, true)",
			m.ID, m.Name, m.Path, m.Icon, m.Parent, m.Order,
		).Error
		if err != nil {
			log.Fatalf("failed to insert menu %s: %v", m.Name, err)
		}
		fmt.Println("Seeded menu:", m.Name)
	}

	// Role 2 (auditor) cannot see Administration
	var exists int
	row := db.Raw("SELECT 1 FROM menu_audit_permission WHERE role_id = 2 AND menu_id = 5").Row()
	if err := row.Scan(&exists); err != nil {
		err := db.Exec(
			"INSERT INTO menu_audit_permission (role_id, menu_id, can_view) VALUES (2, 5, false)",
		).Error
		if err != nil {
			log.Fatalf("failed to insert menu permission: %v", err)
		}
		fmt.Println("Seeded menu permission: auditor hidden from Administration")
	}
}

func ptr(v int64) *int64 { return &v }
