package database

import (
	"log"

	"projectflow-backend/shared/config"
	"projectflow-backend/shared/database/models"
	utils "projectflow-backend/shared/utils/auth"
)

// SeedDatabase seeds the database with initial data
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	if err := CreateSuperAdminFromConfig(); err != nil {
		return err
	}

	log.Println("✅ Database seed data is up to date")
	return nil
}

// CreateSuperAdminFromConfig creates the global superuser if it does not
// exist yet. The superuser belongs to no organization; the superuser flag
// alone grants every permission.
func CreateSuperAdminFromConfig() error {
	cfg := config.GetConfig()
	email := cfg.SuperAdminEmail
	password := cfg.SuperAdminPassword

	var existing models.User
	if err := DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	superAdmin := models.User{
		Email:       email,
		Username:    "superadmin",
		Password:    hashedPassword,
		FirstName:   "Super",
		LastName:    "Admin",
		IsSuperuser: true,
	}

	if err := DB.Create(&superAdmin).Error; err != nil {
		return err
	}

	log.Printf("✅ Super admin created: %s", email)
	return nil
}
