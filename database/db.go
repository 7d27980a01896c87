package database

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"passport-apply/logger"
	"passport-apply/models/application"
	"passport-apply/models/appointment"
	"passport-apply/models/log"
	"passport-apply/models/renewal"
	"passport-apply/models/user"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	username := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, username, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

// autoMigrate runs auto migration for all models in dependency order
func autoMigrate() error {
	// Stage 1: Core foundation models
	stage1Models := []interface{}{
		&user.User{},
	}
	for _, model := range stage1Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: Models with dependencies on Stage 1
	stage2Models := []interface{}{
		&application.Application{},
		&renewal.Renewal{},
		&appointment.Appointment{},
	}
	for _, model := range stage2Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: Remaining models
	remainingModels := []interface{}{
		&log.Log{},
	}
	for _, model := range remainingModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes() error {
	// User indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)").Error; err != nil {
		return fmt.Errorf("failed to create user email index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)").Error; err != nil {
		return fmt.Errorf("failed to create user role index: %w", err)
	}

	// Application indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status)").Error; err != nil {
		return fmt.Errorf("failed to create application status index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_applications_submitted_by_id ON applications(submitted_by_id)").Error; err != nil {
		return fmt.Errorf("failed to create application submitted_by_id index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create application created_at index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_applications_type_of_travel_document ON applications(type_of_travel_document)").Error; err != nil {
		return fmt.Errorf("failed to create application travel document index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_applications_birth_certificate_district ON applications(birth_certificate_district)").Error; err != nil {
		return fmt.Errorf("failed to create application district index: %w", err)
	}

	// Renewal indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_renewals_status ON renewals(status)").Error; err != nil {
		return fmt.Errorf("failed to create renewal status index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_renewals_user_id ON renewals(user_id)").Error; err != nil {
		return fmt.Errorf("failed to create renewal user_id index: %w", err)
	}

	// Appointment indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_appointments_slot ON appointments(preferred_date, preferred_time, preferred_location)").Error; err != nil {
		return fmt.Errorf("failed to create appointment slot index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_appointments_created_by_id ON appointments(created_by_id)").Error; err != nil {
		return fmt.Errorf("failed to create appointment created_by_id index: %w", err)
	}

	// Log indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_method ON logs(method)").Error; err != nil {
		return fmt.Errorf("failed to create log method index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_status_code ON logs(status_code)").Error; err != nil {
		return fmt.Errorf("failed to create log status_code index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create log created_at index: %w", err)
	}

	return nil
}
