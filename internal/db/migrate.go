package db

import (
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Profile{},
		&model.School{},
		&model.Category{},
		&model.Book{},
		&model.Order{},
		&model.Review{},
		&model.Post{},
		&model.AuditLog{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	if err := seedCategories(); err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}

	if err := seedSchools(); err != nil {
		logger.Error("Failed to seed schools", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedCategories creates the default book category set used by listing filters.
func seedCategories() error {
	var count int64
	if err := DB.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding category data...")

	categories := []model.Category{
		{Name: "Textbooks", Description: "Course textbooks and lecture materials"},
		{Name: "Exam Prep", Description: "Graduate entrance, CET and certification prep"},
		{Name: "Literature", Description: "Fiction, poetry and essays"},
		{Name: "Science & Engineering", Description: "Math, physics, CS and engineering titles"},
		{Name: "Economics & Management", Description: "Economics, finance and management"},
		{Name: "Foreign Languages", Description: "Language learning and readers"},
		{Name: "Art & Design", Description: "Art, design and photography"},
		{Name: "Comics & Magazines", Description: "Comics, periodicals and magazines"},
		{Name: "Other", Description: "Everything else"},
	}

	totalInserted := 0
	for _, category := range categories {
		if err := DB.Create(&category).Error; err != nil {
			logger.Error("Failed to create category", err, map[string]interface{}{
				"category": category.Name,
			})
			return err
		}
		totalInserted++
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"total_categories": totalInserted,
	})

	return nil
}

// seedSchools creates a starter campus list so school binding and pickup
// locations work on a fresh database.
func seedSchools() error {
	var count int64
	if err := DB.Model(&model.School{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Schools already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding school data...")

	schools := []model.School{
		{Name: "Tsinghua University", City: "Beijing", Latitude: ptrFloat(40.0026), Longitude: ptrFloat(116.3262), Active: true},
		{Name: "Peking University", City: "Beijing", Latitude: ptrFloat(39.9869), Longitude: ptrFloat(116.3059), Active: true},
		{Name: "Fudan University", City: "Shanghai", Latitude: ptrFloat(31.2974), Longitude: ptrFloat(121.5036), Active: true},
		{Name: "Zhejiang University", City: "Hangzhou", Latitude: ptrFloat(30.3064), Longitude: ptrFloat(120.0803), Active: true},
		{Name: "Wuhan University", City: "Wuhan", Latitude: ptrFloat(30.5350), Longitude: ptrFloat(114.3614), Active: true},
	}

	totalInserted := 0
	for _, school := range schools {
		if err := DB.Create(&school).Error; err != nil {
			logger.Error("Failed to create school", err, map[string]interface{}{
				"school": school.Name,
			})
			return err
		}
		totalInserted++
	}

	logger.Info("Schools seeded successfully", map[string]interface{}{
		"total_schools": totalInserted,
	})

	return nil
}

func ptrFloat(v float64) *float64 {
	return &v
}
