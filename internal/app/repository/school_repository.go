package repository

import (
	"github.com/zywang/bookmart-backend/internal/app/model"
	"gorm.io/gorm"
)

type SchoolRepository interface {
	FindAll() ([]model.School, error)
	FindByID(id uint) (*model.School, error)
	BulkCreate(schools []model.School, batchSize int) error
}

type schoolRepository struct {
	db *gorm.DB
}

func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) FindAll() ([]model.School, error) {
	var schools []model.School
	if err := r.db.Where("active = ?", true).Order("name ASC").Find(&schools).Error; err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *schoolRepository) FindByID(id uint) (*model.School, error) {
	var school model.School
	if err := r.db.First(&school, id).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *schoolRepository) BulkCreate(schools []model.School, batchSize int) error {
	return r.db.CreateInBatches(schools, batchSize).Error
}
