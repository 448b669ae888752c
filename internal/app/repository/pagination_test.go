package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/db"
	"gorm.io/gorm"
)

func setupPaginationTest(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	for i := 1; i <= 25; i++ {
		require.NoError(t, testDB.Create(&model.School{
			Name:   fmt.Sprintf("School %02d", i),
			City:   "Testville",
			Active: true,
		}).Error)
	}
	return testDB
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"In range", 2, 20, 2, 20},
		{"Zero page", 0, 10, 1, 10},
		{"Negative page", -3, 10, 1, 10},
		{"Zero page size", 1, 0, 1, 10},
		{"Negative page size", 1, -5, 1, 10},
		{"Page size over cap", 1, 101, 1, 10},
		{"Page size at cap", 1, 100, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := NormalizePage(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestPaginate_MiddlePage(t *testing.T) {
	testDB := setupPaginationTest(t)

	var schools []model.School
	pageInfo, err := Paginate(testDB.Model(&model.School{}).Order("id ASC"), 2, 10, &schools)
	require.NoError(t, err)

	assert.Len(t, schools, 10)
	assert.Equal(t, "School 11", schools[0].Name)
	assert.Equal(t, 2, pageInfo.Page)
	assert.Equal(t, 10, pageInfo.PageSize)
	assert.Equal(t, int64(25), pageInfo.Total)
	assert.Equal(t, 3, pageInfo.TotalPages)
}

func TestPaginate_LastPagePartial(t *testing.T) {
	testDB := setupPaginationTest(t)

	var schools []model.School
	pageInfo, err := Paginate(testDB.Model(&model.School{}).Order("id ASC"), 3, 10, &schools)
	require.NoError(t, err)

	assert.Len(t, schools, 5)
	assert.Equal(t, 3, pageInfo.TotalPages)
}

func TestPaginate_PageBeyondEnd(t *testing.T) {
	testDB := setupPaginationTest(t)

	var schools []model.School
	pageInfo, err := Paginate(testDB.Model(&model.School{}).Order("id ASC"), 9, 10, &schools)
	require.NoError(t, err)

	assert.Len(t, schools, 0)
	assert.Equal(t, int64(25), pageInfo.Total)
}

func TestPaginate_ClampsBadInput(t *testing.T) {
	testDB := setupPaginationTest(t)

	var schools []model.School
	pageInfo, err := Paginate(testDB.Model(&model.School{}).Order("id ASC"), -1, 1000, &schools)
	require.NoError(t, err)

	assert.Equal(t, 1, pageInfo.Page)
	assert.Equal(t, 10, pageInfo.PageSize)
	assert.Len(t, schools, 10)
	assert.Equal(t, "School 01", schools[0].Name)
}

func TestPaginate_CountIgnoresOrdering(t *testing.T) {
	testDB := setupPaginationTest(t)

	// An ordered, limited base query must still count the full set.
	var schools []model.School
	pageInfo, err := Paginate(testDB.Model(&model.School{}).Order("name DESC"), 1, 10, &schools)
	require.NoError(t, err)

	assert.Equal(t, int64(25), pageInfo.Total)
	assert.Equal(t, "School 25", schools[0].Name)
}
