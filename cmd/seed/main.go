package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/zywang/bookmart-backend/config"
	"github.com/zywang/bookmart-backend/internal/app/model"
	"github.com/zywang/bookmart-backend/internal/app/repository"
	"github.com/zywang/bookmart-backend/internal/db"
)

// Imports campuses from an XLSX export. Expected columns:
// name, city, latitude, longitude. Coordinates may be blank.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	schoolRepo := repository.NewSchoolRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	schools, err := readSchoolsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total schools to import: %d\n", len(schools))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := schoolRepo.BulkCreate(schools, batchSize); err != nil {
		log.Fatal("Failed to bulk create schools:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total schools imported: %d\n", len(schools))
}

func readSchoolsFromXLSX(filePath string) ([]model.School, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var schools []model.School
	seen := make(map[string]bool)
	skippedCount := 0
	invalidCoordCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 2 {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		city := strings.TrimSpace(row[1])
		if name == "" {
			skippedCount++
			continue
		}

		// Dedup on name+city; campus names repeat across cities.
		key := name + "|" + city
		if seen[key] {
			skippedCount++
			continue
		}
		seen[key] = true

		school := model.School{
			Name:   name,
			City:   city,
			Active: true,
		}

		if len(row) >= 4 {
			lat, latErr := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
			lon, lonErr := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
			if latErr == nil && lonErr == nil && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
				school.Latitude = &lat
				school.Longitude = &lon
			} else if strings.TrimSpace(row[2]) != "" || strings.TrimSpace(row[3]) != "" {
				invalidCoordCount++
			}
		}

		schools = append(schools, school)
	}

	fmt.Printf("Skipped rows: %d, invalid coordinates: %d\n", skippedCount, invalidCoordCount)

	return schools, nil
}
