package seeders

import (
	"log"
	"time"

	"schoolleave_go/database"
	"schoolleave_go/models"
	"schoolleave_go/services"
	"schoolleave_go/utils"

	"github.com/shopspring/decimal"
)

// SeedDefaults seeds the settings and bootstrap accounts every deployment
// needs. It is safe to run on every boot.
func SeedDefaults() error {
	if err := services.NewConfigProvider().EnsureDefaults(); err != nil {
		return err
	}
	SeedUsers()
	return nil
}

// SeedAll runs all seeders, including sample school data for development.
func SeedAll() {
	log.Println("Starting database seeding...")

	if err := SeedDefaults(); err != nil {
		log.Printf("Error seeding defaults: %v", err)
	}
	SeedSchoolData()

	log.Println("Database seeding completed successfully!")
}

// SeedUsers seeds the bootstrap owner and admin accounts
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	hashed, err := utils.HashPassword("ChangeMe123!")
	if err != nil {
		log.Printf("Error hashing bootstrap password: %v", err)
		return
	}

	users := []models.User{
		{Username: "owner", Password: hashed, Name: "System Owner", Role: "owner", Status: "active"},
		{Username: "admin", Password: hashed, Name: "Administrator", Role: "admin", Status: "active"},
	}

	for _, user := range users {
		u := user
		if err := database.DB.Create(&u).Error; err != nil {
			log.Printf("Error seeding user %s: %v", u.Username, err)
		}
	}

	log.Println("Bootstrap users seeded successfully")
}

// SeedSchoolData seeds a sample semester, grade, class, students and fee
// configuration for local development.
func SeedSchoolData() {
	var count int64
	database.DB.Model(&models.Semester{}).Count(&count)
	if count > 0 {
		log.Println("School data already seeded, skipping...")
		return
	}

	semester := models.Semester{
		Name:       "Fall 2026",
		SchoolYear: "2026-2027",
		StartDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
		SchoolDays: 90,
		Active:     true,
	}
	if err := database.DB.Create(&semester).Error; err != nil {
		log.Printf("Error seeding semester: %v", err)
		return
	}

	grade := models.Grade{Name: "Grade 1", SortOrder: 1}
	if err := database.DB.Create(&grade).Error; err != nil {
		log.Printf("Error seeding grade: %v", err)
		return
	}

	class := models.Class{GradeID: grade.ID, Name: "Class 1"}
	if err := database.DB.Create(&class).Error; err != nil {
		log.Printf("Error seeding class: %v", err)
		return
	}

	students := []models.Student{
		{StudentNo: "S2026001", Name: "Alice Chen", ClassID: class.ID, Gender: "female"},
		{StudentNo: "S2026002", Name: "Ben Okafor", ClassID: class.ID, Gender: "male"},
		{StudentNo: "S2026003", Name: "Chloe Park", ClassID: class.ID, Gender: "female", NutritionMeal: true},
	}
	for _, student := range students {
		s := student
		if err := database.DB.Create(&s).Error; err != nil {
			log.Printf("Error seeding student %s: %v", s.StudentNo, err)
		}
	}

	fee := models.FeeConfig{
		ClassID:         class.ID,
		SemesterID:      semester.ID,
		MealFeeStandard: decimal.NewFromFloat(15.00),
		PrepaidDays:     90,
	}
	if err := database.DB.Create(&fee).Error; err != nil {
		log.Printf("Error seeding fee configuration: %v", err)
	}

	log.Println("Sample school data seeded successfully")
}
