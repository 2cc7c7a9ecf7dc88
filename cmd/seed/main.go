package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Ro-otman/vroomvtr/internal/config"
	"github.com/Ro-otman/vroomvtr/internal/db"
	"github.com/Ro-otman/vroomvtr/internal/model"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type seedVendor struct {
	DisplayName string
	Cars        []seedCar
}

type seedCar struct {
	Brand string
	Model string
	Year  int
	Price int64
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}

	if err := gdb.AutoMigrate(
		&model.User{},
		&model.Vendor{},
		&model.Car{},
		&model.Order{},
		&model.VerificationCodeSet{},
		&model.Conversation{},
		&model.Message{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	canSeed, err := shouldSeed(gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("cars already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	vendors := buildSeedVendors()
	users := buildSeedUsers()

	var carCount int
	err = gdb.Transaction(func(tx *gorm.DB) error {
		for _, tbl := range []string{"messages", "conversations", "order_verification_codes", "orders", "cars", "vendors"} {
			if err := tx.Exec("DELETE FROM " + tbl).Error; err != nil {
				return fmt.Errorf("clear %s: %w", tbl, err)
			}
		}

		for _, sv := range vendors {
			vendor := model.Vendor{ID: uuid.NewString(), DisplayName: sv.DisplayName}
			if err := tx.Create(&vendor).Error; err != nil {
				return fmt.Errorf("insert vendor %q: %w", sv.DisplayName, err)
			}
			for _, sc := range sv.Cars {
				car := model.Car{
					ID:       uuid.NewString(),
					VendorID: vendor.ID,
					Brand:    sc.Brand,
					Model:    sc.Model,
					Year:     sc.Year,
					Price:    sc.Price,
				}
				if err := tx.Create(&car).Error; err != nil {
					return fmt.Errorf("insert car %s %s: %w", sc.Brand, sc.Model, err)
				}
				carCount++
			}
		}

		for _, u := range users {
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("insert user %q: %w", u.Email, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("seeded %d vendors, %d cars, %d users", len(vendors), carCount, len(users))
	return nil
}

func buildSeedVendors() []seedVendor {
	return []seedVendor{
		{DisplayName: "Lagos Prime Autos", Cars: []seedCar{
			{Brand: "Toyota", Model: "Camry", Year: 2019, Price: 14500000},
			{Brand: "Toyota", Model: "Corolla", Year: 2021, Price: 18200000},
			{Brand: "Honda", Model: "Accord", Year: 2018, Price: 12800000},
		}},
		{DisplayName: "Velocity Motors", Cars: []seedCar{
			{Brand: "Mercedes-Benz", Model: "C300", Year: 2020, Price: 32500000},
			{Brand: "BMW", Model: "328i", Year: 2017, Price: 21000000},
			{Brand: "Lexus", Model: "RX 350", Year: 2019, Price: 38400000},
		}},
		{DisplayName: "Harbor Auto Exchange", Cars: []seedCar{
			{Brand: "Hyundai", Model: "Elantra", Year: 2021, Price: 11600000},
			{Brand: "Kia", Model: "Sportage", Year: 2020, Price: 15900000},
			{Brand: "Ford", Model: "Explorer", Year: 2018, Price: 19700000},
		}},
	}
}

func buildSeedUsers() []model.User {
	return []model.User{
		{ID: uuid.NewString(), Email: "ada.obi@example.com", FirstName: "Ada", LastName: "Obi", Role: "user", IsActive: true},
		{ID: uuid.NewString(), Email: "tunde.bakare@example.com", FirstName: "Tunde", LastName: "Bakare", Role: "user", IsActive: true},
		{ID: uuid.NewString(), Email: "chiamaka.eze@example.com", FirstName: "Chiamaka", LastName: "Eze", Role: "user", IsActive: true},
		{ID: uuid.NewString(), Email: "support@vroomvtr.example.com", FirstName: "Marketplace", LastName: "Admin", Role: "admin", IsActive: true},
	}
}

func shouldSeed(gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.Model(&model.Car{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count cars: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	force := os.Getenv("FORCE_SEED")
	return strings.EqualFold(force, "true"), nil
}
