package catalog

import (
	"dining-service/internal/models"

	"github.com/shopspring/decimal"
)

// SeedDemoData loads a small fixed catalog for development environments
func SeedDemoData(c *Catalog) {
	c.AddDiningHall(models.DiningHall{Name: "Central Hall", Address: "1 Campus Way", Capacity: 400})
	c.AddDiningHall(models.DiningHall{Name: "North Hall", Address: "12 Dormitory St", Capacity: 150})

	c.AddMealSlot(models.MealSlot{
		Name:          "Grilled Chicken & Rice",
		Price:         decimal.NewFromFloat(4.50),
		MealType:      models.MealTypeLunch,
		ReserveDay:    models.DaySaturday,
		Active:        true,
		TotalCapacity: 120,
		SideItems:     []string{"salad", "yogurt"},
	})
	c.AddMealSlot(models.MealSlot{
		Name:          "Lentil Stew",
		Price:         decimal.NewFromFloat(3.25),
		MealType:      models.MealTypeDinner,
		ReserveDay:    models.DaySaturday,
		Active:        true,
		TotalCapacity: 80,
	})
	c.AddMealSlot(models.MealSlot{
		Name:          "Omelette Plate",
		Price:         decimal.NewFromFloat(2.00),
		MealType:      models.MealTypeBreakfast,
		ReserveDay:    models.DaySunday,
		Active:        true,
		TotalCapacity: 60,
		SideItems:     []string{"bread", "honey"},
	})
}
