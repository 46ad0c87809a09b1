package models

// All returns every model the application migrates
func All() []interface{} {
	return []interface{}{
		&User{},
		&Customer{},
		&FoodItem{},
		&Order{},
		&Settings{},
		&MealAllowance{},
		&AuditLog{},
	}
}
