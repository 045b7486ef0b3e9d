package catalog

import "time"

type Employee struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Position  string    `json:"position"`
	HiredAt   time.Time `json:"hiredAt"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}

type Sale struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"productId"`
	EmployeeID int64     `json:"employeeId"`
	Quantity   int       `json:"quantity"`
	Total      float64   `json:"total"`
	SoldAt     time.Time `json:"soldAt"`
}
