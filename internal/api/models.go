package api

import "time"

// User is a member of the incubator program.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Role   string `json:"role" validate:"required,oneof=admin staff resident"`
	TeamID int64  `json:"teamId,omitempty"`
}

// Mentor advises one or more teams.
type Mentor struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Expertise string `json:"expertise"`
}

// Team groups residents around a project.
type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" validate:"required"`
	ProjectID int64  `json:"projectId,omitempty"`
	MentorID  int64  `json:"mentorId,omitempty"`
}

// Project is a team's incubated venture.
type Project struct {
	ID     int64  `json:"id"`
	Name   string `json:"name" validate:"required"`
	Status string `json:"status" validate:"required,oneof=idea active paused graduated"`
	TeamID int64  `json:"teamId,omitempty"`
}

// StockItem is a tracked piece of durable inventory.
type StockItem struct {
	ID         int64  `json:"id"`
	Name       string `json:"name" validate:"required"`
	SKU        string `json:"sku" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gte=0"`
	LocationID int64  `json:"locationId,omitempty"`
	SupplierID int64  `json:"supplierId,omitempty"`
}

// Consumable is depletable stock measured in units.
type Consumable struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name" validate:"required"`
	Unit       string  `json:"unit" validate:"required"`
	Remaining  float64 `json:"remaining" validate:"gte=0"`
	LocationID int64   `json:"locationId,omitempty"`
}

// Location is a physical place inventory lives in.
type Location struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" validate:"required"`
	Building string `json:"building"`
}

// Supplier provides stock and consumables.
type Supplier struct {
	ID    int64  `json:"id"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// Message is an internal note between program members.
type Message struct {
	ID      int64     `json:"id"`
	From    int64     `json:"from" validate:"required"`
	To      int64     `json:"to" validate:"required"`
	Subject string    `json:"subject" validate:"required"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sentAt,omitempty"`
}

// HealthStatus is the backend's liveness report.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// quantityDelta is the body of stock/consumable adjustment calls.
type quantityDelta struct {
	Delta float64 `json:"delta"`
}
