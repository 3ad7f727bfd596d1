package entity

import "time"

// Customer cliente de una factura. Se crea uno nuevo por cada envío (sin deduplicación).
type Customer struct {
	ID        string
	Name      string
	Phone     string
	GSTNumber string // GSTIN opcional
	CreatedAt time.Time
}
