package entity

import "time"

// Supplier representa un proveedor (fornecedor). Se crea desde el registro de entradas o por importación.
type Supplier struct {
	ID        string
	Name      string
	Contact   string
	Email     string
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDeleted indica si el proveedor fue dado de baja lógicamente.
func (s *Supplier) IsDeleted() bool { return s.DeletedAt != nil }
