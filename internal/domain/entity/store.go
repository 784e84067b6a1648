package entity

// Store representa una tienda o almacén del ERP. El ID es el código de almacén externo.
// Nunca se elimina; solo se desactiva.
type Store struct {
	ID       string
	Name     string
	IsActive bool
}
