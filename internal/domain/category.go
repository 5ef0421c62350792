package domain

// Category represents a product category
type Category struct {
	Record
	Name string `json:"name" db:"name"`
}

// Brand represents a product brand
type Brand struct {
	Record
	Name string `json:"name" db:"name"`
}
