package domain

type Salon struct {
	ID   string
	Name string
}

type Supplier struct {
	ID   string
	Name string
}
