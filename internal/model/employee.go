package model

// Employee is a person tasks can be assigned to.
type Employee struct {
	ID       string
	FullName string
	Position string
	Email    string
	Active   bool
}
