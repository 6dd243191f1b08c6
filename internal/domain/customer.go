package domain

// Customer places orders. UserID links the customer to an identity
// principal when the record was created through registration.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	UserID    *string
}

func (c Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
