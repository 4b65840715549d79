package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID      string           `json:"_id"`
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Phone   string           `json:"phone,omitempty"`
	Role    Role             `json:"role,omitempty"`
	Address *DeliveryAddress `json:"address,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
