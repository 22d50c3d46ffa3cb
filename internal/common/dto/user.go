package dto

// AdminUser is one row in the back-office user list
type AdminUser struct {
	ID      uint     `json:"id"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
	Profile any      `json:"profile,omitempty"`
}

// AdminCreateUserRequest creates a user from the back office
type AdminCreateUserRequest struct {
	Email           string   `json:"email" binding:"required"`
	Password        string   `json:"password" binding:"required"`
	Roles           []string `json:"roles"`
	BusinessName    string   `json:"business_name"`
	BusinessAddress string   `json:"business_address"`
	Phone           string   `json:"phone"`
	BusinessType    string   `json:"business_type"`
	PaymentTerms    string   `json:"payment_terms"`
}

// AdminUpdateUserRequest applies a partial user update. Nil fields are
// left unchanged; a non-nil Roles replaces the whole role set.
type AdminUpdateUserRequest struct {
	Email    *string   `json:"email"`
	Password *string   `json:"password"`
	Roles    *[]string `json:"roles"`
}
