package request

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name         string                 `json:"name" binding:"required,min=2,max=255"`
	Email        *string                `json:"email" binding:"omitempty,email"`
	Phone        *string                `json:"phone" binding:"omitempty,max=50"`
	Address      *string                `json:"address"`
	Measurements map[string]interface{} `json:"measurements"`
	Notes        *string                `json:"notes"`
}

// UpdateCustomerRequest represents a customer update request. Measurements
// are merged into the stored ones.
type UpdateCustomerRequest struct {
	Name         *string                `json:"name" binding:"omitempty,min=2,max=255"`
	Email        *string                `json:"email" binding:"omitempty,email"`
	Phone        *string                `json:"phone" binding:"omitempty,max=50"`
	Address      *string                `json:"address"`
	Measurements map[string]interface{} `json:"measurements"`
	Notes        *string                `json:"notes"`
}
