package dto

// EmailSettingsRequest saves a new email notification configuration.
// Saves append a history row; reads take the latest.
type EmailSettingsRequest struct {
	AccountsEmail  string `json:"accounts_email"`
	AdminEmail     string `json:"admin_email"`
	DispatchEmail  string `json:"dispatch_email"`
	NotifyAccounts *bool  `json:"notify_accounts"`
	NotifyAdmin    *bool  `json:"notify_admin"`
	NotifyDispatch *bool  `json:"notify_dispatch"`
	NotifyCustomer *bool  `json:"notify_customer"`
}

// CategoryRequest creates or renames a product category
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}
