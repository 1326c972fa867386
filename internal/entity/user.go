package entity

type User struct {
	ID    string `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`
}

type Establishment struct {
	ID                     string `json:"id" db:"id"`
	UserID                 string `json:"user_id" db:"user_id"`
	Name                   string `json:"name" db:"name"`
	VoucherUsageConditions string `json:"voucher_usage_conditions" db:"voucher_usage_conditions"`
}
