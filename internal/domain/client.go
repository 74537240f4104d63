package domain

import "time"

// Client is identified by phone number; claim creation finds or creates one.
type Client struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	CompanyName string    `json:"company_name"`
	CreatedByID string    `json:"created_by_id"`
	CreatedOn   time.Time `json:"created_on"`
}
