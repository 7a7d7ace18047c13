package models

import "time"

type Contact struct {
	Base
	FirstName string `gorm:"not null" json:"firstName" validate:"required"`
	LastName  string `gorm:"not null" json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Title     string `json:"title"`
	Address   string `json:"address"`
}

type Account struct {
	Base
	Name          string   `gorm:"not null" json:"name" validate:"required"`
	Industry      string   `json:"industry"`
	Website       string   `json:"website" validate:"omitempty,url"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	AnnualRevenue *float64 `json:"annualRevenue,omitempty"`
	Employees     *int     `json:"employees,omitempty"`
}

// Opportunity references Account and Contact loosely: both are nullable and
// carry no cascade rules.
type Opportunity struct {
	Base
	Name        string     `gorm:"not null" json:"name" validate:"required"`
	AccountID   *string    `gorm:"type:uuid" json:"accountId,omitempty" validate:"omitempty,uuid"`
	Account     *Account   `json:"account,omitempty"`
	ContactID   *string    `gorm:"type:uuid" json:"contactId,omitempty" validate:"omitempty,uuid"`
	Contact     *Contact   `json:"contact,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
	Stage       string     `json:"stage"`
	CloseDate   *time.Time `json:"closeDate,omitempty"`
	Probability *int       `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	Description string     `json:"description"`
}

type Lead struct {
	Base
	FirstName string `gorm:"not null" json:"firstName" validate:"required"`
	LastName  string `gorm:"not null" json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Status    string `gorm:"default:'New'" json:"status"`
	Source    string `json:"source"`
	Notes     string `json:"notes"`
}
