package dto

import "time"

// CustomerResponse represents a customer as exposed via transport layers.
type CustomerResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone,omitempty"`
	Email           string    `json:"email,omitempty"`
	ShippingAddress string    `json:"shippingAddress"`
	IsArchived      bool      `json:"isArchived"`
	DateAdded       time.Time `json:"dateAdded"`
}

// ProductResponse represents a catalog product.
type ProductResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Status string  `json:"status"`
}

// UserResponse represents an account without credential material.
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// LoginResponse carries the issued token plus the authenticated user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AuditEntryResponse is one row of the general audit log.
type AuditEntryResponse struct {
	ID           string         `json:"id"`
	Action       string         `json:"action"`
	Initials     string         `json:"initials,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	TargetUserID string         `json:"targetUserId,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	Actor        *AuditActor    `json:"actor,omitempty"`
}

// AuditActor identifies the acting user on an audit entry.
type AuditActor struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
}

// SearchResult is one entry of the global search dropdown.
type SearchResult struct {
	Type         string `json:"type"`
	ID           string `json:"id"`
	Label        string `json:"label"`
	OrderNumber  string `json:"orderNumber,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
	Status       string `json:"status,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

// BrandingResponse is the admin branding view.
type BrandingResponse struct {
	BrandName   string `json:"brandName,omitempty"`
	CompanyName string `json:"companyName"`
	LogoURL     string `json:"logoUrl,omitempty"`
}
