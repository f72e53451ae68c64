package models

// Canonical role identifiers granted by the session authority.
const (
	RoleAdmin = "admin" // full mutation rights
	RoleUser  = "user"  // read, download and review only
)
