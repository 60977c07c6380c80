package entity

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
)
