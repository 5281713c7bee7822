package models

// Роли пользователей платформы
const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// ValidRoles список валидных ролей пользователей
var ValidRoles = map[string]struct{}{
	RoleCustomer: {},
	RoleProvider: {},
	RoleAdmin:    {},
}
