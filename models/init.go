package models

// SeedUser describes an account created when the database is initialized.
// Password is plaintext and is hashed by the caller before storing.
type SeedUser struct {
	Email      string
	Password   string
	Name       string
	Role       Role
	Position   string
	Department string
}

// DefaultAdminEmail identifies the seeded administrator. Seeding is skipped
// once an account with this email exists.
const DefaultAdminEmail = "admin@teamcal.local"

// DefaultUsers returns the initial admin account followed by sample staff
func DefaultUsers() []SeedUser {
	return []SeedUser{
		{
			Email:      DefaultAdminEmail,
			Password:   "admin123",
			Name:       "System Administrator",
			Role:       RoleAdmin,
			Position:   "Administrator",
			Department: "IT",
		},
		{
			Email:      "manager@teamcal.local",
			Password:   "manager123",
			Name:       "John Manager",
			Role:       RoleManager,
			Position:   "Project Manager",
			Department: "Operations",
		},
		{
			Email:      "employee1@teamcal.local",
			Password:   "employee123",
			Name:       "Alice Smith",
			Role:       RoleEmployee,
			Position:   "Senior Developer",
			Department: "Development",
		},
		{
			Email:      "employee2@teamcal.local",
			Password:   "employee123",
			Name:       "Bob Johnson",
			Role:       RoleEmployee,
			Position:   "Designer",
			Department: "Design",
		},
	}
}
