package entity

// Roles válidos para User.
const (
	RoleMentor  = "mentor"  // revisa y cambia estados
	RoleStudent = "student" // crea solicitudes y consulta
	RoleBot     = "bot"     // cliente del intake (bot de chat)
)

// User representa una cuenta que puede autenticarse contra la API.
type User struct {
	RowIndex     int
	Username     string
	PasswordHash string // bcrypt hash, nunca plano
	Role         string
	Active       bool
}
