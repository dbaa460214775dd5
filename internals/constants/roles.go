package constants

// Papéis suportados no token JWT.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Quem disparou um cancelamento (cancelled_by_type).
const (
	CancelledByTeacher = "teacher"
	CancelledByStudent = "student"
)

var AllowedRoles = []string{RoleTeacher, RoleStudent}

func IsValidRole(r string) bool {
	for _, a := range AllowedRoles {
		if a == r {
			return true
		}
	}
	return false
}
