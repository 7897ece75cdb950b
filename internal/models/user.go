package models

// Role identifies the account's permission group
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleSupport   Role = "support"
	RoleEvaluator Role = "evaluator"
	RoleUser      Role = "user"
)

// User represents a registered marketplace account
type User struct {
	BaseModel
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Name         string `json:"name" gorm:"not null"`
	NIF          string `json:"nif" gorm:"size:20"` // tax id, validated upstream at registration
	Role         Role   `json:"role" gorm:"size:20;not null;default:'user';index"`
}
