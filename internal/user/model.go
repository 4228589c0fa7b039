package user

import "time"

// User представляет структуру данных пользователя.
type User struct {
	ID           int64     `json:"id" db:"id"`
	FullName     string    `json:"full_name" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileUpdate carries a partial profile change; nil fields keep their current value.
type ProfileUpdate struct {
	FullName *string
	Email    *string
	Phone    *string
}
