package model

type Patient struct {
	Base
	Email        string `db:"email" json:"email"`
	Phone        string `db:"phone" json:"phone"`
	Name         string `db:"name" json:"name"`
	Address      string `db:"address" json:"address"`
	PasswordHash string `db:"password_hash" json:"-"`
}

type SignupPatientRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required,digits10"`
	Name     string `json:"name" binding:"required,min=3,max=100"`
	Address  string `json:"address" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=6"`
}
