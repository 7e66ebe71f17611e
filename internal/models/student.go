package models

import "time"

// Student is a person who can be enrolled in class offerings.
type Student struct {
	ID         string    `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      *string   `db:"email" json:"email,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	CPF        string    `db:"cpf" json:"cpf"`
	RG         *string   `db:"rg" json:"rg,omitempty"`
	Address    *string   `db:"address" json:"address,omitempty"`
	BirthDate  Date      `db:"birth_date" json:"birth_date"`
	IsMinor    bool      `db:"is_minor" json:"is_minor"`
	GuardianID *string   `db:"guardian_id" json:"guardian_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`

	Guardian *Guardian `db:"-" json:"guardian,omitempty"`
}

// Guardian is the legal representative of a minor student.
type Guardian struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CPF       string    `db:"cpf" json:"cpf"`
	RG        *string   `db:"rg" json:"rg,omitempty"`
	Address   *string   `db:"address" json:"address,omitempty"`
	BirthDate *Date     `db:"birth_date" json:"birth_date,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter holds list criteria for students.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}

// GuardianInput carries guardian data submitted alongside a minor student.
type GuardianInput struct {
	FullName  string  `json:"full_name" validate:"required,min=3"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	CPF       string  `json:"cpf" validate:"required,cpf"`
	RG        *string `json:"rg"`
	Address   *string `json:"address"`
	BirthDate *Date   `json:"birth_date"`
}

// CreateStudentRequest registers a new student.
type CreateStudentRequest struct {
	FullName  string         `json:"full_name" validate:"required,min=3"`
	Email     *string        `json:"email" validate:"omitempty,email"`
	Phone     *string        `json:"phone"`
	CPF       string         `json:"cpf" validate:"required,cpf"`
	RG        *string        `json:"rg"`
	Address   *string        `json:"address"`
	BirthDate Date           `json:"birth_date"`
	IsMinor   bool           `json:"is_minor"`
	Guardian  *GuardianInput `json:"guardian" validate:"required_if=IsMinor true"`
}

// UpdateStudentRequest replaces the mutable student fields.
type UpdateStudentRequest struct {
	FullName  string         `json:"full_name" validate:"required,min=3"`
	Email     *string        `json:"email" validate:"omitempty,email"`
	Phone     *string        `json:"phone"`
	CPF       string         `json:"cpf" validate:"required,cpf"`
	RG        *string        `json:"rg"`
	Address   *string        `json:"address"`
	BirthDate Date           `json:"birth_date"`
	IsMinor   bool           `json:"is_minor"`
	Guardian  *GuardianInput `json:"guardian" validate:"required_if=IsMinor true"`
}
