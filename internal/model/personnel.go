package model

import "time"

// Personnel personnel file, table personnel
type Personnel struct {
	ID            int64      `gorm:"primaryKey"                       json:"id"`
	PersonnelCode string     `gorm:"type:varchar(32);not null;unique" json:"personnel_code"`
	FirstName     string     `gorm:"type:varchar(100);not null"       json:"first_name"`
	LastName      string     `gorm:"type:varchar(100);not null"       json:"last_name"`
	NationalID    *string    `gorm:"type:varchar(20)"                 json:"national_id,omitempty"`
	Department    *string    `gorm:"type:varchar(100)"                json:"department,omitempty"`
	Position      *string    `gorm:"type:varchar(100)"                json:"position,omitempty"`
	Phone         *string    `gorm:"type:varchar(32)"                 json:"phone,omitempty"`
	HireDate      *time.Time `gorm:"type:date"                        json:"hire_date,omitempty"`
	IsActive      bool       `gorm:"not null;default:true"            json:"is_active"`
	Timestamps

	Dependents []Dependent `gorm:"foreignKey:PersonnelID" json:"dependents,omitempty"`
}

func (Personnel) TableName() string { return "personnel" }

// FullName first and last name
func (p *Personnel) FullName() string {
	return p.FirstName + " " + p.LastName
}

// CommutingMember gate-registered member without a personnel file, table commuting_members
type CommutingMember struct {
	ID            int64   `gorm:"primaryKey"                       json:"id"`
	PersonnelCode string  `gorm:"type:varchar(32);not null;unique" json:"personnel_code"`
	FullName      string  `gorm:"type:varchar(200);not null"       json:"full_name"`
	Department    *string `gorm:"type:varchar(100)"                json:"department,omitempty"`
	Position      *string `gorm:"type:varchar(100)"                json:"position,omitempty"`
	IsActive      bool    `gorm:"not null;default:true"            json:"is_active"`
	Timestamps
}

func (CommutingMember) TableName() string { return "commuting_members" }

// Dependent family member of a personnel, table dependents
type Dependent struct {
	ID           int64      `gorm:"primaryKey"                  json:"id"`
	PersonnelID  int64      `gorm:"not null;index"              json:"personnel_id"`
	FullName     string     `gorm:"type:varchar(200);not null"  json:"full_name"`
	Relationship *string    `gorm:"type:varchar(50)"            json:"relationship,omitempty"`
	NationalID   *string    `gorm:"type:varchar(20)"            json:"national_id,omitempty"`
	BirthDate    *time.Time `gorm:"type:date"                   json:"birth_date,omitempty"`
	Timestamps
}

func (Dependent) TableName() string { return "dependents" }
