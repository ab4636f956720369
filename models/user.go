package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RolePandit   = "pandit"
	RoleAdmin    = "admin"
)

type User struct {
	gorm.Model

	Email        string `gorm:"uniqueIndex;size:128" json:"email"`
	PasswordHash string `gorm:"size:128" json:"-"`
	FullName     string `gorm:"size:100" json:"full_name"`
	Role         string `gorm:"size:16;index;default:customer" json:"role"`
	Country      string `gorm:"size:2" json:"country"`
	Phone        string `gorm:"size:20" json:"phone"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Pandit struct {
	gorm.Model

	UserID      uint            `gorm:"uniqueIndex" json:"user_id"`
	User        User            `json:"user"`
	Expertise   string          `gorm:"size:100" json:"expertise"`
	Language    string          `gorm:"size:50" json:"language"`
	Bio         string          `gorm:"size:1000" json:"bio"`
	Rating      decimal.Decimal `gorm:"type:numeric(3,2);default:0" json:"rating"`
	BasePrice   decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"base_price"`
	IsVerified  bool            `gorm:"default:false" json:"is_verified"`
	IsAvailable bool            `gorm:"default:true" json:"is_available"`

	Wallet PanditWallet `gorm:"foreignKey:PanditID" json:"wallet"`
}
