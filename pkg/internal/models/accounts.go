package models

type Account struct {
	BaseModel

	Name         string `json:"name"`
	Phone        string `json:"phone" gorm:"uniqueIndex"`
	Avatar       string `json:"avatar"`
	PasswordHash string `json:"-"`
}
