package models

type UserAccount struct {
	JsonModel
	Name   string `json:"name"`
	Email  string `json:"email" gorm:"unique"`
	Banned bool   `gorm:"default:false" json:"-"`
	// 1 conservative .. 5 bold, used when a request does not send style_level
	StyleLevel int `gorm:"default:3" json:"style_level"`
	// default city for weather lookups
	Location             string   `json:"location"`
	Platform             Platform `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	ReceiveNotifications bool     `gorm:"default:true" json:"receive_notifications"`
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"user_account"`
	Platform      Platform    `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}
