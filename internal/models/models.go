package models

import "time"

const (
	RoleClient  = "client"
	RoleFarmer  = "farmer"
	RoleSkilled = "skilled"

	MediaImage = "image"
	MediaVideo = "video"
)

// ValidRole reports whether role is one of the account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleClient, RoleFarmer, RoleSkilled:
		return true
	}
	return false
}

// PortfolioItem is one entry of a user's portfolio: an uploaded image or an external link.
type PortfolioItem struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// User 모델. List fields are stored as JSON document columns.
type User struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	FirstName    string          `gorm:"size:120" json:"firstName"`
	LastName     string          `gorm:"size:120" json:"lastName"`
	Email        string          `gorm:"size:320;uniqueIndex;not null" json:"email"`
	PasswordHash string          `gorm:"size:256;not null" json:"-"` // JSON 출력에서 제외
	Role         string          `gorm:"size:50;default:client" json:"role"`
	Location     string          `gorm:"size:200;index" json:"location"`
	Bio          string          `gorm:"type:text" json:"bio"`
	Skills       []string        `gorm:"type:text;serializer:json" json:"skills"`
	Portfolio    []PortfolioItem `gorm:"type:text;serializer:json" json:"portfolio"`
	Photos       []string        `gorm:"type:text;serializer:json" json:"photos"`
	Companies    []string        `gorm:"type:text;serializer:json" json:"companies"`
	AvatarURL    string          `gorm:"size:1024" json:"avatarUrl"`
	Rate         *float64        `json:"rate"`
	Availability string          `gorm:"size:256" json:"availability"`
	Discoverable bool            `gorm:"not null;default:true" json:"discoverable"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Post 모델. Approvals and Shares only ever grow.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Text      *string   `gorm:"type:text" json:"text"`
	MediaURL  *string   `gorm:"size:1024" json:"media"`
	MediaType *string   `gorm:"size:16" json:"mediaType"`
	Approvals int       `gorm:"not null;default:0" json:"approvals"`
	Shares    int       `gorm:"not null;default:0" json:"shares"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// Comment 모델
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// All lists the models in migration order.
func All() []any {
	return []any{&User{}, &Post{}, &Comment{}}
}
