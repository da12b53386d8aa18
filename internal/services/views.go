package services

import (
	"time"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/models"
)

// AuthorSummary is the author info nested in every post and comment.
type AuthorSummary struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type PostView struct {
	ID        uint          `json:"id"`
	Text      *string       `json:"text"`
	Media     *string       `json:"media"`
	MediaType *string       `json:"mediaType"`
	Approvals int           `json:"approvals"`
	Shares    int           `json:"shares"`
	CreatedAt time.Time     `json:"createdAt"`
	User      AuthorSummary `json:"user"`
}

type PostPage struct {
	Posts   []PostView `json:"posts"`
	HasMore bool       `json:"hasMore"`
}

type CommentView struct {
	ID        uint          `json:"id"`
	PostID    uint          `json:"postId"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"createdAt"`
	User      AuthorSummary `json:"user"`
}

// UserProfile is the owner's view of an account. It never carries the password hash.
type UserProfile struct {
	ID           uint                   `json:"id"`
	FirstName    string                 `json:"firstName"`
	LastName     string                 `json:"lastName"`
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	Location     string                 `json:"location"`
	Bio          string                 `json:"bio"`
	Skills       []string               `json:"skills"`
	Portfolio    []models.PortfolioItem `json:"portfolio"`
	Photos       []string               `json:"photos"`
	Companies    []string               `json:"companies"`
	AvatarURL    string                 `json:"avatarUrl"`
	Rate         *float64               `json:"rate"`
	Availability string                 `json:"availability"`
	Discoverable bool                   `json:"discoverable"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// UserCard is the public view returned by search.
type UserCard struct {
	ID           uint     `json:"id"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Location     string   `json:"location"`
	Bio          string   `json:"bio"`
	Skills       []string `json:"skills"`
	AvatarURL    string   `json:"avatarUrl"`
	Rate         *float64 `json:"rate"`
	Availability string   `json:"availability"`
}

func toAuthor(u *models.User) AuthorSummary {
	return AuthorSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      u.FullName(),
		AvatarURL: u.AvatarURL,
	}
}

func toPostView(p *models.Post) PostView {
	return PostView{
		ID:        p.ID,
		Text:      p.Text,
		Media:     p.MediaURL,
		MediaType: p.MediaType,
		Approvals: p.Approvals,
		Shares:    p.Shares,
		CreatedAt: p.CreatedAt,
		User:      toAuthor(&p.User),
	}
}

func toCommentView(c *models.Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		User:      toAuthor(&c.User),
	}
}

func toProfile(u *models.User) UserProfile {
	return UserProfile{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Name:         u.FullName(),
		Email:        u.Email,
		Role:         u.Role,
		Location:     u.Location,
		Bio:          u.Bio,
		Skills:       orEmpty(u.Skills),
		Portfolio:    orEmpty(u.Portfolio),
		Photos:       orEmpty(u.Photos),
		Companies:    orEmpty(u.Companies),
		AvatarURL:    u.AvatarURL,
		Rate:         u.Rate,
		Availability: u.Availability,
		Discoverable: u.Discoverable,
		CreatedAt:    u.CreatedAt,
	}
}

func toCard(u *models.User) UserCard {
	return UserCard{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Name:         u.FullName(),
		Role:         u.Role,
		Location:     u.Location,
		Bio:          u.Bio,
		Skills:       orEmpty(u.Skills),
		AvatarURL:    u.AvatarURL,
		Rate:         u.Rate,
		Availability: u.Availability,
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
