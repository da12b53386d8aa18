package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/common"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/models"

	"gorm.io/gorm"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

type UserService struct {
	db     *gorm.DB
	logger logging.Logger
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	Role         *string
	Location     *string
	Bio          *string
	Skills       *[]string
	Portfolio    *[]models.PortfolioItem
	Photos       *[]string
	Companies    *[]string
	AvatarURL    *string
	Rate         *float64
	Availability *string
	Discoverable *bool
}

func NewUserService(db *gorm.DB, logger logging.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

func (s *UserService) Me(ctx context.Context, id uint) (*UserProfile, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserGone
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	p := toProfile(&user)
	return &p, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileUpdate) (*UserProfile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrUserGone
			}
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}

		in.apply(&user)

		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "profile updated", "user_id", id)
	p := toProfile(&user)
	return &p, nil
}

func (in ProfileUpdate) validate() error {
	if in.Role != nil && !models.ValidRole(strings.TrimSpace(*in.Role)) {
		return common.ErrInvalidRole
	}
	if in.FirstName != nil && strings.TrimSpace(*in.FirstName) == "" {
		return common.ErrEmptyName
	}
	return nil
}

func (in ProfileUpdate) apply(u *models.User) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&u.FirstName, in.FirstName)
	setString(&u.LastName, in.LastName)
	setString(&u.Role, in.Role)
	setString(&u.Location, in.Location)
	setString(&u.Bio, in.Bio)
	setString(&u.AvatarURL, in.AvatarURL)
	setString(&u.Availability, in.Availability)

	if in.Skills != nil {
		u.Skills = *in.Skills
	}
	if in.Portfolio != nil {
		u.Portfolio = *in.Portfolio
	}
	if in.Photos != nil {
		u.Photos = *in.Photos
	}
	if in.Companies != nil {
		u.Companies = *in.Companies
	}
	if in.Rate != nil {
		r := *in.Rate
		u.Rate = &r
	}
	if in.Discoverable != nil {
		u.Discoverable = *in.Discoverable
	}
}

// Search finds discoverable users whose name, role, location, skills or bio
// contain q, case-insensitively.
func (s *UserService) Search(ctx context.Context, q string, limit int) ([]UserCard, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, common.ErrEmptyQuery
	}
	if limit < 1 || limit > MaxSearchLimit {
		return nil, common.ErrInvalidLimit
	}

	like := "%" + escapeLike(strings.ToLower(q)) + "%"
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("discoverable = ?", true).
		Where(
			s.db.Where("LOWER(first_name) LIKE ? ESCAPE '!'", like).
				Or("LOWER(last_name) LIKE ? ESCAPE '!'", like).
				Or("LOWER(role) LIKE ? ESCAPE '!'", like).
				Or("LOWER(location) LIKE ? ESCAPE '!'", like).
				Or("LOWER(skills) LIKE ? ESCAPE '!'", like).
				Or("LOWER(bio) LIKE ? ESCAPE '!'", like),
		).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	cards := make([]UserCard, 0, len(users))
	for i := range users {
		cards = append(cards, toCard(&users[i]))
	}
	return cards, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
