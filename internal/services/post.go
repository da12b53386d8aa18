package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/common"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/models"

	"gorm.io/gorm"
)

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 50
)

type PostService struct {
	db      *gorm.DB
	uploads *UploadService
	logger  logging.Logger
}

func NewPostService(db *gorm.DB, uploads *UploadService, logger logging.Logger) *PostService {
	return &PostService{db: db, uploads: uploads, logger: logger}
}

// ListPosts returns one page of the feed, newest first. HasMore is exact: one
// extra row is fetched to find out whether another page exists.
func (s *PostService) ListPosts(ctx context.Context, page, limit int) (*PostPage, error) {
	if page < 1 {
		return nil, common.ErrInvalidPage
	}
	if limit < 1 || limit > MaxPageLimit {
		return nil, common.ErrInvalidLimit
	}
	// (page-1)*limit must not overflow
	if page > math.MaxInt/limit {
		return nil, common.ErrInvalidPage
	}

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit + 1).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, toPostView(&posts[i]))
	}
	return &PostPage{Posts: views, HasMore: hasMore}, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*PostView, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	v := toPostView(&post)
	return &v, nil
}

// CreatePost stores media first and inserts the row only after the write
// succeeded; a failed insert removes the stored file again.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, text string, media *MediaFile) (*PostView, error) {
	text = strings.TrimSpace(text)
	if text == "" && media == nil {
		return nil, common.ErrEmptyPost
	}

	post := models.Post{UserID: authorID}
	if text != "" {
		post.Text = &text
	}

	var stored *StoredFile
	if media != nil {
		var err error
		stored, err = s.uploads.Store(ctx, media)
		if err != nil {
			return nil, err
		}
		kind := mediaType(stored.ContentType)
		post.MediaURL = &stored.URL
		post.MediaType = &kind
	}

	var author models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&author, authorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrUserGone
			}
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		if stored != nil {
			s.uploads.Remove(ctx, stored.Name)
		}
		return nil, err
	}

	post.User = author
	s.logger.Info(ctx, "post created", "post_id", post.ID, "user_id", authorID)
	v := toPostView(&post)
	return &v, nil
}

// ApprovePost adds one approval and returns the new count.
func (s *PostService) ApprovePost(ctx context.Context, id uint) (int, error) {
	return s.increment(ctx, id, "approvals")
}

// SharePost adds one share and returns the new count.
func (s *PostService) SharePost(ctx context.Context, id uint) (int, error) {
	return s.increment(ctx, id, "shares")
}

// increment bumps a counter column in the database itself (column = column + 1)
// so concurrent callers never lose updates.
func (s *PostService) increment(ctx context.Context, id uint, column string) (int, error) {
	var counts []int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ?", id).
			UpdateColumn(column, gorm.Expr(column+" + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("%w: %w", common.ErrStorage, res.Error)
		}
		if res.RowsAffected == 0 {
			return common.ErrPostNotFound
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Pluck(column, &counts).Error; err != nil {
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, common.ErrPostNotFound
	}
	return counts[0], nil
}
