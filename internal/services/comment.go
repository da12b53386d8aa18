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

type CommentService struct {
	db     *gorm.DB
	logger logging.Logger
}

func NewCommentService(db *gorm.DB, logger logging.Logger) *CommentService {
	return &CommentService{db: db, logger: logger}
}

func postExists(tx *gorm.DB, postID uint) error {
	var count int64
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if count == 0 {
		return common.ErrPostNotFound
	}
	return nil
}

// ListComments returns the comments of a post, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]CommentView, error) {
	db := s.db.WithContext(ctx)
	if err := postExists(db, postID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := db.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, toCommentView(&comments[i]))
	}
	return views, nil
}

func (s *CommentService) CreateComment(ctx context.Context, postID, authorID uint, text string) (*CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.ErrMissingText
	}

	comment := models.Comment{PostID: postID, UserID: authorID, Text: text}
	var author models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := postExists(tx, postID); err != nil {
			return err
		}
		if err := tx.First(&author, authorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrUserGone
			}
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	comment.User = author
	s.logger.Info(ctx, "comment created", "comment_id", comment.ID, "post_id", postID, "user_id", authorID)
	v := toCommentView(&comment)
	return &v, nil
}
