package services

import (
	"context"
	"testing"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/common"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/models"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	db := testhelpers.NewDB(t)
	s := NewCommentService(db, logging.Discard())
	author := testhelpers.CreateUser(t, db, "poster@example.com", "Bongani", "Zulu")
	commenter := testhelpers.CreateUser(t, db, "c@example.com", "Zanele", "")
	post := testhelpers.CreatePost(t, db, author.ID, "harvest is in")

	c, err := s.CreateComment(context.Background(), post.ID, commenter.ID, "  congrats!  ")
	require.NoError(t, err)

	assert.Equal(t, "congrats!", c.Text)
	assert.Equal(t, post.ID, c.PostID)
	assert.Equal(t, commenter.ID, c.User.ID)
	assert.Equal(t, "Zanele", c.User.Name)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestCreateComment_Errors(t *testing.T) {
	db := testhelpers.NewDB(t)
	s := NewCommentService(db, logging.Discard())
	ctx := context.Background()
	u := testhelpers.CreateUser(t, db, "u@example.com", "U", "")
	post := testhelpers.CreatePost(t, db, u.ID, "p")

	_, err := s.CreateComment(ctx, post.ID, u.ID, "   ")
	assert.ErrorIs(t, err, common.ErrMissingText)

	_, err = s.CreateComment(ctx, post.ID+1, u.ID, "hello")
	assert.ErrorIs(t, err, common.ErrPostNotFound)

	_, err = s.CreateComment(ctx, post.ID, u.ID+1, "hello")
	assert.ErrorIs(t, err, common.ErrUserGone)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListComments_OldestFirst(t *testing.T) {
	db := testhelpers.NewDB(t)
	s := NewCommentService(db, logging.Discard())
	ctx := context.Background()
	u := testhelpers.CreateUser(t, db, "u@example.com", "U", "")
	post := testhelpers.CreatePost(t, db, u.ID, "p")
	other := testhelpers.CreatePost(t, db, u.ID, "other")

	for _, text := range []string{"one", "two", "three"} {
		_, err := s.CreateComment(ctx, post.ID, u.ID, text)
		require.NoError(t, err)
	}
	_, err := s.CreateComment(ctx, other.ID, u.ID, "elsewhere")
	require.NoError(t, err)

	comments, err := s.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "one", comments[0].Text)
	assert.Equal(t, "two", comments[1].Text)
	assert.Equal(t, "three", comments[2].Text)
	assert.Equal(t, u.ID, comments[0].User.ID)
}

func TestListComments_EmptyAndMissing(t *testing.T) {
	db := testhelpers.NewDB(t)
	s := NewCommentService(db, logging.Discard())
	ctx := context.Background()
	u := testhelpers.CreateUser(t, db, "u@example.com", "U", "")
	post := testhelpers.CreatePost(t, db, u.ID, "quiet")

	comments, err := s.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)

	_, err = s.ListComments(ctx, post.ID+1)
	assert.ErrorIs(t, err, common.ErrPostNotFound)
}
