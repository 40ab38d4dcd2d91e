package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripmate/backend/internal/content"
	"github.com/tripmate/backend/internal/models"
)

func newCommunity() *CommunityService {
	return NewCommunityService(
		newFakePosts(),
		&fakeComments{byID: map[uint]*models.Comment{}},
		&fakeLikes{liked: map[[2]uint]bool{}},
		content.NewProcessor(),
		quietLogger(),
	)
}

func user(id uint, role string) *models.User {
	u := &models.User{Nickname: "user", Role: role}
	u.ID = id
	return u
}

func TestCreatePost_Sanitizes(t *testing.T) {
	svc := newCommunity()

	post, err := svc.CreatePost(context.Background(), user(1, models.RoleUser), models.PostRequest{
		Title:   "<b>제주</b> 후기",
		Content: `<p>좋았어요</p><script>alert(1)</script>`,
	})
	require.NoError(t, err)

	assert.Equal(t, "제주 후기", post.Title)
	assert.Equal(t, "<p>좋았어요</p>", post.Content)
	assert.Equal(t, "free", post.Category)
}

func TestCreatePost_RejectsUnknownCategoryAndEmptyContent(t *testing.T) {
	svc := newCommunity()
	author := user(1, models.RoleUser)

	_, err := svc.CreatePost(context.Background(), author, models.PostRequest{Title: "t", Content: "c", Category: "spam"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePost(context.Background(), author, models.PostRequest{Title: "t", Content: "<script>x</script>"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateAndDeletePost_OwnerOrAdmin(t *testing.T) {
	svc := newCommunity()
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, user(1, models.RoleUser), models.PostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, user(2, models.RoleUser), post.ID, models.PostRequest{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdatePost(ctx, user(1, models.RoleUser), post.ID, models.PostRequest{Title: "x", Content: "y", Category: "tip"})
	require.NoError(t, err)
	assert.Equal(t, "tip", updated.Category)

	assert.ErrorIs(t, svc.DeletePost(ctx, user(2, models.RoleUser), post.ID), ErrForbidden)
	assert.NoError(t, svc.DeletePost(ctx, user(9, models.RoleAdmin), post.ID))

	_, err = svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPost_CountsViews(t *testing.T) {
	svc := newCommunity()
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, user(1, models.RoleUser), models.PostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ViewCount)
}

func TestCommentsAndLikes(t *testing.T) {
	svc := newCommunity()
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, user(1, models.RoleUser), models.PostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	comment, err := svc.AddComment(ctx, user(2, models.RoleUser), post.ID, models.CommentRequest{Content: "멋져요"})
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	assert.ErrorIs(t, svc.DeleteComment(ctx, user(3, models.RoleUser), comment.ID), ErrForbidden)
	assert.NoError(t, svc.DeleteComment(ctx, user(2, models.RoleUser), comment.ID))

	_, err = svc.AddComment(ctx, user(2, models.RoleUser), 999, models.CommentRequest{Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	like, err := svc.ToggleLike(ctx, user(2, models.RoleUser), post.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResponse{Liked: true, LikeCount: 1}, like)

	like, err = svc.ToggleLike(ctx, user(2, models.RoleUser), post.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResponse{Liked: false, LikeCount: 0}, like)
}

func TestSupport_PrivateInquiries(t *testing.T) {
	svc := NewSupportService(&fakeInquiries{byID: map[uint]*models.Inquiry{}}, content.NewProcessor(), quietLogger())
	ctx := context.Background()
	author, other, admin := user(1, models.RoleUser), user(2, models.RoleUser), user(3, models.RoleAdmin)

	private, err := svc.Create(ctx, author, models.InquiryRequest{Title: "환불", Content: "문의", IsPrivate: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, other, models.InquiryRequest{Title: "공개", Content: "문의"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, other, private.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Get(ctx, nil, private.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Get(ctx, author, private.ID)
	assert.NoError(t, err)

	visible, total, err := svc.List(ctx, other, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, visible, 1)

	_, total, err = svc.List(ctx, admin, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, err = svc.Answer(ctx, other, private.ID, models.AnswerRequest{Answer: "no"})
	assert.ErrorIs(t, err, ErrForbidden)

	answered, err := svc.Answer(ctx, admin, private.ID, models.AnswerRequest{Answer: "처리되었습니다"})
	require.NoError(t, err)
	assert.Equal(t, models.InquiryAnswered, answered.Status)
	assert.Equal(t, "처리되었습니다", answered.Answer)
}
