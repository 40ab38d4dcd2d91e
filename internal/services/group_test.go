package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripmate/backend/internal/content"
	"github.com/tripmate/backend/internal/models"
)

func newGroups() *GroupService {
	return NewGroupService(newFakeGroups(), content.NewProcessor(), quietLogger())
}

func groupRequest(capacity int) models.TravelGroupRequest {
	return models.TravelGroupRequest{
		Name:      "제주 한 바퀴",
		AreaCode:  "39",
		StartDate: "2026-11-01",
		EndDate:   "2026-11-03",
		Capacity:  capacity,
	}
}

func TestCreateGroup_ValidatesDates(t *testing.T) {
	svc := newGroups()
	ctx := context.Background()

	req := groupRequest(4)
	req.EndDate = "2026-10-30"
	_, err := svc.Create(ctx, user(1, models.RoleUser), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = groupRequest(4)
	req.StartDate = "11/01/2026"
	_, err = svc.Create(ctx, user(1, models.RoleUser), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, user(1, models.RoleUser), groupRequest(51))
	assert.ErrorIs(t, err, ErrInvalidInput)

	group, err := svc.Create(ctx, user(1, models.RoleUser), groupRequest(4))
	require.NoError(t, err)
	assert.Equal(t, uint(1), group.LeaderID)
	assert.Equal(t, 1, group.MemberCount)
}

func TestJoinGroup_FullAndDuplicate(t *testing.T) {
	svc := newGroups()
	ctx := context.Background()
	group, err := svc.Create(ctx, user(1, models.RoleUser), groupRequest(2))
	require.NoError(t, err)

	joined, err := svc.Join(ctx, user(2, models.RoleUser), group.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, joined.MemberCount)

	_, err = svc.Join(ctx, user(2, models.RoleUser), group.ID)
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Join(ctx, user(3, models.RoleUser), group.ID)
	assert.ErrorIs(t, err, ErrGroupFull)

	_, err = svc.Join(ctx, user(3, models.RoleUser), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeaveAndDeleteGroup(t *testing.T) {
	svc := newGroups()
	ctx := context.Background()
	group, err := svc.Create(ctx, user(1, models.RoleUser), groupRequest(5))
	require.NoError(t, err)
	_, err = svc.Join(ctx, user(2, models.RoleUser), group.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Leave(ctx, user(1, models.RoleUser), group.ID), ErrForbidden)
	assert.NoError(t, svc.Leave(ctx, user(2, models.RoleUser), group.ID))
	assert.ErrorIs(t, svc.Leave(ctx, user(2, models.RoleUser), group.ID), ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, user(2, models.RoleUser), group.ID), ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, user(1, models.RoleUser), group.ID))
	_, err = svc.Get(ctx, group.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWishlist(t *testing.T) {
	svc := NewWishlistService(&fakeWishlist{}, "https://example.com/none.png", quietLogger())
	ctx := context.Background()
	owner := user(1, models.RoleUser)

	item, err := svc.Add(ctx, owner, models.WishlistRequest{ContentID: "126508", Title: "경복궁", Image: "http://tong.visitkorea.or.kr/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "https://tong.visitkorea.or.kr/a.jpg", item.Image)

	_, err = svc.Add(ctx, owner, models.WishlistRequest{ContentID: "126508"})
	assert.ErrorIs(t, err, ErrDuplicate)

	items, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.NoError(t, svc.Remove(ctx, owner, "126508"))
	assert.ErrorIs(t, svc.Remove(ctx, owner, "126508"), ErrNotFound)
}
