package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/content"
	"github.com/tripmate/backend/internal/models"
)

const dateLayout = "2006-01-02"

// ErrLeaderCannotLeave is returned when a group leader tries to leave instead of
// deleting the group.
var ErrLeaderCannotLeave = fmt.Errorf("leader cannot leave the group: %w", ErrForbidden)

type GroupService struct {
	groups    models.TravelGroupRepository
	processor *content.Processor
	logger    *logrus.Logger
}

func NewGroupService(groups models.TravelGroupRepository, processor *content.Processor, logger *logrus.Logger) *GroupService {
	return &GroupService{
		groups:    groups,
		processor: processor,
		logger:    logger,
	}
}

func parseDates(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date: %w", ErrInvalidInput)
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date: %w", ErrInvalidInput)
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date before start_date: %w", ErrInvalidInput)
	}
	return startDate, endDate, nil
}

// Create stores the group with its creator as leader.
func (s *GroupService) Create(ctx context.Context, user *models.User, req models.TravelGroupRequest) (*models.TravelGroup, error) {
	startDate, endDate, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.Capacity < 2 || req.Capacity > 50 {
		return nil, fmt.Errorf("capacity must be between 2 and 50: %w", ErrInvalidInput)
	}

	group := &models.TravelGroup{
		LeaderID:    user.ID,
		Name:        s.processor.PlainText(req.Name),
		Description: s.processor.SanitizeHTML(req.Description),
		AreaCode:    req.AreaCode,
		StartDate:   startDate,
		EndDate:     endDate,
		Capacity:    req.Capacity,
	}
	if group.Name == "" {
		return nil, fmt.Errorf("name: %w", ErrInvalidInput)
	}
	if err := s.groups.Create(group); err != nil {
		return nil, translate(err, "create group")
	}

	s.logger.WithFields(logrus.Fields{
		"group_id":  group.ID,
		"leader_id": user.ID,
	}).Info("Travel group created")
	return group, nil
}

func (s *GroupService) List(ctx context.Context, areaCode string, offset, limit int) ([]models.TravelGroup, int64, error) {
	groups, total, err := s.groups.List(areaCode, offset, limit)
	if err != nil {
		return nil, 0, translate(err, "list groups")
	}
	return groups, total, nil
}

func (s *GroupService) Get(ctx context.Context, id uint) (*models.TravelGroup, error) {
	group, err := s.groups.GetByID(id)
	if err != nil {
		return nil, translate(err, "load group")
	}
	return group, nil
}

// Join adds the user; a full group yields ErrGroupFull and a repeat join ErrDuplicate.
func (s *GroupService) Join(ctx context.Context, user *models.User, id uint) (*models.TravelGroup, error) {
	if err := s.groups.AddMember(id, user.ID); err != nil {
		return nil, translate(err, "join group")
	}
	return s.Get(ctx, id)
}

func (s *GroupService) Leave(ctx context.Context, user *models.User, id uint) error {
	group, err := s.groups.GetByID(id)
	if err != nil {
		return translate(err, "load group")
	}
	if group.LeaderID == user.ID {
		return ErrLeaderCannotLeave
	}
	return translate(s.groups.RemoveMember(id, user.ID), "leave group")
}

func (s *GroupService) Delete(ctx context.Context, user *models.User, id uint) error {
	group, err := s.groups.GetByID(id)
	if err != nil {
		return translate(err, "load group")
	}
	if !canModify(user, group.LeaderID) {
		return ErrForbidden
	}
	return translate(s.groups.Delete(id), "delete group")
}
