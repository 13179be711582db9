package service

import (
	"errors"

	"github.com/Sean-323/LinkCare-sub001/internal/events"
	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"github.com/Sean-323/LinkCare-sub001/internal/repository"
)

// EventPublisher decouples membership writes from whoever reacts to
// them. Publishing is fire-and-forget; a slow or failing consumer can
// never roll back the membership change.
type EventPublisher interface {
	Publish(e events.Event)
}

type GroupService struct {
	groupRepo repository.GroupRepositoryInterface
	bus       EventPublisher
}

func NewGroupService(groupRepo repository.GroupRepositoryInterface, bus EventPublisher) *GroupService {
	return &GroupService{groupRepo: groupRepo, bus: bus}
}

func (s *GroupService) CreateGroup(name, description string, creatorID uint) (*models.Group, error) {
	group := &models.Group{
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
		Header:      models.DefaultHeader,
	}

	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}

	// Add creator as admin
	if err := s.groupRepo.AddMember(group.ID, creatorID, models.RoleAdmin); err != nil {
		return nil, err
	}

	s.bus.Publish(events.GroupCreated{GroupID: group.ID})

	return s.groupRepo.FindByID(group.ID)
}

func (s *GroupService) JoinGroup(groupID, userID uint) error {
	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		return err
	}

	// Check if already a member
	isMember, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return err
	}
	if isMember {
		return errors.New("user is already a member of this group")
	}

	if err := s.groupRepo.AddMember(groupID, userID, models.RoleMember); err != nil {
		return err
	}

	s.bus.Publish(events.GroupMembershipChanged{
		GroupID:    groupID,
		ChangeType: events.ChangeAdded,
		UserID:     userID,
	})
	return nil
}

func (s *GroupService) LeaveGroup(groupID, userID uint) error {
	isMember, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return errors.New("user is not a member of this group")
	}

	if err := s.groupRepo.RemoveMember(groupID, userID); err != nil {
		return err
	}

	s.bus.Publish(events.GroupMembershipChanged{
		GroupID:    groupID,
		ChangeType: events.ChangeRemoved,
		UserID:     userID,
	})
	return nil
}

func (s *GroupService) GetGroup(groupID uint) (*models.Group, error) {
	return s.groupRepo.FindByID(groupID)
}

func (s *GroupService) GetGroupMembers(groupID uint) ([]models.User, error) {
	return s.groupRepo.GetMembers(groupID)
}

func (s *GroupService) GetUserGroups(userID uint) ([]models.Group, error) {
	return s.groupRepo.GetUserGroups(userID)
}

func (s *GroupService) IsMember(groupID, userID uint) (bool, error) {
	return s.groupRepo.IsMember(groupID, userID)
}
