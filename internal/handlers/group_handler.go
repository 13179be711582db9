package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Sean-323/LinkCare-sub001/internal/httpx"
	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"github.com/Sean-323/LinkCare-sub001/internal/service"
	"github.com/Sean-323/LinkCare-sub001/internal/validation"
)

type GroupHandler struct {
	groupService *service.GroupService
}

func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

type createGroupInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input createGroupInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	input.Name = validation.TrimAndLimit(input.Name, validation.MaxGroupNameLength())
	if input.Name == "" {
		return httpx.BadRequest(c, "missing_group_name", "Group name is required")
	}
	input.Description = validation.TrimAndLimit(input.Description, 500)

	group, err := h.groupService.CreateGroup(input.Name, input.Description, userID)
	if err != nil {
		return httpx.Internal(c, "create_group_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"group": group,
	})
}

func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	isMember, err := h.groupService.IsMember(uint(groupID), userID)
	if err != nil {
		return httpx.Internal(c, "get_group_failed")
	}
	if !isMember {
		return httpx.Forbidden(c, "not_a_member", "You are not a member of this group")
	}

	group, err := h.groupService.GetGroup(uint(groupID))
	if err != nil {
		return httpx.NotFound(c, "group_not_found", "Group not found")
	}

	return c.JSON(fiber.Map{
		"group": group,
	})
}

func (h *GroupHandler) JoinGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	if err := h.groupService.JoinGroup(uint(groupID), userID); err != nil {
		return httpx.BadRequest(c, "join_group_failed", err.Error())
	}

	return c.JSON(fiber.Map{
		"message": "Joined group",
	})
}

func (h *GroupHandler) LeaveGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	if err := h.groupService.LeaveGroup(uint(groupID), userID); err != nil {
		return httpx.BadRequest(c, "leave_group_failed", err.Error())
	}

	return c.JSON(fiber.Map{
		"message": "Left group",
	})
}

func (h *GroupHandler) GetGroupMembers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	isMember, err := h.groupService.IsMember(uint(groupID), userID)
	if err != nil {
		return httpx.Internal(c, "get_members_failed")
	}
	if !isMember {
		return httpx.Forbidden(c, "not_a_member", "You are not a member of this group")
	}

	members, err := h.groupService.GetGroupMembers(uint(groupID))
	if err != nil {
		return httpx.Internal(c, "get_members_failed")
	}

	responses := make([]models.UserResponse, len(members))
	for i, member := range members {
		responses[i] = member.ToResponse()
	}

	return c.JSON(fiber.Map{
		"members": responses,
	})
}

func (h *GroupHandler) GetMyGroups(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groups, err := h.groupService.GetUserGroups(userID)
	if err != nil {
		return httpx.Internal(c, "get_groups_failed")
	}

	return c.JSON(fiber.Map{
		"groups": groups,
	})
}
