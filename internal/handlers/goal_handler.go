package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Sean-323/LinkCare-sub001/internal/httpx"
	"github.com/Sean-323/LinkCare-sub001/internal/models"
	"github.com/Sean-323/LinkCare-sub001/internal/service"
)

type GoalHandler struct {
	goalService  *service.GoalService
	groupService *service.GroupService
}

func NewGoalHandler(goalService *service.GoalService, groupService *service.GroupService) *GoalHandler {
	return &GoalHandler{goalService: goalService, groupService: groupService}
}

func (h *GoalHandler) requireMembership(c *fiber.Ctx) (uint, error) {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return 0, httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return 0, httpx.BadRequest(c, "invalid_group_id", "Invalid group ID")
	}

	isMember, err := h.groupService.IsMember(uint(groupID), userID)
	if err != nil {
		return 0, httpx.Internal(c, "membership_check_failed")
	}
	if !isMember {
		return 0, httpx.Forbidden(c, "not_a_member", "You are not a member of this group")
	}
	return uint(groupID), nil
}

// GetWeeklyGoal returns the current week's goal for a group.
func (h *GoalHandler) GetWeeklyGoal(c *fiber.Ctx) error {
	groupID, handled := h.requireMembership(c)
	if handled != nil {
		return handled
	}

	goal, err := h.goalService.GetWeeklyGoal(groupID, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrGoalNotFound) {
			return httpx.NotFound(c, "goal_not_found", "No goal exists for this week yet")
		}
		return httpx.Internal(c, "get_goal_failed")
	}

	return c.JSON(fiber.Map{
		"goal": goal,
	})
}

type changeMetricInput struct {
	MetricType string `json:"metric_type"`
}

// ChangeSelectedMetric switches which metric the group's current goal
// displays. The choice survives later regenerations of the same week.
func (h *GoalHandler) ChangeSelectedMetric(c *fiber.Ctx) error {
	groupID, handled := h.requireMembership(c)
	if handled != nil {
		return handled
	}

	var input changeMetricInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	metric := models.MetricType(input.MetricType)
	if err := h.goalService.ChangeSelectedMetric(groupID, metric, time.Now()); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMetric):
			return httpx.BadRequest(c, "invalid_metric_type", "Unknown metric type")
		case errors.Is(err, service.ErrGoalNotFound):
			return httpx.NotFound(c, "goal_not_found", "No goal exists for this week yet")
		default:
			return httpx.Internal(c, "change_metric_failed")
		}
	}

	return c.JSON(fiber.Map{
		"selected_metric_type": metric,
	})
}

// GetHeader returns the group's motivational header line.
func (h *GoalHandler) GetHeader(c *fiber.Ctx) error {
	groupID, handled := h.requireMembership(c)
	if handled != nil {
		return handled
	}

	header, err := h.goalService.GetHeader(groupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			return httpx.NotFound(c, "group_not_found", "Group not found")
		}
		return httpx.Internal(c, "get_header_failed")
	}

	return c.JSON(fiber.Map{
		"header": header,
	})
}

// ListRecords returns finalized past-week achievement records, newest
// first.
func (h *GoalHandler) ListRecords(c *fiber.Ctx) error {
	groupID, handled := h.requireMembership(c)
	if handled != nil {
		return handled
	}

	limit := c.QueryInt("limit", 0)
	records, err := h.goalService.ListRecords(groupID, limit)
	if err != nil {
		return httpx.Internal(c, "list_records_failed")
	}

	return c.JSON(fiber.Map{
		"records": records,
	})
}
