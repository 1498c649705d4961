package handler

import (
	"github.com/gofiber/fiber/v2"

	"mailroom/internal/model"
	"mailroom/internal/repository"
	"mailroom/internal/service"
)

// RequestAction godoc
// @Summary Ask the mailroom to act on a mail item
// @Tags actions
// @Security BearerAuth
// @Accept json
// @Param id path string true "Mail item ID"
// @Param body body actionRequest true "Instruction"
// @Success 201 {object} model.MailActionRequest
// @Failure 402 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /mail/{id}/actions [post]
func RequestAction(svc service.ActionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var req actionRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		r, err := svc.Request(c.UserContext(), actor(c), service.RequestActionInput{
			MailItemID:     id,
			Action:         req.Action,
			ForwardAddress: req.ForwardAddress,
			Notes:          req.Notes,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

// ListActions godoc
// @Summary List action requests
// @Description Customers only see their own requests; operators see the queue.
// @Tags actions
// @Security BearerAuth
// @Param status query string false "Request status"
// @Param action query string false "Action type"
// @Param mail_item_id query string false "Mail item filter"
// @Router /actions [get]
func ListActions(svc service.ActionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return err
		}
		f := repository.ActionFilter{
			UserID:     c.Query("user_id"),
			MailItemID: c.Query("mail_item_id"),
			Status:     model.RequestStatus(c.Query("status")),
			Action:     model.ActionType(c.Query("action")),
		}
		res, err := svc.List(c.UserContext(), actor(c), f, limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GetAction godoc
// @Summary Get an action request
// @Tags actions
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} model.MailActionRequest
// @Router /actions/{id} [get]
func GetAction(svc service.ActionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		r, err := svc.Get(c.UserContext(), actor(c), id)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

type transitionFunc func(c *fiber.Ctx, id string) (*model.MailActionRequest, error)

// transition wraps the single-id state changes that share one shape.
func transition(message string, fn transitionFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		r, err := fn(c, id)
		if err != nil {
			return err
		}
		return ok(c, message, r)
	}
}

// CancelAction godoc
// @Summary Withdraw a pending request
// @Tags actions
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} actionResult
// @Router /actions/{id}/cancel [post]
func CancelAction(svc service.ActionService) fiber.Handler {
	return transition("request canceled", func(c *fiber.Ctx, id string) (*model.MailActionRequest, error) {
		return svc.Cancel(c.UserContext(), actor(c), id)
	})
}

// ApproveAction godoc
// @Summary Approve a pending request
// @Tags operations
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} actionResult
// @Router /ops/actions/{id}/approve [post]
func ApproveAction(svc service.ActionService) fiber.Handler {
	return transition("request approved", func(c *fiber.Ctx, id string) (*model.MailActionRequest, error) {
		return svc.Approve(c.UserContext(), actor(c), id)
	})
}

// StartAction godoc
// @Summary Begin work on a request
// @Tags operations
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} actionResult
// @Router /ops/actions/{id}/start [post]
func StartAction(svc service.ActionService) fiber.Handler {
	return transition("request in progress", func(c *fiber.Ctx, id string) (*model.MailActionRequest, error) {
		return svc.Start(c.UserContext(), actor(c), id)
	})
}

// RejectAction godoc
// @Summary Refuse a request
// @Tags operations
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body reasonRequest true "Reason shown to the customer"
// @Success 200 {object} actionResult
// @Router /ops/actions/{id}/reject [post]
func RejectAction(svc service.ActionService) fiber.Handler {
	return transition("request rejected", func(c *fiber.Ctx, id string) (*model.MailActionRequest, error) {
		var req reasonRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return svc.Reject(c.UserContext(), actor(c), id, req.Reason)
	})
}

// CompleteAction godoc
// @Summary Finish a request in progress
// @Description OPEN_AND_SCAN needs the scan file; FORWARD needs carrier and tracking number.
// @Tags operations
// @Security BearerAuth
// @Accept multipart/form-data
// @Param id path string true "Request ID"
// @Param carrier formData string false "Carrier"
// @Param tracking_number formData string false "Tracking number"
// @Param scan formData file false "Scanned contents"
// @Success 200 {object} actionResult
// @Router /ops/actions/{id}/complete [post]
func CompleteAction(svc service.ActionService) fiber.Handler {
	return transition("request completed", func(c *fiber.Ctx, id string) (*model.MailActionRequest, error) {
		scan, closeFn, err := upload(c, "scan")
		defer closeFn()
		if err != nil {
			return nil, err
		}
		return svc.Complete(c.UserContext(), actor(c), id, service.CompleteActionInput{
			Carrier:        c.FormValue("carrier"),
			TrackingNumber: c.FormValue("tracking_number"),
			Scan:           scan,
		})
	})
}
