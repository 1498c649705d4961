package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"mailroom/internal/model"
	"mailroom/internal/repository"
	"mailroom/internal/service"
)

type intakeForm struct {
	MailboxID string `form:"mailbox_id" validate:"required,uuid"`
	Sender    string `form:"sender" validate:"max=200"`
	Kind      string `form:"kind" validate:"required,oneof=LETTER PARCEL"`
}

type actionRequest struct {
	Action         model.ActionType `json:"action" validate:"required,oneof=OPEN_AND_SCAN FORWARD SHRED HOLD"`
	ForwardAddress string           `json:"forward_address" validate:"required_if=Action FORWARD,max=500"`
	Notes          string           `json:"notes" validate:"max=1000"`
}

// IntakeMail godoc
// @Summary Record a received mail item
// @Tags operations
// @Security BearerAuth
// @Accept multipart/form-data
// @Param mailbox_id formData string true "Mailbox ID"
// @Param sender formData string false "Sender"
// @Param kind formData string true "LETTER or PARCEL"
// @Param width_cm formData number true "Width"
// @Param height_cm formData number true "Height"
// @Param depth_cm formData number true "Depth"
// @Param weight_grams formData int false "Weight"
// @Param envelope formData file false "Envelope photo"
// @Success 201 {object} model.MailItem
// @Router /ops/mail [post]
func IntakeMail(svc service.MailService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form intakeForm
		if err := c.BodyParser(&form); err != nil {
			return badRequest("INVALID_BODY", "invalid form data")
		}
		if err := check(&form); err != nil {
			return err
		}

		var size model.Dimensions
		var err error
		if size.Width, err = formFloat(c, "width_cm"); err != nil {
			return err
		}
		if size.Height, err = formFloat(c, "height_cm"); err != nil {
			return err
		}
		if size.Depth, err = formFloat(c, "depth_cm"); err != nil {
			return err
		}
		weight := 0
		if raw := strings.TrimSpace(c.FormValue("weight_grams")); raw != "" {
			if weight, err = strconv.Atoi(raw); err != nil {
				return &service.ValidationError{Field: "weight_grams", Message: "must be an integer"}
			}
		}

		envelope, closeFn, err := upload(c, "envelope")
		defer closeFn()
		if err != nil {
			return err
		}

		item, err := svc.Intake(c.UserContext(), actor(c), service.IntakeInput{
			MailboxID:   form.MailboxID,
			Sender:      form.Sender,
			Kind:        model.MailKind(form.Kind),
			Size:        size,
			WeightGrams: weight,
			Envelope:    envelope,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// ListMail godoc
// @Summary List mail items
// @Description Customers only see their own mail.
// @Tags mail
// @Security BearerAuth
// @Param mailbox_id query string false "Mailbox filter"
// @Param user_id query string false "Owner filter (operators)"
// @Param status query string false "RECEIVED, SCANNED, FORWARDED, SHREDDED or HELD"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Router /mail [get]
func ListMail(svc service.MailService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return err
		}
		f := repository.MailFilter{
			UserID:    c.Query("user_id"),
			MailboxID: c.Query("mailbox_id"),
			Status:    model.MailStatus(c.Query("status")),
		}
		res, err := svc.List(c.UserContext(), actor(c), f, limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GetMail godoc
// @Summary Get a mail item
// @Tags mail
// @Security BearerAuth
// @Param id path string true "Mail item ID"
// @Success 200 {object} model.MailItem
// @Router /mail/{id} [get]
func GetMail(svc service.MailService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		item, err := svc.Get(c.UserContext(), actor(c), id)
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}

// MailScanURL godoc
// @Summary Short-lived link to the scanned contents
// @Tags mail
// @Security BearerAuth
// @Param id path string true "Mail item ID"
// @Success 200 {object} urlResponse
// @Router /mail/{id}/scan [get]
func MailScanURL(svc service.MailService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		u, err := svc.ScanURL(c.UserContext(), actor(c), id)
		if err != nil {
			return err
		}
		return c.JSON(urlResponse{URL: u})
	}
}

// MailEnvelopeURL godoc
// @Summary Short-lived link to the envelope photo
// @Tags mail
// @Security BearerAuth
// @Param id path string true "Mail item ID"
// @Success 200 {object} urlResponse
// @Router /mail/{id}/envelope [get]
func MailEnvelopeURL(svc service.MailService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		u, err := svc.EnvelopeURL(c.UserContext(), actor(c), id)
		if err != nil {
			return err
		}
		return c.JSON(urlResponse{URL: u})
	}
}
