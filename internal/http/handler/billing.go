package handler

import (
	"github.com/gofiber/fiber/v2"

	"mailroom/internal/model"
	"mailroom/internal/service"
)

// WebhookSignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const WebhookSignatureHeader = "X-Webhook-Signature"

type packageRequest struct {
	Name            string                `json:"name" validate:"required,max=120"`
	Description     string                `json:"description" validate:"max=1000"`
	PriceCents      int64                 `json:"price_cents" validate:"gte=0"`
	Interval        model.BillingInterval `json:"interval" validate:"omitempty,oneof=MONTHLY YEARLY"`
	MonthlyScans    int                   `json:"monthly_scans" validate:"gte=0"`
	MonthlyForwards int                   `json:"monthly_forwards" validate:"gte=0"`
	Active          *bool                 `json:"active"`
}

func (r packageRequest) input() service.PackageInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return service.PackageInput{
		Name:            r.Name,
		Description:     r.Description,
		PriceCents:      r.PriceCents,
		Interval:        r.Interval,
		MonthlyScans:    r.MonthlyScans,
		MonthlyForwards: r.MonthlyForwards,
		Active:          active,
	}
}

// ListPackages godoc
// @Summary Plans on sale
// @Tags packages
// @Produce json
// @Success 200 {array} model.Package
// @Router /packages [get]
func ListPackages(svc service.PackageService, activeOnly bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pkgs, err := svc.List(c.UserContext(), activeOnly)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": pkgs})
	}
}

// GetPackage godoc
// @Summary Get a plan
// @Tags packages
// @Param id path string true "Package ID"
// @Success 200 {object} model.Package
// @Router /packages/{id} [get]
func GetPackage(svc service.PackageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// CreatePackage godoc
// @Summary Create a plan
// @Tags admin
// @Security BearerAuth
// @Param body body packageRequest true "Plan"
// @Success 201 {object} model.Package
// @Router /admin/packages [post]
func CreatePackage(svc service.PackageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req packageRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		p, err := svc.Create(c.UserContext(), actor(c), req.input())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// UpdatePackage godoc
// @Summary Replace a plan
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Package ID"
// @Param body body packageRequest true "Plan"
// @Router /admin/packages/{id} [put]
func UpdatePackage(svc service.PackageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var req packageRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		p, err := svc.Update(c.UserContext(), actor(c), id, req.input())
		if err != nil {
			return err
		}
		return ok(c, "package updated", p)
	}
}

// DeletePackage godoc
// @Summary Delete a plan without active subscribers
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Package ID"
// @Success 204
// @Failure 409 {object} errorPayload
// @Router /admin/packages/{id} [delete]
func DeletePackage(svc service.PackageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), actor(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// MySubscription godoc
// @Summary The caller's latest subscription
// @Tags subscriptions
// @Security BearerAuth
// @Success 200 {object} model.Subscription
// @Router /subscriptions/me [get]
func MySubscription(svc service.SubscriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Mine(c.UserContext(), actor(c))
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

// ListSubscriptions godoc
// @Summary List subscriptions
// @Tags admin
// @Security BearerAuth
// @Param status query string false "ACTIVE, PAST_DUE, CANCELED or EXPIRED"
// @Router /admin/subscriptions [get]
func ListSubscriptions(svc service.SubscriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), model.SubscriptionStatus(c.Query("status")), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// PaymentWebhook godoc
// @Summary Payment provider callback
// @Tags webhooks
// @Accept json
// @Param X-Webhook-Signature header string true "hex HMAC-SHA256 of the body"
// @Success 200 {object} actionResult
// @Failure 401 {object} errorPayload
// @Router /webhooks/payments [post]
func PaymentWebhook(svc service.SubscriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Body() is only valid for the request lifetime; the service may keep slices of it.
		body := append([]byte(nil), c.Body()...)
		sub, err := svc.HandleWebhook(c.UserContext(), c.Get(WebhookSignatureHeader), body)
		if err != nil {
			return err
		}
		if sub == nil {
			return ok(c, "event ignored", nil)
		}
		return ok(c, "subscription updated", sub)
	}
}
