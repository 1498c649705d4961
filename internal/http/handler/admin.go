package handler

import (
	"github.com/gofiber/fiber/v2"

	"mailroom/internal/repository"
	"mailroom/internal/service"
)

type allowedIPRequest struct {
	CIDR  string `json:"cidr" validate:"required,max=64"`
	Label string `json:"label" validate:"max=120"`
}

// ListActivity godoc
// @Summary Audit trail
// @Tags admin
// @Security BearerAuth
// @Param actor_id query string false "Actor filter"
// @Param entity_type query string false "Entity filter"
// @Param request_id query string false "Request id, as returned in X-Request-ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Router /admin/activity [get]
func ListActivity(svc service.ActivityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return err
		}
		f := repository.ActivityFilter{
			ActorID:    c.Query("actor_id"),
			EntityType: c.Query("entity_type"),
			RequestID:  c.Query("request_id"),
		}
		res, err := svc.List(c.UserContext(), f, limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// ListAllowedIPs godoc
// @Summary Admin IP allowlist
// @Tags admin
// @Security BearerAuth
// @Router /admin/allowed-ips [get]
func ListAllowedIPs(svc service.AllowedIPService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ips, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": ips})
	}
}

// AddAllowedIP godoc
// @Summary Allow an address or CIDR range to reach admin routes
// @Tags admin
// @Security BearerAuth
// @Param body body allowedIPRequest true "Entry"
// @Success 201 {object} model.AllowedIP
// @Router /admin/allowed-ips [post]
func AddAllowedIP(svc service.AllowedIPService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req allowedIPRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		ip, err := svc.Add(c.UserContext(), actor(c), req.CIDR, req.Label)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ip)
	}
}

// DeleteAllowedIP godoc
// @Summary Remove an allowlist entry
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 204
// @Router /admin/allowed-ips/{id} [delete]
func DeleteAllowedIP(svc service.AllowedIPService) fiber.Handler {
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
