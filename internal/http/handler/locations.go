package handler

import (
	"github.com/gofiber/fiber/v2"

	"mailroom/internal/model"
	"mailroom/internal/repository"
	"mailroom/internal/service"
)

type locationRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	AddressLine string   `json:"address_line" validate:"required"`
	City        string   `json:"city" validate:"required"`
	State       string   `json:"state"`
	PostalCode  string   `json:"postal_code" validate:"required"`
	Country     string   `json:"country" validate:"required,len=2"`
	Clusters    []string `json:"clusters" validate:"required,min=1"`
}

type clusterRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

type mailboxRequest struct {
	ClusterID string           `json:"cluster_id" validate:"required,uuid"`
	BoxNumber string           `json:"box_number" validate:"required,max=20"`
	Size      model.Dimensions `json:"size"`
}

type mailboxPatch struct {
	BoxNumber *string              `json:"box_number" validate:"omitempty,max=20"`
	Size      *model.Dimensions    `json:"size"`
	Status    *model.MailboxStatus `json:"status" validate:"omitempty,oneof=AVAILABLE DISABLED"`
}

type assignRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// CreateLocation godoc
// @Summary Create a location with its clusters
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Param body body locationRequest true "Location"
// @Success 201 {object} model.Location
// @Router /admin/locations [post]
func CreateLocation(svc service.LocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req locationRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		loc, err := svc.Create(c.UserContext(), actor(c), service.CreateLocationInput{
			Name:        req.Name,
			AddressLine: req.AddressLine,
			City:        req.City,
			State:       req.State,
			PostalCode:  req.PostalCode,
			Country:     req.Country,
			Clusters:    req.Clusters,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	}
}

// ListLocations godoc
// @Summary List locations
// @Tags admin
// @Security BearerAuth
// @Success 200 {array} model.Location
// @Router /admin/locations [get]
func ListLocations(svc service.LocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		locs, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": locs})
	}
}

// GetLocation godoc
// @Summary Get a location with its clusters
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Router /admin/locations/{id} [get]
func GetLocation(svc service.LocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		loc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(loc)
	}
}

// AddCluster godoc
// @Summary Add a cluster to a location
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Param body body clusterRequest true "Cluster"
// @Router /admin/locations/{id}/clusters [post]
func AddCluster(svc service.LocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var req clusterRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		cl, err := svc.AddCluster(c.UserContext(), actor(c), id, req.Name)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(cl)
	}
}

// DeleteCluster godoc
// @Summary Delete an empty cluster
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Cluster ID"
// @Success 204
// @Failure 409 {object} errorPayload
// @Router /admin/clusters/{id} [delete]
func DeleteCluster(svc service.LocationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeleteCluster(c.UserContext(), actor(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CreateMailbox godoc
// @Summary Create a mailbox in a cluster
// @Tags admin
// @Security BearerAuth
// @Param body body mailboxRequest true "Mailbox"
// @Success 201 {object} model.Mailbox
// @Router /admin/mailboxes [post]
func CreateMailbox(svc service.MailboxService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req mailboxRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		mb, err := svc.Create(c.UserContext(), actor(c), service.CreateMailboxInput{
			ClusterID: req.ClusterID,
			BoxNumber: req.BoxNumber,
			Size:      req.Size,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(mb)
	}
}

// ListMailboxes godoc
// @Summary List mailboxes
// @Tags operations
// @Security BearerAuth
// @Param cluster_id query string false "Cluster filter"
// @Param status query string false "AVAILABLE, ASSIGNED or DISABLED"
// @Router /ops/mailboxes [get]
func ListMailboxes(svc service.MailboxService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return err
		}
		f := repository.MailboxFilter{
			ClusterID: c.Query("cluster_id"),
			Status:    model.MailboxStatus(c.Query("status")),
		}
		res, err := svc.List(c.UserContext(), f, limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GetMailbox godoc
// @Summary Get a mailbox
// @Tags operations
// @Security BearerAuth
// @Param id path string true "Mailbox ID"
// @Router /ops/mailboxes/{id} [get]
func GetMailbox(svc service.MailboxService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		mb, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(mb)
	}
}

// UpdateMailbox godoc
// @Summary Change number, size or availability of a mailbox
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Mailbox ID"
// @Param body body mailboxPatch true "Fields to change"
// @Router /admin/mailboxes/{id} [patch]
func UpdateMailbox(svc service.MailboxService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var req mailboxPatch
		if err := bind(c, &req); err != nil {
			return err
		}
		mb, err := svc.Update(c.UserContext(), actor(c), id, service.UpdateMailboxInput{
			BoxNumber: req.BoxNumber,
			Size:      req.Size,
			Status:    req.Status,
		})
		if err != nil {
			return err
		}
		return ok(c, "mailbox updated", mb)
	}
}

// AssignMailbox godoc
// @Summary Rent a mailbox to a user
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Mailbox ID"
// @Param body body assignRequest true "Renter"
// @Success 200 {object} actionResult
// @Failure 409 {object} errorPayload
// @Router /admin/mailboxes/{id}/assign [post]
func AssignMailbox(svc service.MailboxService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var req assignRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		mb, err := svc.Assign(c.UserContext(), actor(c), id, req.UserID)
		if err != nil {
			return err
		}
		return ok(c, "mailbox assigned", mb)
	}
}

// ReleaseMailbox godoc
// @Summary End a mailbox rental
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Mailbox ID"
// @Success 200 {object} actionResult
// @Router /admin/mailboxes/{id}/release [post]
func ReleaseMailbox(svc service.MailboxService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		mb, err := svc.Release(c.UserContext(), actor(c), id)
		if err != nil {
			return err
		}
		return ok(c, "mailbox released", mb)
	}
}

// CheckFit godoc
// @Summary Whether an item of the given size fits a mailbox
// @Tags operations
// @Security BearerAuth
// @Param id path string true "Mailbox ID"
// @Param width query number true "Width in cm"
// @Param height query number true "Height in cm"
// @Param depth query number true "Depth in cm"
// @Success 200 {object} service.FitResult
// @Router /ops/mailboxes/{id}/fit [get]
func CheckFit(svc service.MailboxService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		item := model.Dimensions{
			Width:  c.QueryFloat("width"),
			Height: c.QueryFloat("height"),
			Depth:  c.QueryFloat("depth"),
		}
		res, err := svc.CheckFit(c.UserContext(), id, item)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// MyMailbox godoc
// @Summary The caller's mailbox and its postal address
// @Tags mailbox
// @Security BearerAuth
// @Success 200 {object} service.MyMailbox
// @Router /me/mailbox [get]
func MyMailbox(svc service.MailboxService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mb, err := svc.Mine(c.UserContext(), actor(c))
		if err != nil {
			return err
		}
		return c.JSON(mb)
	}
}
