package handler

import (
	"github.com/gofiber/fiber/v2"

	"mailroom/internal/model"
	"mailroom/internal/service"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"max=40"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createUserRequest struct {
	registerRequest
	Role model.Role `json:"role" validate:"required,oneof=USER OPERATOR ADMIN"`
}

type roleRequest struct {
	Role model.Role `json:"role" validate:"required,oneof=USER OPERATOR ADMIN"`
}

// Register godoc
// @Summary Self sign-up
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "Account"
// @Success 201 {object} model.Profile
// @Failure 409 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		p, err := svc.Register(c.UserContext(), service.RegisterInput{
			Email: req.Email, Password: req.Password, FullName: req.FullName, Phone: req.Phone,
		}, c.IP())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// Login godoc
// @Summary Exchange credentials for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} errorPayload
// @Failure 429 {object} errorPayload
// @Router /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		res, err := svc.Login(c.UserContext(), req.Email, req.Password, c.IP())
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// Me godoc
// @Summary Current profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.Profile
// @Router /me [get]
func Me(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Me(c.UserContext(), actor(c))
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// CreateUser godoc
// @Summary Create an account with any role
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body createUserRequest true "Account"
// @Success 201 {object} model.Profile
// @Router /admin/users [post]
func CreateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createUserRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		p, err := svc.Create(c.UserContext(), actor(c), service.CreateUserInput{
			RegisterInput: service.RegisterInput{
				Email: req.Email, Password: req.Password, FullName: req.FullName, Phone: req.Phone,
			},
			Role: req.Role,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// ListUsers godoc
// @Summary List accounts
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param role query string false "USER, OPERATOR or ADMIN"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Router /admin/users [get]
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), model.Role(c.Query("role")), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GetUser godoc
// @Summary Get an account
// @Tags admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Router /admin/users/{id} [get]
func GetUser(svc service.UserService) fiber.Handler {
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

// UpdateUserRole godoc
// @Summary Change an account's role
// @Tags admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body roleRequest true "Role"
// @Router /admin/users/{id}/role [patch]
func UpdateUserRole(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var req roleRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		p, err := svc.UpdateRole(c.UserContext(), actor(c), id, req.Role)
		if err != nil {
			return err
		}
		return ok(c, "role updated", p)
	}
}

// DeleteUser godoc
// @Summary Delete an account and free its mailbox
// @Tags admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Router /admin/users/{id} [delete]
func DeleteUser(svc service.UserService) fiber.Handler {
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
