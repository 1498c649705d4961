package handler

import (
	"github.com/gofiber/fiber/v2"

	"mailroom/internal/model"
	"mailroom/internal/service"
)

type kycForm struct {
	Kind         string `form:"kind" json:"kind" validate:"required,oneof=KYC KYB"`
	DocumentType string `form:"document_type" json:"document_type" validate:"required,max=60"`
	BusinessName string `form:"business_name" json:"business_name" validate:"required_if=Kind KYB,max=200"`
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type urlResponse struct {
	URL string `json:"url"`
}

// SubmitKYC godoc
// @Summary Submit an identity or business verification
// @Tags kyc
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param kind formData string true "KYC or KYB"
// @Param document_type formData string true "Passport, ID card, registration..."
// @Param business_name formData string false "Required for KYB"
// @Param document formData file true "Scanned document"
// @Success 201 {object} model.KYCVerification
// @Router /kyc [post]
func SubmitKYC(svc service.KYCService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form kycForm
		if err := c.BodyParser(&form); err != nil {
			return badRequest("INVALID_BODY", "invalid form data")
		}
		if err := check(&form); err != nil {
			return err
		}
		doc, closeFn, err := requireUpload(c, "document")
		defer closeFn()
		if err != nil {
			return err
		}

		v, err := svc.Submit(c.UserContext(), actor(c), service.SubmitKYCInput{
			Kind:         model.VerificationKind(form.Kind),
			DocumentType: form.DocumentType,
			BusinessName: form.BusinessName,
			Document:     *doc,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// MyKYC godoc
// @Summary Latest verification of the caller
// @Tags kyc
// @Security BearerAuth
// @Success 200 {object} model.KYCVerification
// @Router /kyc/me [get]
func MyKYC(svc service.KYCService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := svc.Mine(c.UserContext(), actor(c))
		if err != nil {
			return err
		}
		return c.JSON(v)
	}
}

// ListPendingKYC godoc
// @Summary Verification review queue
// @Tags operations
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Router /ops/kyc [get]
func ListPendingKYC(svc service.KYCService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return err
		}
		res, err := svc.ListPending(c.UserContext(), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// ApproveKYC godoc
// @Summary Approve a pending verification
// @Tags operations
// @Security BearerAuth
// @Param id path string true "Verification ID"
// @Success 200 {object} actionResult
// @Failure 409 {object} errorPayload
// @Router /ops/kyc/{id}/approve [post]
func ApproveKYC(svc service.KYCService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		v, err := svc.Approve(c.UserContext(), actor(c), id)
		if err != nil {
			return err
		}
		return ok(c, "verification approved", v)
	}
}

// RejectKYC godoc
// @Summary Reject a pending verification
// @Tags operations
// @Security BearerAuth
// @Param id path string true "Verification ID"
// @Param body body reasonRequest true "Reason shown to the customer"
// @Success 200 {object} actionResult
// @Router /ops/kyc/{id}/reject [post]
func RejectKYC(svc service.KYCService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var req reasonRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		v, err := svc.Reject(c.UserContext(), actor(c), id, req.Reason)
		if err != nil {
			return err
		}
		return ok(c, "verification rejected", v)
	}
}

// KYCDocumentURL godoc
// @Summary Short-lived link to the submitted document
// @Tags operations
// @Security BearerAuth
// @Param id path string true "Verification ID"
// @Success 200 {object} urlResponse
// @Router /ops/kyc/{id}/document [get]
func KYCDocumentURL(svc service.KYCService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		u, err := svc.DocumentURL(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(urlResponse{URL: u})
	}
}
