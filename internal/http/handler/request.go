package handler

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mailroom/internal/http/middleware"
	"mailroom/internal/service"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// actionResult is the envelope returned by state-changing endpoints.
type actionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *fiber.Ctx, message string, data any) error {
	return c.JSON(actionResult{Success: true, Message: message, Data: data})
}

// bind parses the JSON body into dst and runs its validate tags.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return badRequest("INVALID_BODY", "request body is not valid JSON")
	}
	return check(dst)
}

func check(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &service.ValidationError{Field: fe.Field(), Message: describe(fe)}
	}
	return &service.ValidationError{Message: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "uuid":
		return "must be a UUID"
	default:
		return "is invalid"
	}
}

// actor returns the caller placed in locals by middleware.Authenticate.
func actor(c *fiber.Ctx) service.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}

// idParam reads a UUID path parameter.
func idParam(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", badRequest("INVALID_ID", "invalid id format")
	}
	return id, nil
}

// pagination reads limit and offset query parameters.
func pagination(c *fiber.Ctx) (int, int, error) {
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil {
		return 0, 0, badRequest("INVALID_LIMIT", "invalid limit")
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, badRequest("INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, nil
}

// upload opens an optional multipart file. The returned closer is never nil.
func upload(c *fiber.Ctx, field string) (*service.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// Missing part or non-multipart body: the file was not sent.
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, badRequest("FILE_OPEN_ERROR", "cannot open uploaded file")
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &service.Upload{Reader: f, Filename: fh.Filename, ContentType: ct, Size: fh.Size},
		func() { _ = f.Close() }, nil
}

// requireUpload is upload for mandatory files.
func requireUpload(c *fiber.Ctx, field string) (*service.Upload, func(), error) {
	up, closeFn, err := upload(c, field)
	if err != nil {
		return nil, closeFn, err
	}
	if up == nil {
		return nil, closeFn, badRequest("FILE_REQUIRED", field+" is required")
	}
	return up, closeFn, nil
}

func formFloat(c *fiber.Ctx, field string) (float64, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &service.ValidationError{Field: field, Message: "must be a number"}
	}
	return v, nil
}
