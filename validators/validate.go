package validators

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"lms/middleware"
	"lms/models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	roleTag  = "role"
	roleText = "{0} must be one of STUDENT, TEACHER or ADMIN"

	notBlankTag  = "notblank"
	notBlankText = "{0} must not be blank"
)

// BadRequestError is answered with 400.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

// FieldErrors is answered with 422, keyed by JSON field name.
type FieldErrors map[string]string

func (e FieldErrors) Error() string { return "validation failed" }

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		return models.ValidRole(fl.Field().String())
	})
	registerTranslation(roleTag, roleText)

	_ = Validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	registerTranslation(notBlankTag, notBlankText)
}

func registerTranslation(tag, text string) {
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates a request struct and flattens the errors by field.
func Struct(reqData interface{}) error {
	err := Validate.Struct(reqData)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fieldKey(fe)] = fe.Translate(Translator)
	}
	return fields
}

// fieldKey strips the root struct name from the namespace: "Req.questions[0].prompt" -> "questions[0].prompt".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// BindBody parses the JSON (or form) body into reqData and validates it.
func BindBody(c *fiber.Ctx, reqData interface{}) error {
	if err := c.BodyParser(reqData); err != nil {
		return &BadRequestError{Message: "Invalid request body!"}
	}
	return Struct(reqData)
}

// BindQuery parses query parameters into reqData and validates it.
func BindQuery(c *fiber.Ctx, reqData interface{}) error {
	if err := c.QueryParser(reqData); err != nil {
		return &BadRequestError{Message: "Invalid query parameters!"}
	}
	return Struct(reqData)
}

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name, label string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	if raw == "" {
		return 0, &BadRequestError{Message: label + " ID is required!"}
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &BadRequestError{Message: "Invalid " + label + " ID!"}
	}
	return uint(id), nil
}

// ErrorResponse writes the response matching an error from this package.
func ErrorResponse(c *fiber.Ctx, err error) error {
	var fields FieldErrors
	if errors.As(err, &fields) {
		return middleware.ValidationErrorResponse(c, fields)
	}
	var bad *BadRequestError
	if errors.As(err, &bad) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, bad.Message, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
}

// IDParams parses each named route parameter and stores it in Locals under "<name>ID"
// with snake case turned to camel case, e.g. "module_id" -> "moduleID", "id" -> "id".
func IDParams(params map[string]string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for name, label := range params {
			id, err := ParamID(c, name, label)
			if err != nil {
				return ErrorResponse(c, err)
			}
			c.Locals(LocalKey(name), id)
		}
		return c.Next()
	}
}

// LocalKey maps a route parameter name to its Locals key.
func LocalKey(param string) string {
	if param == "id" {
		return "id"
	}
	base := strings.TrimSuffix(param, "_id")
	parts := strings.Split(base, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "") + "ID"
}

// ID is the common single ":id" parameter validator.
func ID(label string) fiber.Handler {
	return IDParams(map[string]string{"id": label})
}

// PageOffset normalizes page/limit query values and returns the offset.
func PageOffset(page, limit int) (int, int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

// Body parses and validates a request of type T and stores it under key.
func Body[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := BindBody(c, reqData); err != nil {
			return ErrorResponse(c, err)
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}

// Query parses and validates query parameters of type T and stores them under key.
func Query[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := BindQuery(c, reqData); err != nil {
			return ErrorResponse(c, err)
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}
