// Package validation wraps go-playground/validator with English messages and
// converts its errors into domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/heartmarshall/learnsync/internal/domain"
)

// custom validation tags
const (
	notBlankTag   = "notblank"
	entityTypeTag = "entity_type"
)

// Validator validates tagged structs and single values.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator reporting fields by their json names.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	tr, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, tr); err != nil {
		return nil, fmt.Errorf("register translations: %w", err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation(notBlankTag, notBlank); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation(entityTypeTag, entityType); err != nil {
		return nil, err
	}

	messages := map[string]string{
		notBlankTag:       "{0} cannot be blank",
		entityTypeTag:     "{0} must be one of course, lesson, badge, achievement",
		"required_unless": "{0} is required for this change_type",
		"required_if":     "{0} is required for this change_type",
	}
	for tag, msg := range messages {
		if err := v.RegisterTranslation(tag, tr, registerMessage(tag, msg), translate); err != nil {
			return nil, fmt.Errorf("register %s translation: %w", tag, err)
		}
	}

	return &Validator{validate: v, translator: tr}, nil
}

// Engine exposes the underlying validator for per-value rule checks.
func (v *Validator) Engine() *validator.Validate { return v.validate }

// Struct validates s and returns a *domain.ValidationError listing every
// failing field, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.FieldError{
			Field:   fieldPath(fe),
			Message: fe.Translate(v.translator),
		})
	}
	return domain.NewValidationErrors(out)
}

// fieldPath drops the root struct name: "SubmitInput.changes[0].data" → "changes[0].data".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func registerMessage(tag, msg string) validator.RegisterTranslationsFunc {
	return func(tr ut.Translator) error {
		return tr.Add(tag, msg, true)
	}
}

func translate(tr ut.Translator, fe validator.FieldError) string {
	msg, err := tr.T(fe.Tag(), fe.Field())
	if err != nil {
		return fe.Error()
	}
	return msg
}

func notBlank(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

func entityType(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, valid := domain.ParseEntityType(s)
	return valid
}
