package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return Category(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("notecategory", func(fl validator.FieldLevel) bool {
			return NoteCategory(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(DateLayout, fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
			_, err := ParseAmount(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// FieldError is a validation failure that names the offending fields by
// their JSON names. It matches ErrValidation under errors.Is.
type FieldError struct {
	Fields []string
	msgs   []string
}

func (e *FieldError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.msgs, "; ")
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// InvalidFields returns the fields named by a FieldError anywhere in err's
// chain, or nil.
func InvalidFields(err error) []string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Fields
	}
	return nil
}

// validateStruct runs the struct tag rules and folds every failure into a
// single ErrValidation.
func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	out := &FieldError{Fields: make([]string, 0, len(verrs)), msgs: make([]string, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, fe.Field())
		switch fe.Tag() {
		case "required", "required_if":
			out.msgs = append(out.msgs, fe.Field()+" is required")
		case "decimal":
			out.msgs = append(out.msgs, fe.Field()+" must be a non-negative number")
		case "isodate":
			out.msgs = append(out.msgs, fe.Field()+" must be a YYYY-MM-DD date")
		default:
			out.msgs = append(out.msgs, fmt.Sprintf("%s is not a valid %s", fe.Field(), fe.Tag()))
		}
	}
	return out
}
