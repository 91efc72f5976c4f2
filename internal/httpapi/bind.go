package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/ZaguanLabs/gotara"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// requestError is a client error: 400 for malformed input, 422 for input
// that decodes but fails validation.
type requestError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *requestError) Error() string { return e.Message }

type validatorSvc struct {
	validate *validator.Validate
	trans    ut.Translator
}

var validatorOnce = sync.OnceValue(func() *validatorSvc {
	uni := ut.New(en.New())
	trans, _ := uni.GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())

	// json tag names in messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})

	_ = en_translations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterValidation("direction", func(fl validator.FieldLevel) bool {
		_, err := gotara.ParseDirection(fl.Field().String())
		return err == nil
	})

	registerTranslation(v, trans, "direction", "{0} must be auto, englishToTaralians or taraliansToEnglish")
	registerTranslation(v, trans, "max", "{0} must be at most {1}")
	registerTranslation(v, trans, "min", "{0} must be at least {1}")

	return &validatorSvc{validate: v, trans: trans}
})

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// parseJSON decodes the request body into T and validates it.
func parseJSON[T any](r *http.Request) (T, error) {
	var zero, dst T

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, &requestError{Status: http.StatusBadRequest, Message: "empty body"}
		}
		return zero, &requestError{Status: http.StatusBadRequest, Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if dec.More() {
		return zero, &requestError{Status: http.StatusBadRequest, Message: "unexpected trailing data"}
	}

	if err := validateStruct(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// validateStruct maps validator failures to a 422 requestError with one
// translated message per field.
func validateStruct(v any) error {
	svc := validatorOnce()
	err := svc.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &requestError{Status: http.StatusBadRequest, Message: err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(svc.trans)
	}
	return &requestError{
		Status:  http.StatusUnprocessableEntity,
		Message: "validation failed",
		Fields:  fields,
	}
}
