package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

var std = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	configure(v)
	return v
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", "min=8")
}

// Init configures Gin's binding: JSON tag names in errors, the pwd alias and
// rejection of unknown JSON fields.
func Init() {
	binding.EnableDecoderDisallowUnknownFields = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

// Struct validates s by its `validate` tags and returns a ValidationFailed
// error listing every invalid field, or nil.
func Struct(s any) error {
	return FromError(std.Struct(s))
}

// FromError converts binding and validation errors into API errors.
// Errors that are already API errors pass through.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.PayloadTooLarge(fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
	}
	if details := ToDetails(err); details != nil {
		return apperror.Validation(Message(details), details)
	}
	return apperror.Validation("Invalid input data. "+err.Error(), nil)
}

// Message renders details as "Invalid input data. a is required. b ...".
func Message(details map[string]string) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+details[k])
	}
	return "Invalid input data. " + strings.Join(parts, ". ")
}

// ToDetails converts validation/binding errors into a map[field]message.
// It returns nil for errors it does not recognise.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return map[string]string{"body": "is required"}
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return map[string]string{"body": "is not valid JSON"}
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return map[string]string{ute.Field: "must be of type " + ute.Type.String()}
	}
	if f, ok := unknownField(err); ok {
		return map[string]string{f: "is not an allowed field"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fieldPath(fe)] = formatFieldError(fe)
		}
		return out
	}
	return nil
}

// unknownField recognises encoding/json's DisallowUnknownFields error, which
// has no exported type.
func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(msg, prefix), `"`), true
}

// fieldPath drops the struct name from the namespace: Tour.locations[0].day
// becomes locations[0].day.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	number := isNumberKind(fe.Kind())

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "eq":
		return "must be " + param
	case "eqfield":
		return "must match " + lowerFirst(param)
	case "ltfield":
		return "must be below " + lowerFirst(param)
	case "len":
		if number {
			return "must be " + param
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array {
			return "must contain exactly " + param + " items"
		}
		return "must be exactly " + param + " characters long"
	case "min", "gte":
		if number {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "pwd":
		return "must be at least 8 characters long"
	case "max", "lte":
		if number {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gt":
		return "must be greater than " + param
	case "lt":
		return "must be less than " + param
	case "url":
		return "must be a valid URL"
	default:
		if param != "" {
			return fmt.Sprintf("failed '%s=%s'", fe.Tag(), param)
		}
		return fmt.Sprintf("failed '%s'", fe.Tag())
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
