package mutate

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// V returns the shared validator with the marketplace's field rules registered.
func V() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
		validate.RegisterValidation("aadhaar", digitsValidator(12))
		validate.RegisterValidation("mobile", digitsValidator(10))
		validate.RegisterValidation("otp", digitsValidator(6))
		validate.RegisterValidation("pincode", digitsValidator(6))
		validate.RegisterValidation("remark", remarkValidator)
	})
	return validate
}

// MinRemarkLength is the shortest accepted rejection remark.
const MinRemarkLength = 3

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

func digitsValidator(n int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) == n && digitsOnly.MatchString(s)
	}
}

// remarkValidator requires at least MinRemarkLength characters once surrounding
// whitespace is removed.
func remarkValidator(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= MinRemarkLength
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// FieldErrors maps a field's JSON name to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return strings.Join(parts, "; ")
}

// Fields returns the failing field names in order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Validate checks v against its validate tags and returns FieldErrors, or nil.
func Validate(v any) error {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	err := V().Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fe := FieldErrors{}
	for _, e := range verrs {
		fe[fieldPath(e)] = message(e)
	}
	return fe
}

// fieldPath drops the struct name from the namespace, keeping nested JSON names.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "aadhaar":
		return "must be exactly 12 digits"
	case "mobile":
		return "must be exactly 10 digits"
	case "otp", "pincode":
		return "must be exactly 6 digits"
	case "remark":
		return fmt.Sprintf("must be at least %d characters", MinRemarkLength)
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	default:
		return "failed the " + e.Tag() + " check"
	}
}
