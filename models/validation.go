package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Hata anahtarları olarak JSON alan adlarını kullan.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Postgres metin alanlarında NUL karakterini kabul etmez.
	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return !strings.ContainsRune(fl.Field().String(), 0)
	})
	return v
}

const msgRequired = "Bu alan zorunludur."

// ValidationError, alan bazlı doğrulama hatalarını taşır.
// JSON'a {"alan": ["mesaj", ...]} olarak yazılır.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add, field için bir hata mesajı ekler.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// require, present false ise field için zorunlu alan hatası ekler.
func (e *ValidationError) require(field string, present bool) {
	if !present {
		e.Add(field, msgRequired)
	}
}

// merge, e'deki hataları err ile birleştirir. Aynı alan için err'deki mesajlar önceliklidir.
func (e *ValidationError) merge(err error) error {
	if len(e.Fields) == 0 {
		return err
	}
	if err == nil {
		return e
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	for field, msgs := range e.Fields {
		if _, ok := verr.Fields[field]; !ok {
			verr.Fields[field] = msgs
		}
	}
	return verr
}

// NewFieldError, tek alanlık bir ValidationError oluşturur.
func NewFieldError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, msg)
	return e
}

// Validate, struct etiketlerine göre v'yi doğrular.
// Doğrulama hataları *ValidationError olarak döner.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "nonul":
		return "Bu alan NUL karakteri içeremez."
	case "max":
		if fe.Kind() != reflect.String {
			return fmt.Sprintf("Bu değer en fazla %s olabilir.", fe.Param())
		}
		return fmt.Sprintf("Bu alan en fazla %s karakter olabilir.", fe.Param())
	case "min":
		return fmt.Sprintf("Bu değer en az %s olmalıdır.", fe.Param())
	case "gt":
		return fmt.Sprintf("Bu değer %s değerinden büyük olmalıdır.", fe.Param())
	case "url":
		return "Geçerli bir URL girin."
	default:
		return "Geçersiz değer."
	}
}
