// Package request разбирает и валидирует тела JSON-запросов.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator"
)

// MaxBodyBytes ограничивает размер тела запроса.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody — тело запроса отсутствует.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON читает тело r в dst. Неизвестные поля считаются ошибкой.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	const op = "request.DecodeJSON"
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if dec.More() {
		return fmt.Errorf("%s: body must contain a single JSON object", op)
	}
	return nil
}

// Validator общий валидатор структур запросов.
var Validator = validator.New()

// ValidationErrors возвращает ошибки валидатора, если err их содержит.
func ValidationErrors(err error) (validator.ValidationErrors, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

// HasTag сообщает, нарушено ли среди errs правило tag.
func HasTag(errs validator.ValidationErrors, tag string) bool {
	for _, e := range errs {
		if e.Tag() == tag {
			return true
		}
	}
	return false
}
