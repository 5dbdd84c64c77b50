package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/domain"
)

var validate = validator.New()

// Bind decodes the request body into dst and validates it. Failures come
// back as EINVALID domain errors with a user-facing message.
func Bind(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Invalid("handler.bind", "Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fe.Field()
			}
			return domain.Invalid("handler.bind",
				fmt.Sprintf("Invalid or missing fields: %s", strings.Join(fields, ", ")))
		}
		return domain.Invalid("handler.bind", "Invalid request body")
	}
	return nil
}

// PathUUID parses the named path parameter as a UUID.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.Invalid("handler.path", fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}
