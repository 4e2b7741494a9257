package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
)

// maxBodyBytes ограничивает тело запроса; изображения приходят в base64.
const maxBodyBytes = 8 << 20

const (
	msgRequired      = "Required"
	msgInvalidNumber = "Invalid number format"
	msgInvalidBase64 = "Invalid base64 format"
	msgAtLeastOne    = "At least one is required"
	msgNonNegative   = "Must be greater than or equal to 0"
	msgPositive      = "Must be greater than 0"
	msgNonEmptyArray = "Array must contain at least 1 element(s)"
	msgInvalidJSON   = "Invalid JSON body"
	msgBodyTooLarge  = "Request body is too large"
	msgTooPrecise    = "Must have at most 2 decimal places"
	msgTooLarge      = "Must be less than or equal to 99999999.99"
	fieldBody        = "body"
	fieldID          = "id"
)

// issues накапливает замечания валидации одного запроса.
type issues []domain.Issue

func (is *issues) add(field, message string) {
	*is = append(*is, domain.Issue{Field: field, Message: message})
}

func (is issues) err() error {
	if len(is) == 0 {
		return nil
	}
	return domain.NewValidationError(is...)
}

// decodeBody читает JSON-тело в dst; синтаксические ошибки и несовпадение типов становятся ValidationError.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var (
			typeErr   *json.UnmarshalTypeError
			syntaxErr *json.SyntaxError
			maxErr    *http.MaxBytesError
		)
		switch {
		case errors.As(err, &typeErr):
			field := typeErr.Field
			if field == "" {
				field = fieldBody
			}
			return domain.NewValidationError(domain.Issue{
				Field:   field,
				Message: fmt.Sprintf("Expected %s, received %s", jsonKind(typeErr.Type.Kind().String()), typeErr.Value),
			})
		case errors.As(err, &maxErr):
			return domain.NewValidationError(domain.Issue{Field: fieldBody, Message: msgBodyTooLarge})
		case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return domain.NewValidationError(domain.Issue{Field: fieldBody, Message: msgInvalidJSON})
		default:
			return domain.NewValidationError(domain.Issue{Field: fieldBody, Message: err.Error()})
		}
	}
	return nil
}

func jsonKind(goKind string) string {
	switch {
	case strings.HasPrefix(goKind, "int"), strings.HasPrefix(goKind, "uint"), strings.HasPrefix(goKind, "float"):
		return "number"
	case goKind == "slice", goKind == "array":
		return "array"
	case goKind == "struct", goKind == "map":
		return "object"
	case goKind == "bool":
		return "boolean"
	default:
		return goKind
	}
}

// pathID разбирает {id} из пути; ожидается положительное целое.
func pathID(r *http.Request) (int64, error) {
	id, ok := parsePositiveInt(r.PathValue(fieldID))
	if !ok {
		return 0, domain.NewValidationError(domain.Issue{Field: fieldID, Message: msgInvalidNumber})
	}
	return id, nil
}

func parsePositiveInt(raw string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func requireString(is *issues, field string, v *string) string {
	if v == nil {
		is.add(field, msgRequired)
		return ""
	}
	return *v
}

func parseCategory(is *issues, field, raw string) domain.ItemCategory {
	category := domain.ItemCategory(raw)
	if !category.Valid() {
		is.add(field, "Invalid enum value. Expected "+joinQuoted(domain.ItemCategories()))
	}
	return category
}

func parseValue(is *issues, field string, raw json.Number) decimal.Decimal {
	value, err := decimal.NewFromString(raw.String())
	if err != nil {
		is.add(field, msgInvalidNumber)
		return decimal.Zero
	}
	switch {
	case value.IsNegative():
		is.add(field, msgNonNegative)
	case value.GreaterThan(domain.MaxItemValue):
		is.add(field, msgTooLarge)
	case !value.Equal(value.Truncate(domain.ValueScale)):
		is.add(field, msgTooPrecise)
	}
	return value
}

func parseImage(is *issues, field, raw string) []byte {
	image, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		is.add(field, msgInvalidBase64)
		return nil
	}
	return image
}

func joinQuoted[T ~string](values []T) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + string(v) + "'"
	}
	return strings.Join(quoted, " | ")
}
