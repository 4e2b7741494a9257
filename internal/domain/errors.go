package domain

import (
	"errors"
	"strings"
)

var (
	// ErrCustomerNotFound возвращается, если клиент не найден в репозитории.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrCustomerEmailTaken сигнализирует, что e-mail уже зарегистрирован.
	ErrCustomerEmailTaken = errors.New("e-mail already in use")
	// ErrItemNotFound возвращается, если позиция меню не найдена.
	ErrItemNotFound = errors.New("item not found")
	// ErrItemNameTaken сигнализирует о дубликате названия позиции меню.
	ErrItemNameTaken = errors.New("item already exists")
	// ErrItemInUse: позиция меню используется в заказах и не может быть удалена.
	ErrItemInUse = errors.New("item is referenced by orders")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrItemsRequired: заказ должен содержать хотя бы одну позицию.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// ErrItemQtyInvalid: количество в позиции заказа должно быть больше нуля.
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// ErrItemValueInvalid: стоимость позиции не может быть отрицательной.
	ErrItemValueInvalid = errors.New("item value must be non-negative")
	// ErrTotalMismatch: сумма заказа не совпадает с суммой позиций.
	ErrTotalMismatch = errors.New("order total does not match items sum")
	// ErrTotalTooLarge: сумма заказа превышает MaxOrderTotal.
	ErrTotalTooLarge = errors.New("order total must be less than or equal to 9999999999.99")
	// ErrStatusNotAllowed: статус нельзя выставить через обновление заказа.
	ErrStatusNotAllowed = errors.New("status must be one of InPreparation, Finished")
	// ErrInvalidStatusTransition: переход между статусами не предусмотрен жизненным циклом.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	// ErrOutboxPublish: ошибка при работе с сообщением outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// Kind классифицирует ошибку для внешнего слоя (HTTP-статус).
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Issue описывает одно замечание валидации входных данных.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError агрегирует замечания валидации.
type ValidationError struct {
	Message string
	Issues  []Issue
}

// NewValidationError создаёт ошибку валидации с общим сообщением.
func NewValidationError(issues ...Issue) *ValidationError {
	return &ValidationError{Message: "Validation error!", Issues: issues}
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	return e.Message + " " + strings.Join(parts, "; ")
}

// KindOf определяет класс ошибки по цепочке errors.Is/As.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}

	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		return KindBadRequest
	case errors.Is(err, ErrItemsRequired),
		errors.Is(err, ErrItemQtyInvalid),
		errors.Is(err, ErrItemValueInvalid),
		errors.Is(err, ErrTotalMismatch),
		errors.Is(err, ErrTotalTooLarge),
		errors.Is(err, ErrStatusNotAllowed):
		return KindBadRequest
	case errors.Is(err, ErrCustomerNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrOrderNotFound):
		return KindNotFound
	case errors.Is(err, ErrCustomerEmailTaken),
		errors.Is(err, ErrItemNameTaken),
		errors.Is(err, ErrItemInUse),
		errors.Is(err, ErrInvalidStatusTransition):
		return KindConflict
	default:
		return KindInternal
	}
}
