package domain

// Customer: зарегистрированный клиент ресторана.
type Customer struct {
	// ID присваивается хранилищем при сохранении, до этого равен нулю.
	ID int64
	// CPF хранится как есть, формат не перепроверяется.
	CPF     string
	Name    string
	Email   string
	Address string
	Phone   string
}
