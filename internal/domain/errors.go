package domain

import "errors"

var (
	ErrEmptyCart           = errors.New("cart has no lines")
	ErrInvalidPhone        = errors.New("invalid jordanian phone number")
	ErrIncorrectAdminPin   = errors.New("incorrect admin pin")
	ErrPinRequired         = errors.New("admin pin required")
	ErrOrderNotFound       = errors.New("order not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrInvalidStatus       = errors.New("invalid order status")
)
