package credits

import "errors"

// ErrInsufficientCredits indicates the balance cannot cover the requested debit.
var ErrInsufficientCredits = errors.New("insufficient credits")
