package errors

import "errors"

var ErrSlotNotFound = errors.New("blocked slot not found")
