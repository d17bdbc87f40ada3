package store

import "errors"

// ErrQuotaNotFound reports an origin without a quota record.
var ErrQuotaNotFound = errors.New("quota not found")

type originCount struct {
	Origin   string
	Reserved int64
}
