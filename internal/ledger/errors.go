package ledger

import (
	"errors"
	"fmt"
)

// Kind identifies a failure reported to API callers.
type Kind string

const (
	KindInvalidRequest    Kind = "INVALID_REQUEST"
	KindInvalidMode       Kind = "INVALID_MODE"
	KindInvalidQty        Kind = "INVALID_QTY"
	KindBadgeScan         Kind = "BADGE_SCAN"
	KindFoodOnlyOut       Kind = "FOOD_ONLY_OUT"
	KindTrashOnlyIn       Kind = "TRASH_ONLY_IN"
	KindUnknownLocation   Kind = "UNKNOWN_LOCATION"
	KindUnknownItem       Kind = "UNKNOWN_ITEM"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindCardNotMapped     Kind = "CARD_NOT_MAPPED"
	KindBadItemMapping    Kind = "BAD_ITEM_MAPPING"
)

// Error is a terminal, caller-visible ledger failure. No state has been
// mutated when one is returned.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a ledger error, or "" for anything else.
func KindOf(err error) Kind {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	return ""
}
