package api

import (
	"net/http"

	"rfidledger/m/internal/ledger"
)

// Transport-level failures that never reach the ledger.
const (
	kindPayloadTooLarge ledger.Kind = "PAYLOAD_TOO_LARGE"
	kindInvalidJSON     ledger.Kind = "INVALID_JSON"
	kindInternal        ledger.Kind = "INTERNAL_ERROR"
)

func statusForKind(kind ledger.Kind) int {
	switch kind {
	case ledger.KindInvalidRequest, ledger.KindInvalidMode, ledger.KindInvalidQty:
		return http.StatusBadRequest
	case ledger.KindBadgeScan:
		return http.StatusForbidden
	case ledger.KindUnknownItem, ledger.KindUnknownLocation, ledger.KindCardNotMapped:
		return http.StatusNotFound
	case ledger.KindFoodOnlyOut, ledger.KindTrashOnlyIn, ledger.KindInsufficientStock:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
