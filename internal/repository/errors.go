package repository

import (
	"fmt"

	"github.com/Domenick1991/airreserve/internal/domain"
)

// storeErr marks err as a store failure and keeps the driver error in the chain.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
}
