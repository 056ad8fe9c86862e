package repo

import (
	"context"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/sqlinline"
)

// ReceiptRepositoryPG reads receipts issued during settlement.
type ReceiptRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewReceiptRepository(sql infra.SQLExecutor) *ReceiptRepositoryPG {
	return &ReceiptRepositoryPG{sql: sql}
}

func (r *ReceiptRepositoryPG) GetByDonationID(ctx context.Context, donationID string) (*domain.Receipt, error) {
	return scanReceipt(r.sql.QueryRow(ctx, sqlinline.QSelectReceiptByDonation, donationID))
}

func (r *ReceiptRepositoryPG) SetStorageKey(ctx context.Context, donationID, key string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpdateReceiptStorageKey, donationID, key)
	return err
}

var _ domain.ReceiptRepository = (*ReceiptRepositoryPG)(nil)
