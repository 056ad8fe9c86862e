package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
	"github.com/weforyou/ledger/internal/sqlinline"
)

const donationHistoryLimit = 200

// refundClaimLease bounds how long a crashed refund blocks a retry.
const refundClaimLease = 15 * time.Minute

// LedgerRepositoryPG implements domain.LedgerRepository. Every write to
// donation status and campaign aggregates goes through WithinTx.
type LedgerRepositoryPG struct {
	db infra.DB
}

func NewLedgerRepository(db infra.DB) *LedgerRepositoryPG {
	return &LedgerRepositoryPG{db: db}
}

// WithinTx runs fn in one read-committed transaction. Row locks taken by
// LockDonation and LockPledge are held until fn returns.
func (r *LedgerRepositoryPG) WithinTx(ctx context.Context, fn func(domain.LedgerTx) error) error {
	return r.db.InTx(ctx, func(tx infra.SQLExecutor) error {
		return fn(&ledgerTx{sql: tx})
	})
}

func (r *LedgerRepositoryPG) GetDonation(ctx context.Context, id string) (*domain.Donation, error) {
	return scanDonation(r.db.QueryRow(ctx, sqlinline.QSelectDonationByID, id))
}

func (r *LedgerRepositoryPG) GetDonationByOrderID(ctx context.Context, orderID string) (*domain.Donation, error) {
	return scanDonation(r.db.QueryRow(ctx, sqlinline.QSelectDonationByOrderID, orderID))
}

// ListDonationsByUser returns the newest donations of a user, optionally
// filtered by status.
func (r *LedgerRepositoryPG) ListDonationsByUser(ctx context.Context, userID string, status domain.DonationStatus) ([]domain.Donation, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListDonationsByUser, userID, string(status), donationHistoryLimit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDonation)
}

// AuditCampaigns recomputes aggregates from settled donations. An empty
// campaignID audits every campaign.
func (r *LedgerRepositoryPG) AuditCampaigns(ctx context.Context, campaignID string) ([]domain.CampaignAudit, error) {
	rows, err := r.db.Query(ctx, sqlinline.QAuditCampaigns, campaignID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row rowScanner) (*domain.CampaignAudit, error) {
		var a domain.CampaignAudit
		if err := row.Scan(&a.CampaignID, &a.Title, &a.StoredAmount, &a.ComputedAmount, &a.StoredDonors, &a.ComputedDonors); err != nil {
			return nil, err
		}
		return &a, nil
	})
}

type ledgerTx struct {
	sql infra.SQLExecutor
}

func (t *ledgerTx) InsertDonation(ctx context.Context, id string, in domain.DonationIntent, orderID string) (*domain.Donation, error) {
	d := domain.Donation{
		ID:          id,
		CampaignID:  in.CampaignID,
		UserID:      in.UserID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Type:        in.Type,
		Method:      in.Method,
		IsAnonymous: in.IsAnonymous,
		Want80G:     in.Want80G,
		PAN:         in.PAN,
		LegalName:   in.LegalName,
		Address:     in.Address,
		OrderID:     orderID,
		PledgeID:    in.PledgeID,
		EventID:     in.EventID,
		MemberID:    in.MemberID,
		DonorName:   in.DonorName,
		Country:     in.Country,
	}
	row := t.sql.QueryRow(ctx, sqlinline.QInsertDonation,
		id,
		in.CampaignID,
		in.UserID,
		in.Amount.Paise(),
		in.Currency,
		string(in.Type),
		in.Method,
		in.IsAnonymous,
		in.Want80G,
		in.PAN,
		in.LegalName,
		in.Address,
		orderID,
		in.PledgeID,
		in.EventID,
		in.MemberID,
		in.DonorName,
		in.Country,
	)
	if err := row.Scan(&d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if infra.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: order already recorded", domain.ErrConflict)
		}
		return nil, err
	}
	return &d, nil
}

func (t *ledgerTx) InsertPaymentAttempt(ctx context.Context, donationID, orderID string, payload []byte) error {
	_, err := t.sql.Exec(ctx, sqlinline.QInsertPaymentAttempt, donationID, orderID, nullableJSON(payload))
	return err
}

func (t *ledgerTx) LockDonation(ctx context.Context, id string) (*domain.Donation, error) {
	return scanDonation(t.sql.QueryRow(ctx, sqlinline.QSelectDonationForUpdate, id))
}

// UpdateDonationStatus is a compare-and-set on the current status.
func (t *ledgerTx) UpdateDonationStatus(ctx context.Context, id string, from, to domain.DonationStatus, paymentRef string) error {
	tag, err := t.sql.Exec(ctx, sqlinline.QUpdateDonationStatus, id, string(from), string(to), paymentRef)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: donation %s is no longer %s", domain.ErrConflict, id, from)
	}
	return nil
}

func (t *ledgerTx) UpdatePaymentAttempt(ctx context.Context, donationID, orderID, status string, payload []byte) error {
	_, err := t.sql.Exec(ctx, sqlinline.QUpdatePaymentAttempt, donationID, orderID, status, nullableJSON(payload))
	return err
}

// AddCampaignDonor reports whether userID is a first-time donor of the campaign.
func (t *ledgerTx) AddCampaignDonor(ctx context.Context, campaignID, userID, donationID string) (bool, error) {
	tag, err := t.sql.Exec(ctx, sqlinline.QInsertCampaignDonor, campaignID, userID, donationID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (t *ledgerTx) AddToCampaign(ctx context.Context, campaignID string, amount domain.Money, newDonor bool) error {
	tag, err := t.sql.Exec(ctx, sqlinline.QAddToCampaign, campaignID, amount.Paise(), newDonor)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *ledgerTx) SubtractFromCampaign(ctx context.Context, campaignID string, amount domain.Money) error {
	tag, err := t.sql.Exec(ctx, sqlinline.QSubtractFromCampaign, campaignID, amount.Paise())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimRefund marks a settled donation as having a refund in flight. A
// second claim within the lease is a conflict.
func (t *ledgerTx) ClaimRefund(ctx context.Context, id string) error {
	tag, err := t.sql.Exec(ctx, sqlinline.QClaimDonationRefund, id, int(refundClaimLease/time.Second))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: a refund is already in progress", domain.ErrConflict)
	}
	return nil
}

func (t *ledgerTx) ReleaseRefund(ctx context.Context, id string) error {
	_, err := t.sql.Exec(ctx, sqlinline.QReleaseDonationRefund, id)
	return err
}

func (t *ledgerTx) MarkRefunded(ctx context.Context, id string, amount domain.Money, refundRef string) error {
	tag, err := t.sql.Exec(ctx, sqlinline.QMarkDonationRefunded, id, amount.Paise(), refundRef)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: only successful donations can be refunded", domain.ErrConflict)
	}
	return nil
}

func (t *ledgerTx) NextReceiptSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := t.sql.QueryRow(ctx, sqlinline.QNextReceiptSequence).Scan(&seq)
	return seq, err
}

// InsertReceipt stores the snapshot once per donation. A second call returns
// the receipt issued first.
func (t *ledgerTx) InsertReceipt(ctx context.Context, r domain.Receipt) (*domain.Receipt, error) {
	row := t.sql.QueryRow(ctx, sqlinline.QInsertReceipt,
		r.DonationID,
		r.Number,
		r.FinancialYear,
		r.Section80G,
		r.DonorName,
		r.PAN,
		r.Address,
		r.Amount.Paise(),
		r.Currency,
		r.CampaignTitle,
		r.PaymentRef,
		r.IssuedAt,
	)
	if err := row.Scan(&r.ID); err != nil {
		if infra.IsNoRows(err) {
			return scanReceipt(t.sql.QueryRow(ctx, sqlinline.QSelectReceiptByDonation, r.DonationID))
		}
		return nil, err
	}
	return &r, nil
}

func (t *ledgerTx) LockPledge(ctx context.Context, id string) (*domain.Pledge, error) {
	return scanPledge(t.sql.QueryRow(ctx, sqlinline.QSelectPledgeForUpdate, id))
}

func (t *ledgerTx) RecordPledgeCharge(ctx context.Context, id string, chargedAt, next time.Time) error {
	_, err := t.sql.Exec(ctx, sqlinline.QRecordPledgeCharge, id, next, chargedAt)
	return err
}

func (t *ledgerTx) MarkRegistrationPayment(ctx context.Context, donationID, status string) error {
	_, err := t.sql.Exec(ctx, sqlinline.QMarkRegistrationPayment, donationID, status)
	return err
}

// RepairCampaign overwrites stored aggregates with the recomputed values and
// backfills the distinct-donor set they are derived from.
func (t *ledgerTx) RepairCampaign(ctx context.Context, audit domain.CampaignAudit) error {
	if _, err := t.sql.Exec(ctx, sqlinline.QRepairCampaignTotals, audit.CampaignID, audit.ComputedAmount.Paise(), audit.ComputedDonors); err != nil {
		return err
	}
	_, err := t.sql.Exec(ctx, sqlinline.QBackfillCampaignDonors, audit.CampaignID)
	return err
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

var (
	_ domain.LedgerRepository = (*LedgerRepositoryPG)(nil)
	_ domain.LedgerTx         = (*ledgerTx)(nil)
)
