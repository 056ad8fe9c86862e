package repo

import (
	"github.com/jackc/pgx/v5"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func notFound(err error) error {
	if infra.IsNoRows(err) {
		return domain.ErrNotFound
	}
	return err
}

// collect drains rows through scan and closes them.
func collect[T any](rows pgx.Rows, scan func(rowScanner) (*T, error)) ([]T, error) {
	defer rows.Close()
	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u     domain.User
		roles []string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.PasswordHash, &roles, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	u.Roles = domain.ParseRoles(roles)
	return &u, nil
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var c domain.Campaign
	if err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.GoalAmount, &c.CurrentAmount, &c.DonorCount, &c.AllowRecurring,
		&c.ImageURL, &c.Currency, &c.Status, &c.EndDate, &c.CreatedBy, &c.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func scanDonation(row rowScanner) (*domain.Donation, error) {
	var d domain.Donation
	if err := row.Scan(
		&d.ID, &d.CampaignID, &d.CampaignTitle, &d.UserID, &d.Amount, &d.Currency,
		&d.Status, &d.Type, &d.Method, &d.IsAnonymous, &d.Want80G, &d.PAN, &d.LegalName, &d.Address,
		&d.OrderID, &d.PaymentRef, &d.RefundedAmount, &d.RefundRef, &d.PledgeID, &d.EventID,
		&d.MemberID, &d.DonorName, &d.Country, &d.ReceiptNumber,
		&d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func scanPledge(row rowScanner) (*domain.Pledge, error) {
	var p domain.Pledge
	if err := row.Scan(
		&p.ID, &p.UserID, &p.CampaignID, &p.CampaignTitle, &p.Amount, &p.Currency,
		&p.Frequency, &p.Status, &p.NextChargeAt, &p.Version, &p.LastChargeAt, &p.FailedCharges,
		&p.LastFailureAt, &p.LastFailure, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func scanReceipt(row rowScanner) (*domain.Receipt, error) {
	var r domain.Receipt
	if err := row.Scan(
		&r.ID, &r.DonationID, &r.Number, &r.FinancialYear, &r.Section80G, &r.DonorName, &r.PAN,
		&r.Address, &r.Amount, &r.Currency, &r.CampaignTitle, &r.PaymentRef, &r.StorageKey, &r.IssuedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func scanBloodDonor(row rowScanner) (*domain.BloodDonor, error) {
	var d domain.BloodDonor
	if err := row.Scan(
		&d.ID, &d.UserID, &d.MemberID, &d.FullName, &d.BloodGroup, &d.Age, &d.Weight,
		&d.City, &d.State, &d.District, &d.Phone, &d.Email, &d.Availability, &d.LastDonationDate, &d.ConsentPublic,
		&d.ConsentPublicAt, &d.ModerationHidden, &d.ContactRevealCount, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.ScheduleStart, &e.ScheduleEnd, &e.Venue, &e.Capacity, &e.FeeEnabled,
		&e.FeeAmount, &e.ImageURL, &e.Status, &e.RegisteredCount, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func scanRegistration(row rowScanner) (*domain.EventRegistration, error) {
	var r domain.EventRegistration
	if err := row.Scan(&r.ID, &r.EventID, &r.UserID, &r.PaymentRequired, &r.PaymentStatus, &r.DonationID, &r.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func scanMember(row rowScanner) (*domain.Member, error) {
	var m domain.Member
	if err := row.Scan(
		&m.ID, &m.FullName, &m.Phone, &m.Email, &m.BloodGroup, &m.PAN, &m.Address, &m.City, &m.State, &m.District,
		&m.ConsentPublic, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}
