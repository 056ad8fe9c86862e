package sqlinline

const QInsertDonation = `--sql 3ffe0a5c-5c0f-46de-8d9b-31846a8de57d
insert into donations (
    id, campaign_id, user_id, amount, currency, type, method, is_anonymous,
    want_80g, pan, legal_name, address, order_id, pledge_id, event_id,
    donor_member_id, donor_name, country
)
values (
    $1::uuid, $2::uuid, $3::uuid, $4::bigint, $5::text, $6::text, $7::text, $8::boolean,
    $9::boolean, $10::text, $11::text, $12::text, $13::text, $14::uuid, $15::uuid,
    $16::uuid, $17::text, $18::text
)
returning status, created_at, updated_at;
`

const QInsertPaymentAttempt = `--sql d1a9b055-7932-48dc-a3cd-9fd9fe1cf0ee
insert into payment_attempts (donation_id, attempt_no, order_id, provider_payload)
values (
    $1::uuid,
    (select coalesce(max(attempt_no), 0) + 1 from payment_attempts where donation_id = $1::uuid),
    $2::text,
    coalesce($3::jsonb, '{}'::jsonb)
);
`

const QUpdatePaymentAttempt = `--sql 65173e5f-7894-40c8-bcef-1cf5b436a46a
update payment_attempts
set status = $3::text,
    provider_payload = provider_payload || coalesce($4::jsonb, '{}'::jsonb),
    updated_at = now()
where donation_id = $1::uuid and order_id = $2::text;
`

const QSelectDonationByID = `--sql b690e634-a059-418d-8d87-b2c2a3bc71da
select d.id::text, d.campaign_id::text, coalesce(c.title, ''), d.user_id::text, d.amount, d.currency,
       d.status, d.type, d.method, d.is_anonymous, d.want_80g, d.pan, d.legal_name, d.address,
       d.order_id, d.payment_ref, d.refunded_amount, d.refund_ref, d.pledge_id::text, d.event_id::text,
       d.donor_member_id::text, d.donor_name, d.country, coalesce(r.receipt_number, ''),
       d.created_at, d.updated_at
from donations d
left join campaigns c on c.id = d.campaign_id
left join receipts r on r.donation_id = d.id
where d.id = $1::uuid
limit 1;
`

const QSelectDonationForUpdate = `--sql eee2858f-3e52-45ff-8423-29f033133472
select d.id::text, d.campaign_id::text, coalesce(c.title, ''), d.user_id::text, d.amount, d.currency,
       d.status, d.type, d.method, d.is_anonymous, d.want_80g, d.pan, d.legal_name, d.address,
       d.order_id, d.payment_ref, d.refunded_amount, d.refund_ref, d.pledge_id::text, d.event_id::text,
       d.donor_member_id::text, d.donor_name, d.country, coalesce(r.receipt_number, ''),
       d.created_at, d.updated_at
from donations d
left join campaigns c on c.id = d.campaign_id
left join receipts r on r.donation_id = d.id
where d.id = $1::uuid
for update of d;
`

const QSelectDonationByOrderID = `--sql 224758e1-e4a6-4fa8-9ef7-8ec202dc5f41
select d.id::text, d.campaign_id::text, coalesce(c.title, ''), d.user_id::text, d.amount, d.currency,
       d.status, d.type, d.method, d.is_anonymous, d.want_80g, d.pan, d.legal_name, d.address,
       d.order_id, d.payment_ref, d.refunded_amount, d.refund_ref, d.pledge_id::text, d.event_id::text,
       d.donor_member_id::text, d.donor_name, d.country, coalesce(r.receipt_number, ''),
       d.created_at, d.updated_at
from donations d
left join campaigns c on c.id = d.campaign_id
left join receipts r on r.donation_id = d.id
where d.order_id = $1::text
limit 1;
`

const QListDonationsByUser = `--sql fb1d62bc-5c5b-44dd-b9a3-9cb4110eb737
select d.id::text, d.campaign_id::text, coalesce(c.title, ''), d.user_id::text, d.amount, d.currency,
       d.status, d.type, d.method, d.is_anonymous, d.want_80g, d.pan, d.legal_name, d.address,
       d.order_id, d.payment_ref, d.refunded_amount, d.refund_ref, d.pledge_id::text, d.event_id::text,
       d.donor_member_id::text, d.donor_name, d.country, coalesce(r.receipt_number, ''),
       d.created_at, d.updated_at
from donations d
left join campaigns c on c.id = d.campaign_id
left join receipts r on r.donation_id = d.id
where d.user_id = $1::uuid
  and ($2::text = '' or d.status = $2::text)
order by d.created_at desc
limit $3::int;
`

const QUpdateDonationStatus = `--sql 47b6aaab-4388-4c16-876e-6905335d8a08
update donations
set status = $3::text,
    payment_ref = case when $4::text <> '' then $4::text else payment_ref end,
    updated_at = now()
where id = $1::uuid and status = $2::text;
`

const QMarkDonationRefunded = `--sql d2db91f7-7a8d-4541-989d-0b515224e250
update donations
set status = 'refunded',
    refunded_amount = $2::bigint,
    refund_ref = $3::text,
    refund_claimed_at = null,
    updated_at = now()
where id = $1::uuid and status = 'success';
`

// QClaimDonationRefund takes the refund claim. A claim older than the lease
// in $2 is treated as abandoned.
const QClaimDonationRefund = `--sql 5c0e8f61-3b7a-4d2e-9f14-a8c6d2e7b395
update donations
set refund_claimed_at = now(),
    updated_at = now()
where id = $1::uuid
  and status = 'success'
  and (refund_claimed_at is null or refund_claimed_at < now() - make_interval(secs => $2::int));
`

const QReleaseDonationRefund = `--sql 9a47d2c3-e15b-4f86-b0d9-37e4c8a1f602
update donations
set refund_claimed_at = null,
    updated_at = now()
where id = $1::uuid and status = 'success';
`

const QInsertCampaignDonor = `--sql 111def7f-1a9e-4076-bdc5-7ca6299bd64d
insert into campaign_donors (campaign_id, user_id, first_donation_id)
values ($1::uuid, $2::uuid, $3::uuid)
on conflict (campaign_id, user_id) do nothing;
`

const QAddToCampaign = `--sql b55b9f00-7a51-41d2-9edc-ab76ce6e5822
update campaigns
set current_amount = current_amount + $2::bigint,
    donor_count = donor_count + case when $3::boolean then 1 else 0 end,
    updated_at = now()
where id = $1::uuid;
`

const QSubtractFromCampaign = `--sql 8e8aabb3-0ffe-4f43-b9fa-b7a11fd184c3
update campaigns
set current_amount = current_amount - $2::bigint,
    updated_at = now()
where id = $1::uuid;
`

const QMarkRegistrationPayment = `--sql fcdf12ea-a1d4-4e2f-a10b-23d969bc0bdf
update event_registrations
set payment_status = $2::text
where donation_id = $1::uuid;
`

const QAuditCampaigns = `--sql cf7c217d-cbe4-4931-bc5e-e1792339a299
select c.id::text,
       c.title,
       c.current_amount,
       coalesce((
           select sum(d.amount - d.refunded_amount)
           from donations d
           where d.campaign_id = c.id and d.status in ('success', 'refunded')
       ), 0)::bigint,
       c.donor_count,
       (
           select count(distinct d.user_id)
           from donations d
           where d.campaign_id = c.id and d.status in ('success', 'refunded')
       )::int
from campaigns c
where $1::text = '' or c.id = nullif($1::text, '')::uuid
order by c.created_at;
`

const QRepairCampaignTotals = `--sql 937ea8d6-a51f-4bae-afc9-8b94856e734c
update campaigns
set current_amount = $2::bigint,
    donor_count = $3::int,
    updated_at = now()
where id = $1::uuid;
`

const QBackfillCampaignDonors = `--sql 19f23bf6-fd62-4638-bd8f-d5f4906ae045
insert into campaign_donors (campaign_id, user_id, first_donation_id)
select distinct on (d.user_id) d.campaign_id, d.user_id, d.id
from donations d
where d.campaign_id = $1::uuid and d.status in ('success', 'refunded')
order by d.user_id, d.created_at
on conflict (campaign_id, user_id) do nothing;
`
