package sqlinline

const QInsertPledge = `--sql dd3b5518-6ce0-48f5-9837-1ce4eb28fdc3
insert into pledges (user_id, campaign_id, amount, currency, frequency, next_charge_at)
values ($1::uuid, $2::uuid, $3::bigint, $4::text, $5::text, $6::timestamptz)
returning id::text, status, version, created_at, updated_at;
`

const QSelectPledgeByID = `--sql 94e60fa1-3a1e-4075-ac7b-305ee4938d53
select p.id::text, p.user_id::text, p.campaign_id::text, coalesce(c.title, ''), p.amount, p.currency,
       p.frequency, p.status, p.next_charge_at, p.version, p.last_charge_at, p.failed_charges,
       p.last_failure_at, p.last_failure, p.created_at, p.updated_at
from pledges p
left join campaigns c on c.id = p.campaign_id
where p.id = $1::uuid
limit 1;
`

const QSelectPledgeForUpdate = `--sql d9bf7859-b18c-4f3c-b04a-5d01463047a4
select p.id::text, p.user_id::text, p.campaign_id::text, coalesce(c.title, ''), p.amount, p.currency,
       p.frequency, p.status, p.next_charge_at, p.version, p.last_charge_at, p.failed_charges,
       p.last_failure_at, p.last_failure, p.created_at, p.updated_at
from pledges p
left join campaigns c on c.id = p.campaign_id
where p.id = $1::uuid
for update of p;
`

const QListPledgesByUser = `--sql df18ff0a-fd51-409c-8cf3-11cc39a9e5a6
select p.id::text, p.user_id::text, p.campaign_id::text, coalesce(c.title, ''), p.amount, p.currency,
       p.frequency, p.status, p.next_charge_at, p.version, p.last_charge_at, p.failed_charges,
       p.last_failure_at, p.last_failure, p.created_at, p.updated_at
from pledges p
left join campaigns c on c.id = p.campaign_id
where p.user_id = $1::uuid
order by p.created_at desc;
`

// QTransitionPledge only matches when both status and version are unchanged
// since the caller read the row.
const QTransitionPledge = `--sql e2b0f782-662a-41c2-b212-016753297a03
with updated as (
    update pledges
    set status = $4::text,
        next_charge_at = coalesce($5::timestamptz, next_charge_at),
        version = version + 1,
        updated_at = now()
    where id = $1::uuid and status = $2::text and version = $3::int
    returning *
)
select u.id::text, u.user_id::text, u.campaign_id::text, coalesce(c.title, ''), u.amount, u.currency,
       u.frequency, u.status, u.next_charge_at, u.version, u.last_charge_at, u.failed_charges,
       u.last_failure_at, u.last_failure, u.created_at, u.updated_at
from updated u
left join campaigns c on c.id = u.campaign_id;
`

const QClaimDuePledges = `--sql 2c55e197-dddf-4bd8-b132-4056454c49ca
with due as (
    select p.id
    from pledges p
    where p.status = 'active'
      and p.next_charge_at <= $1::timestamptz
      and (p.claimed_until is null or p.claimed_until < $1::timestamptz)
      and (p.last_failure_at is null or p.last_failure_at < $2::timestamptz)
      and not exists (
          select 1 from donations d
          where d.pledge_id = p.id and d.status = 'pending' and d.created_at > $2::timestamptz
      )
    order by p.next_charge_at
    limit $4::int
    for update of p skip locked
), claimed as (
    update pledges
    set claimed_until = $1::timestamptz + $3::interval
    where id in (select id from due)
    returning *
)
select u.id::text, u.user_id::text, u.campaign_id::text, coalesce(c.title, ''), u.amount, u.currency,
       u.frequency, u.status, u.next_charge_at, u.version, u.last_charge_at, u.failed_charges,
       u.last_failure_at, u.last_failure, u.created_at, u.updated_at
from claimed u
left join campaigns c on c.id = u.campaign_id
order by u.next_charge_at;
`

const QRecordPledgeCharge = `--sql 49c38caa-978c-4c1f-8a85-54c852b2da32
update pledges
set next_charge_at = $2::timestamptz,
    last_charge_at = $3::timestamptz,
    claimed_until = null,
    version = version + 1,
    updated_at = now()
where id = $1::uuid;
`

const QRecordPledgeFailure = `--sql 1eb91ce3-ed46-4164-9e16-a92e4b0fb73a
update pledges
set failed_charges = failed_charges + 1,
    last_failure_at = $2::timestamptz,
    last_failure = $3::text,
    claimed_until = null,
    updated_at = now()
where id = $1::uuid;
`
