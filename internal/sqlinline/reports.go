package sqlinline

const QPublicStats = `--sql 99e40dca-01ad-4491-831b-70e656287bc2
select
    coalesce((select sum(amount - refunded_amount) from donations where status in ('success', 'refunded')), 0)::bigint,
    (select count(*) from donations where status = 'success')::int,
    (select count(distinct user_id) from donations where status in ('success', 'refunded'))::int,
    (select count(*) from campaigns where status = 'active')::int,
    (select count(*) from blood_donors where consent_public and not moderation_hidden)::int,
    (select count(*) from events where status = 'LIVE' and schedule_start > now())::int,
    (select count(*) from pledges where status = 'active')::int;
`

const QExportUsers = `--sql 85ee4151-cd84-4fb8-a73c-bd2125c58510
select id::text, email, full_name, phone, array_to_string(roles, ','), is_active, created_at
from users
order by created_at;
`

const QExportVolunteers = `--sql 3d39bb42-fc13-4497-9661-5255728dd8c1
select id::text, email, full_name, phone, is_active, created_at
from users
where 'volunteer' = any(roles)
order by created_at;
`

const QExportTransactions = `--sql 585e115b-d4e9-40f8-9952-4ab736b7a3c4
select d.id::text,
       coalesce(d.campaign_id::text, ''),
       coalesce(c.title, ''),
       u.email,
       (d.amount / 100.0)::numeric(14, 2)::text,
       (d.refunded_amount / 100.0)::numeric(14, 2)::text,
       d.currency,
       d.status,
       d.type,
       d.order_id,
       d.payment_ref,
       d.created_at
from donations d
join users u on u.id = d.user_id
left join campaigns c on c.id = d.campaign_id
order by d.created_at;
`

const QExportCampaigns = `--sql 60f202b5-f021-4c4c-9a9e-67f587991805
select id::text,
       title,
       (goal_amount / 100.0)::numeric(14, 2)::text,
       (current_amount / 100.0)::numeric(14, 2)::text,
       donor_count,
       status,
       created_at
from campaigns
order by created_at;
`

const QExportBloodDonors = `--sql aa4aa2e0-7019-4411-8c0f-79e03d467b1f
select id::text,
       full_name,
       blood_group,
       city,
       state,
       district,
       case when length(phone) <= 5 then repeat('*', length(phone))
            else left(phone, 3) || '***' || right(phone, 2) end,
       availability,
       consent_public,
       moderation_hidden,
       contact_reveal_count,
       created_at
from blood_donors
order by created_at;
`
