package sqlinline

const QInsertEvent = `--sql 9bc4e046-c661-4ecd-bd7f-1e980e9ed186
insert into events (title, description, schedule_start, schedule_end, venue, capacity,
                    fee_enabled, fee_amount, image_url, status, created_by)
values ($1::text, $2::text, $3::timestamptz, $4::timestamptz, $5::text, $6::int,
        $7::boolean, $8::bigint, $9::text, $10::text, nullif($11::text, '')::uuid)
returning id::text, title, description, schedule_start, schedule_end, venue, capacity, fee_enabled,
          fee_amount, image_url, status, registered_count, coalesce(created_by::text, ''), created_at, updated_at;
`

const QUpdateEvent = `--sql 17a3b17a-e852-4bbd-bf02-4ba3c807e179
update events
set title = $2::text,
    description = $3::text,
    schedule_start = $4::timestamptz,
    schedule_end = $5::timestamptz,
    venue = $6::text,
    capacity = $7::int,
    fee_enabled = $8::boolean,
    fee_amount = $9::bigint,
    image_url = $10::text,
    status = $11::text,
    updated_at = now()
where id = $1::uuid
returning id::text, title, description, schedule_start, schedule_end, venue, capacity, fee_enabled,
          fee_amount, image_url, status, registered_count, coalesce(created_by::text, ''), created_at, updated_at;
`

const QArchiveEvent = `--sql 0e540327-2238-4ec6-803f-c9c660ef2f4f
update events
set status = 'ARCHIVED', updated_at = now()
where id = $1::uuid;
`

const QSelectEventByID = `--sql 75c0ef9f-9cbd-4dfc-ae05-66f598e53488
select id::text, title, description, schedule_start, schedule_end, venue, capacity, fee_enabled,
       fee_amount, image_url, status, registered_count, coalesce(created_by::text, ''), created_at, updated_at
from events
where id = $1::uuid
limit 1;
`

const QSelectEventForUpdate = `--sql 0661dfd4-7a85-4830-bb37-ab445b839c45
select id::text, title, description, schedule_start, schedule_end, venue, capacity, fee_enabled,
       fee_amount, image_url, status, registered_count, coalesce(created_by::text, ''), created_at, updated_at
from events
where id = $1::uuid
for update;
`

const QListEvents = `--sql 26477e12-b596-497b-ae1c-78f0ddb66ff0
select id::text, title, description, schedule_start, schedule_end, venue, capacity, fee_enabled,
       fee_amount, image_url, status, registered_count, coalesce(created_by::text, ''), created_at, updated_at
from events
where ($1::text = '' and status <> 'ARCHIVED') or status = $1::text
order by schedule_start;
`

const QSelectRegistration = `--sql d11689a8-9dbf-4b99-8386-2013b0c10b8d
select id::text, event_id::text, user_id::text, payment_required, payment_status, donation_id::text, created_at
from event_registrations
where event_id = $1::uuid and user_id = $2::uuid
limit 1;
`

const QInsertRegistration = `--sql 15813862-a2bb-40a2-8cfc-185ff312a0bb
insert into event_registrations (event_id, user_id, payment_required, payment_status, donation_id)
values ($1::uuid, $2::uuid, $3::boolean, $4::text, $5::uuid)
returning id::text, created_at;
`

const QIncrementEventRegistered = `--sql 7172af07-2cf2-4863-92ca-a890a2dbeea3
update events
set registered_count = registered_count + 1, updated_at = now()
where id = $1::uuid;
`
