package sqlinline

const QInsertMember = `--sql d65f4dc0-4af9-4753-94c3-8238c5140fa7
insert into members (full_name, phone, email, blood_group, pan, address, city, state, district, consent_public, created_by)
values ($1::text, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::text, $9::text, $10::boolean, $11::uuid)
returning id::text, full_name, phone, email, blood_group, pan, address, city, state, district,
          consent_public, created_by::text, created_at, updated_at;
`

const QSelectMemberByID = `--sql 73beceec-aedf-4023-8d99-87bd7451735b
select id::text, full_name, phone, email, blood_group, pan, address, city, state, district,
       consent_public, created_by::text, created_at, updated_at
from members
where id = $1::uuid
limit 1;
`

const QListMembersByCreator = `--sql c080f7f3-29cf-46a0-bb83-4c6fe678c7bd
select id::text, full_name, phone, email, blood_group, pan, address, city, state, district,
       consent_public, created_by::text, created_at, updated_at
from members
where created_by = $1::uuid
order by created_at desc;
`

const QUpdateMember = `--sql 11d2cf81-c741-443d-997e-6483dcf26a20
update members
set full_name = $2::text,
    phone = $3::text,
    email = $4::text,
    blood_group = $5::text,
    pan = $6::text,
    address = $7::text,
    city = $8::text,
    state = $9::text,
    district = $10::text,
    consent_public = $11::boolean,
    updated_at = now()
where id = $1::uuid
returning id::text, full_name, phone, email, blood_group, pan, address, city, state, district,
          consent_public, created_by::text, created_at, updated_at;
`
