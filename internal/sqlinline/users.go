package sqlinline

const QInsertUser = `--sql 34547064-09e0-40e3-aca9-bb622618be1b
insert into users (email, full_name, phone, password_hash, roles)
values (lower($1::text), $2::text, $3::text, $4::text, $5::text[])
returning id::text, email, full_name, phone, password_hash, roles, is_active, created_at;
`

const QSelectUserByID = `--sql 994af559-c482-4298-8da8-b773da54705e
select id::text, email, full_name, phone, password_hash, roles, is_active, created_at
from users
where id = $1::uuid
limit 1;
`

const QSelectUserByEmail = `--sql 3ae612ba-2fb3-4a4a-b19d-fb8dc25e86b7
select id::text, email, full_name, phone, password_hash, roles, is_active, created_at
from users
where email = lower($1::text)
limit 1;
`

const QUpdateUserRoles = `--sql 3a0bd1fd-815e-46ea-9fe7-0d55f675274c
update users
set roles = $2::text[], updated_at = now()
where email = lower($1::text)
returning id::text, email, full_name, phone, password_hash, roles, is_active, created_at;
`
