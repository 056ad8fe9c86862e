package sqlinline

const QInsertBloodDonor = `--sql 87caaaff-b584-4dd4-9cb3-02bed88d3817
insert into blood_donors (
    user_id, member_id, full_name, blood_group, age, weight, city, state, district,
    phone, email, availability, last_donation_date, consent_public, consent_public_at, created_by
)
values (
    nullif($1::text, '')::uuid, $2::uuid, $3::text, $4::text, $5::int, $6::int, $7::text, $8::text, $9::text,
    $10::text, $11::text, $12::boolean, $13::date, $14::boolean, $15::timestamptz, $16::uuid
)
returning id::text, coalesce(user_id::text, ''), member_id::text, full_name, blood_group, age, weight,
          city, state, district, phone, email, availability, last_donation_date, consent_public,
          consent_public_at, moderation_hidden, contact_reveal_count, created_by::text, created_at, updated_at;
`

const QSelectBloodDonorByID = `--sql dc56ca5e-a22c-48b4-ba64-ac9500f44bd5
select id::text, coalesce(user_id::text, ''), member_id::text, full_name, blood_group, age, weight,
       city, state, district, phone, email, availability, last_donation_date, consent_public,
       consent_public_at, moderation_hidden, contact_reveal_count, created_by::text, created_at, updated_at
from blood_donors
where id = $1::uuid
limit 1;
`

const QSearchBloodDonors = `--sql ccca8b30-b5b4-4a5e-b81f-4d6de70d57cb
select id::text, coalesce(user_id::text, ''), member_id::text, full_name, blood_group, age, weight,
       city, state, district, phone, email, availability, last_donation_date, consent_public,
       consent_public_at, moderation_hidden, contact_reveal_count, created_by::text, created_at, updated_at
from blood_donors
where blood_group = $1::text
  and consent_public
  and not moderation_hidden
  and ($2::text = '' or lower(state) = lower($2::text))
  and ($3::text = '' or lower(district) = lower($3::text))
  and (not $4::boolean or availability)
order by availability desc, updated_at desc
limit $5::int;
`

const QUpdateBloodDonorConsent = `--sql 6cfa1557-0450-4219-b92b-b186edb7f004
update blood_donors
set consent_public = $2::boolean,
    consent_public_at = case when $2::boolean then $3::timestamptz else null end,
    updated_at = now()
where id = $1::uuid
returning id::text, coalesce(user_id::text, ''), member_id::text, full_name, blood_group, age, weight,
          city, state, district, phone, email, availability, last_donation_date, consent_public,
          consent_public_at, moderation_hidden, contact_reveal_count, created_by::text, created_at, updated_at;
`

const QUpdateBloodDonorHidden = `--sql ac053d44-9537-43ec-a924-d90c152be657
update blood_donors
set moderation_hidden = $2::boolean,
    updated_at = now()
where id = $1::uuid;
`

// QIncrementRevealCounter returns no row once the caller already used up
// the limit for the day.
const QIncrementRevealCounter = `--sql 52afd0bb-bf8b-49f7-bd60-6cea3fc44cd6
insert into contact_reveal_counters (user_id, day, count)
values ($1::uuid, $2::date, 1)
on conflict (user_id, day) do update
    set count = contact_reveal_counters.count + 1
    where contact_reveal_counters.count < $3::int
returning count;
`

const QInsertContactReveal = `--sql 98babbbc-d609-4af5-a110-e12ba56534c2
insert into contact_reveals (user_id, donor_id, day)
values ($1::uuid, $2::uuid, $3::date);
`

const QIncrementDonorRevealCount = `--sql f9d0ed76-d2b8-4809-829e-552d5ba9f631
update blood_donors
set contact_reveal_count = contact_reveal_count + 1
where id = $1::uuid;
`
