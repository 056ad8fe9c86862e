package sqlinline

const QSelectIntegrationToken = `--sql 4c36c597-2a93-43e4-b0c1-5fd73fa8d9ed
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 4a861d7a-8406-414f-bf6f-e84d8f51d0bc
insert into integration_tokens (provider, token, properties)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb))
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
