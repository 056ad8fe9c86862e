package sqlinline

const QSelectSiteSettings = `--sql 8bf09910-981e-4b73-bd71-d94d371b9bf8
select data, coalesce(updated_by::text, ''), updated_at
from site_settings
where id = 1;
`

const QUpsertSiteSettings = `--sql d7729ccb-49c1-4257-87ca-b27518a701b6
insert into site_settings (id, data, updated_by, updated_at)
values (1, $1::jsonb, nullif($2::text, '')::uuid, now())
on conflict (id) do update set
    data = excluded.data,
    updated_by = excluded.updated_by,
    updated_at = now()
returning updated_at;
`
