package sqlinline

const QInsertAuditLog = `--sql 3bf80832-f471-4b15-b4f6-dd22c6184301
insert into audit_logs (event, subject_id, actor_id, details)
values ($1::text, $2::text, nullif($3::text, '')::uuid, coalesce($4::jsonb, '{}'::jsonb));
`
