package sqlinline

const QInsertCampaign = `--sql 5e160235-f7f7-4bd6-ab2e-3f71aee3ede1
insert into campaigns (title, description, goal_amount, allow_recurring, image_url, currency, end_date, created_by)
values ($1::text, $2::text, $3::bigint, $4::boolean, $5::text, $6::text, $7::timestamptz, nullif($8::text, '')::uuid)
returning id::text, title, description, goal_amount, current_amount, donor_count, allow_recurring,
          image_url, currency, status, end_date, coalesce(created_by::text, ''), created_at;
`

const QSelectCampaignByID = `--sql 26ba9c1c-6c86-4d14-bf07-44159fcf0cad
select id::text, title, description, goal_amount, current_amount, donor_count, allow_recurring,
       image_url, currency, status, end_date, coalesce(created_by::text, ''), created_at
from campaigns
where id = $1::uuid
limit 1;
`

const QListCampaigns = `--sql 3a52d868-25cc-4862-89d9-9d00d78054ee
select id::text, title, description, goal_amount, current_amount, donor_count, allow_recurring,
       image_url, currency, status, end_date, coalesce(created_by::text, ''), created_at
from campaigns
where $1::text = '' or status = $1::text
order by created_at desc;
`

const QUpdateCampaignStatus = `--sql a5b3d68b-1c88-4f36-8189-ff77868282c0
update campaigns
set status = $2::text, updated_at = now()
where id = $1::uuid
returning id::text, title, description, goal_amount, current_amount, donor_count, allow_recurring,
          image_url, currency, status, end_date, coalesce(created_by::text, ''), created_at;
`

const QCampaignRecentDonors = `--sql 8c3ebbf7-a49a-409c-bc59-0cf08fb8f618
select case when d.donor_name <> '' then d.donor_name else u.full_name end as name,
       d.amount,
       d.created_at
from donations d
join users u on u.id = d.user_id
where d.campaign_id = $1::uuid
  and d.status = 'success'
  and not d.is_anonymous
order by d.created_at desc
limit $2::int;
`

const QCampaignAnalytics = `--sql c1d463f2-619d-4ac9-9cfd-68cb36dae3a0
select c.id::text,
       c.title,
       coalesce(sum(d.amount - d.refunded_amount) filter (where d.status in ('success', 'refunded')), 0)::bigint,
       (count(d.id) filter (where d.status in ('success', 'refunded')))::int
from campaigns c
left join donations d on d.campaign_id = c.id
group by c.id, c.title, c.created_at
order by c.created_at desc;
`

const QCampaignTopDonors = `--sql 3f355607-43fe-4c8b-9bc4-75686442ac0e
select case when d.donor_name <> '' then d.donor_name else u.full_name end as name,
       sum(d.amount - d.refunded_amount)::bigint as total,
       max(d.created_at)
from donations d
join users u on u.id = d.user_id
where d.campaign_id = $1::uuid
  and d.status in ('success', 'refunded')
  and not d.is_anonymous
group by 1
order by total desc
limit $2::int;
`
