package sqlinline

const QNextReceiptSequence = `--sql 9a374f63-811e-4910-b87a-6eca40e3da91
select nextval('receipt_number_seq');
`

const QInsertReceipt = `--sql 90eaee5c-490d-4b48-9ed7-18aa047a093b
insert into receipts (
    donation_id, receipt_number, financial_year, section_80g, donor_name, pan,
    address, amount, currency, campaign_title, payment_ref, issued_at
)
values (
    $1::uuid, $2::text, $3::text, $4::boolean, $5::text, $6::text,
    $7::text, $8::bigint, $9::text, $10::text, $11::text, $12::timestamptz
)
on conflict (donation_id) do nothing
returning id::text;
`

const QSelectReceiptByDonation = `--sql 67bdae7b-0cde-4650-adbe-679ccc612c3b
select id::text, donation_id::text, receipt_number, financial_year, section_80g, donor_name, pan,
       address, amount, currency, campaign_title, payment_ref, storage_key, issued_at
from receipts
where donation_id = $1::uuid
limit 1;
`

const QUpdateReceiptStorageKey = `--sql 550a6c3a-ba9c-43ae-a2a5-4f306f63c3d2
update receipts
set storage_key = $2::text
where donation_id = $1::uuid;
`
