package sqlinline

const QInsertDonation = `--sql 6f1f4cbb-8d2e-4c34-9a77-52a4a7a3d9c1
insert into donations(id, user_address, amount, currency, to_address, cause, dev_donation, tx_hash, country_code, created_at)
values ($1::uuid, $2::text, $3::numeric, $4::text, $5::text, $6::text, $7::numeric, $8::text, nullif($9::text, ''), $10::timestamptz);
`

const QListDonationsByUser = `--sql 1f0a9f57-44a1-4a5d-8f05-b0675cf4b68e
select id, user_address, amount::text, currency, to_address, cause, dev_donation::text, tx_hash, coalesce(country_code, ''), created_at
from donations
where lower(user_address) = lower($1::text)
order by created_at desc;
`

const QDonationStats = `--sql 0c3d52e9-91be-49d3-b6a1-7a4f8f2a51b2
select cause, currency, sum(amount)::text, count(*)
from donations
where ($1::text = '' or cause = $1::text)
  and ($2::text = '' or currency = $2::text)
group by cause, currency
order by cause, currency;
`
