package sqlinline

const QSelectIntegrationToken = `--sql d36c79f1-5c21-4fd7-9921-e8c12a2ce1ff
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 4cb59630-babe-4250-85a4-2b03262f7565
insert into integration_tokens (id, provider, token, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, now(), now())
on conflict (provider) do update set
    token = excluded.token,
    updated_at = now();
`
