package sqlinline

const QAppendHistory = `--sql f2d4a5a0-0f54-47c6-8351-eabd59637e83
insert into usage_history (id, user_id, action, amount, comment)
values ($1::uuid, $2::text, $3::text, $4::int, $5::text);
`

const QListRecentHistory = `--sql 81e253b1-457d-4d67-8e20-036514b32cd9
select id, user_id, action, amount, comment, created_at
from usage_history
where user_id = $1::text
order by created_at desc
limit $2::int;
`

const QUsageTotals = `--sql a618d7d5-10af-4d72-85c3-73a0cef17c3b
select
    (select count(*) from user_limits),
    coalesce(sum(amount) filter (where action = 'use'), 0),
    coalesce(sum(amount) filter (where action = 'purchase'), 0),
    coalesce(count(*) filter (where action = 'limit_exceeded'), 0)
from usage_history;
`
