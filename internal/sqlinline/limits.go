package sqlinline

const QEnsureUserLimit = `--sql af6b1cab-ad0f-40a1-a86e-f1c3220b2886
insert into user_limits (user_id, free_limit, last_free_reset)
values ($1::text, $2::int, now())
on conflict (user_id) do nothing;
`

const QUpsertAndGetUserLimit = `--sql 176f0b37-2549-4949-91b8-f1472a11f1d6
insert into user_limits (user_id, free_limit, last_free_reset)
values ($1::text, $2::int, now())
on conflict (user_id) do update set user_id = excluded.user_id
returning user_id, used, purchased, free_limit, lifetime_used,
          last_free_reset, last_used, last_request, frozen, created_at, updated_at;
`

const QResetFreeWindow = `--sql 0aa33d8b-cc1c-4d7e-8953-8c6eaeb70ec2
update user_limits
set used = 0,
    last_free_reset = now(),
    updated_at = now()
where user_id = $1::text
  and last_free_reset < $2::timestamptz;
`

const QAddUsed = `--sql 913353cd-e7d1-4aed-9ba5-e6dcf47e7d01
update user_limits
set used = used + $2::int,
    lifetime_used = lifetime_used + $2::int,
    last_used = now(),
    updated_at = now()
where user_id = $1::text;
`

const QAddPurchased = `--sql c3924c47-7a8f-4f1b-89cd-9cca5c222b6b
update user_limits
set purchased = purchased + $2::int,
    updated_at = now()
where user_id = $1::text;
`

const QSetLastRequest = `--sql e04f8985-011a-42b0-ab15-d2cf21994094
update user_limits
set last_request = $2::timestamptz,
    updated_at = now()
where user_id = $1::text;
`

const QSetFrozen = `--sql f4213f79-e2fe-4e1f-8ce7-81ae421d6f5a
update user_limits
set frozen = $2::boolean,
    updated_at = now()
where user_id = $1::text;
`

const QSetFreeLimit = `--sql f841f627-3a41-4a0b-a97d-fd0447d40dab
update user_limits
set free_limit = $2::int,
    updated_at = now()
where user_id = $1::text;
`

const QInsertPurchase = `--sql af7d193b-de6c-4310-bfdd-2706a5986ea0
insert into purchases (payment_id, user_id, amount)
values ($1::text, $2::text, $3::int)
on conflict (payment_id) do nothing;
`
