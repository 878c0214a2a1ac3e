package sqlinline

// Moodboard history queries. {{table}} and {{index}} are substituted with
// quoted identifiers before execution.

const QEnsureMoodboardHistory = `--sql 3c0d8e51-6a2f-4b7e-9d14-8f25a6c1e0b7
create table if not exists {{table}} (
  id text primary key,
  moodboard_id text not null,
  fullprompt text not null default '',
  prompt text not null default '',
  generated_date date not null,
  base64 text not null default '',
  original text not null default '',
  thumbnail text not null default '',
  part_type text not null default '',
  bucket text not null default '',
  key text not null default '',
  asset_type text not null default '',
  style text not null default '',
  created_at timestamptz not null default now()
);
`

const QEnsureMoodboardHistoryIndex = `--sql 9a41f7c2-0e3b-4d58-a6b9-52c7d8e1f304
create index if not exists {{index}} on {{table}} (moodboard_id, created_at);
`

const QInsertMoodboardImage = `--sql e7b2c9d4-15a8-4f3e-8c60-0d9f4a2b7e15
insert into {{table}} (
  id,
  moodboard_id,
  fullprompt,
  prompt,
  generated_date,
  base64,
  original,
  thumbnail,
  part_type,
  bucket,
  key,
  asset_type,
  style
) values (
  $1::text,
  $2::text,
  $3::text,
  $4::text,
  $5::date,
  $6::text,
  $7::text,
  $8::text,
  $9::text,
  $10::text,
  $11::text,
  $12::text,
  $13::text
);
`

const QListMoodboardImages = `--sql 5f8e3a17-c2d9-4b06-b4e1-7a3c9d0f6e28
select
  id,
  moodboard_id,
  fullprompt,
  prompt,
  to_char(generated_date, 'YYYY-MM-DD'),
  base64,
  original,
  thumbnail,
  part_type,
  bucket,
  key,
  asset_type,
  style
from {{table}}
where moodboard_id = $1::text
order by created_at asc;
`
