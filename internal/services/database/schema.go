package database

// Schema creates every table the engine uses.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS student_profiles (
	id                 BIGSERIAL PRIMARY KEY,
	user_id            TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
	gpa                NUMERIC(3,2),
	sat_total          INTEGER,
	sat_math           INTEGER,
	sat_ebrw           INTEGER,
	act_score          INTEGER,
	ielts_total        NUMERIC(2,1),
	toefl_total        INTEGER,
	max_budget         NUMERIC(12,2),
	need_financial_aid BOOLEAN NOT NULL DEFAULT FALSE,
	extracurriculars   JSONB NOT NULL DEFAULT '[]',
	achievements       JSONB NOT NULL DEFAULT '[]',
	leadership         JSONB NOT NULL DEFAULT '[]',
	volunteer_work     JSONB NOT NULL DEFAULT '[]',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS universities (
	id                     TEXT PRIMARY KEY,
	name_en                TEXT NOT NULL,
	country                TEXT NOT NULL DEFAULT '',
	city                   TEXT NOT NULL DEFAULT '',
	website                TEXT NOT NULL DEFAULT '',
	min_gpa                NUMERIC(3,2),
	avg_gpa                NUMERIC(3,2),
	min_sat                INTEGER,
	avg_sat_25             INTEGER,
	avg_sat_75             INTEGER,
	min_act                INTEGER,
	min_ielts              NUMERIC(2,1),
	min_toefl              INTEGER,
	tuition_intl           NUMERIC(12,2),
	total_cost             NUMERIC(12,2),
	has_merit_scholarships BOOLEAN NOT NULL DEFAULT FALSE,
	has_need_based         BOOLEAN NOT NULL DEFAULT FALSE,
	has_full_ride          BOOLEAN NOT NULL DEFAULT FALSE,
	fin_aid_percentage     NUMERIC(5,2),
	accepts_common_app     BOOLEAN NOT NULL DEFAULT FALSE,
	accepts_coalition      BOOLEAN NOT NULL DEFAULT FALSE,
	has_own_system         BOOLEAN NOT NULL DEFAULT FALSE,
	own_system_link        TEXT NOT NULL DEFAULT '',
	recommendation_count   INTEGER NOT NULL DEFAULT 0,
	requires_portfolio     BOOLEAN NOT NULL DEFAULT FALSE,
	requires_statement     BOOLEAN NOT NULL DEFAULT FALSE,
	requires_interview     BOOLEAN NOT NULL DEFAULT FALSE,
	requires_css_profile   BOOLEAN NOT NULL DEFAULT FALSE,
	supplemental_essays    JSONB NOT NULL DEFAULT '[]',
	early_action_date      DATE,
	ed_deadline            DATE,
	regular_deadline       DATE,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS fit_scores (
	id            BIGSERIAL PRIMARY KEY,
	user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	university_id TEXT NOT NULL REFERENCES universities(id) ON DELETE CASCADE,
	score         INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
	category      TEXT NOT NULL CHECK (category IN ('reach', 'target', 'safety')),
	breakdown     JSONB NOT NULL,
	explanation   JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, university_id)
);

CREATE TABLE IF NOT EXISTS checklists (
	id            UUID PRIMARY KEY,
	user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	university_id TEXT NOT NULL REFERENCES universities(id) ON DELETE CASCADE,
	base_deadline DATE NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, university_id)
);

CREATE TABLE IF NOT EXISTS checklist_items (
	id           UUID PRIMARY KEY,
	checklist_id UUID NOT NULL REFERENCES checklists(id) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'PENDING',
	item_order   INTEGER NOT NULL,
	deadline     DATE,
	is_custom    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_checklist_items_checklist ON checklist_items(checklist_id, item_order);
CREATE INDEX IF NOT EXISTS idx_checklist_items_open_deadline ON checklist_items(deadline) WHERE status <> 'COMPLETED';
`
