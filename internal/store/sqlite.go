// Package store persists organizations, board rosters, branding,
// wizard progress, transcripts, and campaigns in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"gemma/internal/logging"
	"gemma/internal/types"
)

// SQLiteStore is the SQLite-backed persistence layer.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logging.Store("opened database at %s", dbPath)
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		plan TEXT NOT NULL DEFAULT 'Free',
		initials TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS board_members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		org_id TEXT NOT NULL REFERENCES organizations(id),
		name TEXT NOT NULL,
		title TEXT NOT NULL,
		linkedin_url TEXT,
		photo_url TEXT,
		headline TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_board_members_org ON board_members(org_id);

	CREATE TABLE IF NOT EXISTS branding (
		org_id TEXT PRIMARY KEY REFERENCES organizations(id),
		palette_name TEXT NOT NULL,
		mood TEXT NOT NULL,
		colors_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS incorporate_progress (
		org_id TEXT PRIMARY KEY REFERENCES organizations(id),
		current_section TEXT NOT NULL,
		current_step INTEGER NOT NULL,
		supplemental_provisions TEXT,
		browser_url TEXT,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS conversation_messages (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL REFERENCES organizations(id),
		role TEXT NOT NULL,
		message_text TEXT NOT NULL,
		section TEXT,
		step_number INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_org ON conversation_messages(org_id, created_at);

	CREATE TABLE IF NOT EXISTS campaigns (
		org_id TEXT PRIMARY KEY REFERENCES organizations(id),
		uploaded_file_name TEXT,
		quotes_json TEXT NOT NULL DEFAULT '[]',
		images_json TEXT NOT NULL DEFAULT '[]',
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateOrganization inserts a new organization row.
func (s *SQLiteStore) CreateOrganization(ctx context.Context, org types.Organization) error {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, plan, initials, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		org.ID, org.Name, org.Plan, org.Initials, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

// GetOrganization returns an organization by ID, or nil when absent.
func (s *SQLiteStore) GetOrganization(ctx context.Context, id string) (*types.Organization, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, plan, initials FROM organizations WHERE id = ?`, id)

	var org types.Organization
	err := row.Scan(&org.ID, &org.Name, &org.Plan, &org.Initials)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan organization row: %w", err)
	}
	return &org, nil
}

// RenameOrganization updates name and initials.
func (s *SQLiteStore) RenameOrganization(ctx context.Context, id, name, initials string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE organizations SET name = ?, initials = ?, updated_at = ? WHERE id = ?`,
		name, initials, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("rename organization: %w", err)
	}
	return nil
}

// AppendBoardMember adds one member to the roster. The roster is
// append-only.
func (s *SQLiteStore) AppendBoardMember(ctx context.Context, orgID string, m types.BoardMember) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO board_members (org_id, name, title, linkedin_url, photo_url, headline, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		orgID, m.Name, string(m.Title), nullable(m.LinkedInURL), nullable(m.PhotoURL), nullable(m.Headline), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert board member: %w", err)
	}
	return nil
}

// ListBoardMembers returns the roster in insertion order.
func (s *SQLiteStore) ListBoardMembers(ctx context.Context, orgID string) ([]types.BoardMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, title, linkedin_url, photo_url, headline
		FROM board_members WHERE org_id = ? ORDER BY id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("query board members: %w", err)
	}
	defer rows.Close()

	var members []types.BoardMember
	for rows.Next() {
		var m types.BoardMember
		var title string
		var linkedin, photo, headline sql.NullString
		if err := rows.Scan(&m.Name, &title, &linkedin, &photo, &headline); err != nil {
			return nil, fmt.Errorf("scan board member row: %w", err)
		}
		m.Title = types.BoardTitle(title)
		m.LinkedInURL = linkedin.String
		m.PhotoURL = photo.String
		m.Headline = headline.String
		members = append(members, m)
	}
	return members, rows.Err()
}

// SaveBranding upserts the palette for an organization. The palette is
// stored whole; there is no partial merge.
func (s *SQLiteStore) SaveBranding(ctx context.Context, orgID string, b types.BrandingData) error {
	colors, err := json.Marshal(b.Colors)
	if err != nil {
		return fmt.Errorf("marshal colors: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO branding (org_id, palette_name, mood, colors_json, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(org_id) DO UPDATE SET
			palette_name = excluded.palette_name,
			mood = excluded.mood,
			colors_json = excluded.colors_json,
			updated_at = excluded.updated_at`,
		orgID, b.PaletteName, b.Mood, string(colors), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert branding: %w", err)
	}
	return nil
}

// GetBranding returns the stored palette, or nil when absent.
func (s *SQLiteStore) GetBranding(ctx context.Context, orgID string) (*types.BrandingData, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT palette_name, mood, colors_json FROM branding WHERE org_id = ?`, orgID)

	var b types.BrandingData
	var colorsJSON string
	err := row.Scan(&b.PaletteName, &b.Mood, &colorsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan branding row: %w", err)
	}
	if err := json.Unmarshal([]byte(colorsJSON), &b.Colors); err != nil {
		return nil, fmt.Errorf("unmarshal colors: %w", err)
	}
	return &b, nil
}

// Progress is the persisted wizard position for an organization.
type Progress struct {
	Section    types.Section
	Step       types.Step
	Provision  string
	BrowserURL string
}

// SaveProgress upserts the wizard position.
func (s *SQLiteStore) SaveProgress(ctx context.Context, orgID string, p Progress) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO incorporate_progress (org_id, current_section, current_step, supplemental_provisions, browser_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(org_id) DO UPDATE SET
			current_section = excluded.current_section,
			current_step = excluded.current_step,
			supplemental_provisions = excluded.supplemental_provisions,
			browser_url = excluded.browser_url,
			updated_at = excluded.updated_at`,
		orgID, string(p.Section), int(p.Step), nullable(p.Provision), nullable(p.BrowserURL), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// GetProgress returns the persisted wizard position, or nil when absent.
func (s *SQLiteStore) GetProgress(ctx context.Context, orgID string) (*Progress, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT current_section, current_step, supplemental_provisions, browser_url
		FROM incorporate_progress WHERE org_id = ?`, orgID)

	var p Progress
	var section string
	var step int
	var provision, browserURL sql.NullString
	err := row.Scan(&section, &step, &provision, &browserURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan progress row: %w", err)
	}
	p.Section = types.Section(section)
	p.Step = types.Step(step)
	p.Provision = provision.String
	p.BrowserURL = browserURL.String
	return &p, nil
}

// AppendMessage appends one transcript message.
func (s *SQLiteStore) AppendMessage(ctx context.Context, orgID string, m types.Message, section types.Section, step types.Step) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (id, org_id, role, message_text, section, step_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, orgID, string(m.Role), m.Text, string(section), int(step), m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListMessages returns the transcript in chronological order.
func (s *SQLiteStore) ListMessages(ctx context.Context, orgID string) ([]types.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, message_text, created_at
		FROM conversation_messages WHERE org_id = ? ORDER BY created_at, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []types.Message
	for rows.Next() {
		var m types.Message
		var role string
		if err := rows.Scan(&m.ID, &role, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.Role = types.Role(role)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// SaveCampaign upserts the campaign-studio state for an organization.
func (s *SQLiteStore) SaveCampaign(ctx context.Context, orgID string, c types.CampaignData) error {
	quotes, err := json.Marshal(emptyIfNil(c.ExtractedQuotes))
	if err != nil {
		return fmt.Errorf("marshal quotes: %w", err)
	}
	images, err := json.Marshal(emptyIfNil(c.GeneratedImages))
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO campaigns (org_id, uploaded_file_name, quotes_json, images_json, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(org_id) DO UPDATE SET
			uploaded_file_name = excluded.uploaded_file_name,
			quotes_json = excluded.quotes_json,
			images_json = excluded.images_json,
			updated_at = excluded.updated_at`,
		orgID, nullable(c.UploadedFileName), string(quotes), string(images), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert campaign: %w", err)
	}
	return nil
}

// GetCampaign returns the campaign-studio state, or nil when absent.
func (s *SQLiteStore) GetCampaign(ctx context.Context, orgID string) (*types.CampaignData, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT uploaded_file_name, quotes_json, images_json FROM campaigns WHERE org_id = ?`, orgID)

	var c types.CampaignData
	var fileName sql.NullString
	var quotesJSON, imagesJSON string
	err := row.Scan(&fileName, &quotesJSON, &imagesJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan campaign row: %w", err)
	}
	c.UploadedFileName = fileName.String
	if err := json.Unmarshal([]byte(quotesJSON), &c.ExtractedQuotes); err != nil {
		return nil, fmt.Errorf("unmarshal quotes: %w", err)
	}
	if err := json.Unmarshal([]byte(imagesJSON), &c.GeneratedImages); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	return &c, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func emptyIfNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
