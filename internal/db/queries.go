package db

import (
	"database/sql"
	"strings"

	"github.com/knitlab/skein/internal/errors"
)

// Project is a stored hobby project. The marker engine never sees this
// type; it belongs to the host's storage layer.
type Project struct {
	ID        string  `json:"id"`
	NameRaw   string  `json:"name"`
	NameNorm  string  `json:"-"`
	Craft     string  `json:"craft"`
	NotesMD   *string `json:"notes_md,omitempty"`
	TotalRows int     `json:"total_rows"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// Counter is a stored progress counter. Exactly one counter per project is
// primary; markers without an explicit counter reference evaluate against it.
type Counter struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Label     string `json:"label"`
	Value     int    `json:"value"`
	IsPrimary bool   `json:"is_primary"`
	UpdatedAt int64  `json:"updated_at"`
}

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.SkeinError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// InsertProject stores a new project.
func InsertProject(db *sql.DB, p *Project) error {
	query := `
		INSERT INTO projects (id, name_raw, name_norm, craft, notes_md, total_rows, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		p.ID, p.NameRaw, p.NameNorm, p.Craft, toNullString(p.NotesMD),
		p.TotalRows, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetProject retrieves a project by its ULID.
func GetProject(db *sql.DB, id string) (*Project, error) {
	row := db.QueryRow(`
		SELECT id, name_raw, name_norm, craft, notes_md, total_rows, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return p, nil
}

// GetProjectByName retrieves a project by its normalized name.
func GetProjectByName(db *sql.DB, nameNorm string) (*Project, error) {
	row := db.QueryRow(`
		SELECT id, name_raw, name_norm, craft, notes_md, total_rows, created_at, updated_at
		FROM projects WHERE name_norm = ?
	`, nameNorm)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(nameNorm)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return p, nil
}

// ListProjects returns projects ordered by most recently updated, with the
// total count for pagination.
func ListProjects(db *sql.DB, limit, offset int) ([]Project, int, error) {
	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := db.Query(`
		SELECT id, name_raw, name_norm, craft, notes_md, total_rows, created_at, updated_at
		FROM projects ORDER BY updated_at DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return projects, total, nil
}

// UpdateProject persists changes to a project row.
func UpdateProject(db *sql.DB, p *Project) error {
	query := `
		UPDATE projects
		SET name_raw = ?, name_norm = ?, craft = ?, notes_md = ?, total_rows = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := db.Exec(query,
		p.NameRaw, p.NameNorm, p.Craft, toNullString(p.NotesMD), p.TotalRows, p.UpdatedAt, p.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(p.ID)
	}
	return nil
}

// DeleteProject hard-deletes a project. Counters, markers, and their events
// go with it via ON DELETE CASCADE.
func DeleteProject(db *sql.DB, id string) error {
	result, err := db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// InsertCounter stores a new counter.
func InsertCounter(db *sql.DB, c *Counter) error {
	query := `
		INSERT INTO counters (id, project_id, label, value, is_primary, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, c.ID, c.ProjectID, c.Label, c.Value, boolToInt(c.IsPrimary), c.UpdatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetCounter retrieves a counter by its ULID.
func GetCounter(db *sql.DB, id string) (*Counter, error) {
	row := db.QueryRow(`
		SELECT id, project_id, label, value, is_primary, updated_at
		FROM counters WHERE id = ?
	`, id)
	c, err := scanCounter(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// GetPrimaryCounter retrieves the primary counter of a project.
func GetPrimaryCounter(db *sql.DB, projectID string) (*Counter, error) {
	row := db.QueryRow(`
		SELECT id, project_id, label, value, is_primary, updated_at
		FROM counters WHERE project_id = ? AND is_primary = 1
	`, projectID)
	c, err := scanCounter(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("primary counter for project " + projectID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// ListCounters returns all counters for a project, primary first.
func ListCounters(db *sql.DB, projectID string) ([]Counter, error) {
	rows, err := db.Query(`
		SELECT id, project_id, label, value, is_primary, updated_at
		FROM counters WHERE project_id = ?
		ORDER BY is_primary DESC, label ASC
	`, projectID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	counters := []Counter{}
	for rows.Next() {
		c, err := scanCounter(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		counters = append(counters, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return counters, nil
}

// SetCounterValue overwrites a counter's value.
func SetCounterValue(db *sql.DB, id string, value int, now int64) error {
	result, err := db.Exec(`UPDATE counters SET value = ?, updated_at = ? WHERE id = ?`, value, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// AdvanceCounterValue increments a counter relative to its stored value and
// returns the new value. The relative update keeps concurrent advances from
// losing increments.
func AdvanceCounterValue(db *sql.DB, id string, delta int, now int64) (int, error) {
	result, err := db.Exec(`UPDATE counters SET value = value + ?, updated_at = ? WHERE id = ?`, delta, now, id)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	if affected == 0 {
		return 0, errors.NewNotFound(id)
	}

	var value int
	if err := db.QueryRow(`SELECT value FROM counters WHERE id = ?`, id).Scan(&value); err != nil {
		return 0, errors.NewInternal(err)
	}
	return value, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*Project, error) {
	var p Project
	var notes sql.NullString
	if err := s.Scan(&p.ID, &p.NameRaw, &p.NameNorm, &p.Craft, &notes, &p.TotalRows, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.NotesMD = fromNullString(notes)
	return &p, nil
}

func scanCounter(s scanner) (*Counter, error) {
	var c Counter
	var isPrimary int
	if err := s.Scan(&c.ID, &c.ProjectID, &c.Label, &c.Value, &isPrimary, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.IsPrimary = isPrimary != 0
	return &c, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
