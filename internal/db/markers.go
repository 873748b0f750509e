package db

import (
	"database/sql"
	"encoding/json"

	"github.com/knitlab/skein/internal/errors"
	"github.com/knitlab/skein/internal/marker"
)

const markerColumns = `
	id, project_id, counter_id, trigger_type, condition_json,
	start_row, end_row, repeat_interval, repeat_offset,
	alert_message, alert_type, priority, display_style, color, category,
	is_active, status, suggested_by_ai,
	times_triggered, times_snoozed, times_acknowledged,
	created_at, updated_at`

// InsertMarker stores a new marker.
func InsertMarker(db *sql.DB, m *marker.Marker) error {
	conditionJSON, err := json.Marshal(m.Condition)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO markers (` + markerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.Exec(query,
		m.ID, m.ProjectID, toNullString(m.CounterID), string(m.TriggerType), string(conditionJSON),
		toNullInt(m.StartRow), toNullInt(m.EndRow), toNullInt(m.RepeatInterval), toNullInt(m.RepeatOffset),
		m.AlertMessage, string(m.AlertType), m.Priority, m.DisplayStyle, m.Color, m.Category,
		boolToInt(m.IsActive), string(m.Status), boolToInt(m.SuggestedByAI),
		m.TimesTriggered, m.TimesSnoozed, m.TimesAcknowledged,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetMarker retrieves a marker by its ULID.
func GetMarker(db *sql.DB, id string) (*marker.Marker, error) {
	row := db.QueryRow(`SELECT `+markerColumns+` FROM markers WHERE id = ?`, id)
	m, err := scanMarker(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return m, nil
}

// ListMarkers returns all markers for a project. When activeOnly is set,
// only active, non-completed markers are returned (the evaluable set).
func ListMarkers(db *sql.DB, projectID string, activeOnly bool) ([]marker.Marker, error) {
	query := `SELECT ` + markerColumns + ` FROM markers WHERE project_id = ?`
	if activeOnly {
		query += ` AND is_active = 1 AND status = 'active'`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := db.Query(query, projectID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	markers := []marker.Marker{}
	for rows.Next() {
		m, err := scanMarker(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		markers = append(markers, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return markers, nil
}

// UpdateMarker persists rule/presentation changes to a marker row. The
// interaction counters and status are deliberately excluded: those advance
// only through ApplyEvent.
func UpdateMarker(db *sql.DB, m *marker.Marker) error {
	conditionJSON, err := json.Marshal(m.Condition)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		UPDATE markers
		SET counter_id = ?, trigger_type = ?, condition_json = ?,
			start_row = ?, end_row = ?, repeat_interval = ?, repeat_offset = ?,
			alert_message = ?, alert_type = ?, priority = ?, display_style = ?,
			color = ?, category = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := db.Exec(query,
		toNullString(m.CounterID), string(m.TriggerType), string(conditionJSON),
		toNullInt(m.StartRow), toNullInt(m.EndRow), toNullInt(m.RepeatInterval), toNullInt(m.RepeatOffset),
		m.AlertMessage, string(m.AlertType), m.Priority, m.DisplayStyle,
		m.Color, m.Category, boolToInt(m.IsActive), m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(m.ID)
	}
	return nil
}

// DeleteMarker hard-deletes a marker; its events cascade.
func DeleteMarker(db *sql.DB, id string) error {
	result, err := db.Exec(`DELETE FROM markers WHERE id = ?`, id)
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

// ApplyEvent persists a lifecycle event in a single transaction: the event
// row is appended and the marker's cached counter (or status) advances via a
// relative update, so two events racing on the same marker never lose an
// increment.
func ApplyEvent(db *sql.DB, event *marker.Event) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO marker_events (id, marker_id, event_type, at_row, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.ID, event.MarkerID, string(event.EventType), event.AtRow, event.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}

	var result sql.Result
	switch event.EventType {
	case marker.EventTriggered:
		result, err = tx.Exec(`
			UPDATE markers SET times_triggered = times_triggered + 1, updated_at = ? WHERE id = ?
		`, event.CreatedAt, event.MarkerID)
	case marker.EventSnoozed:
		result, err = tx.Exec(`
			UPDATE markers SET times_snoozed = times_snoozed + 1, updated_at = ? WHERE id = ?
		`, event.CreatedAt, event.MarkerID)
	case marker.EventAcknowledged:
		result, err = tx.Exec(`
			UPDATE markers SET times_acknowledged = times_acknowledged + 1, updated_at = ? WHERE id = ?
		`, event.CreatedAt, event.MarkerID)
	case marker.EventCompleted:
		// Guarded by status so a racing second completion rolls back instead
		// of rewriting the terminal state.
		result, err = tx.Exec(`
			UPDATE markers SET status = 'completed', updated_at = ? WHERE id = ? AND status = 'active'
		`, event.CreatedAt, event.MarkerID)
	default:
		return errors.NewInvalidRequest("unknown event type " + string(event.EventType))
	}
	if err != nil {
		return errors.NewInternal(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		if event.EventType == marker.EventCompleted {
			return errors.NewInvalidTransition("marker " + event.MarkerID + " is already completed")
		}
		return errors.NewNotFound(event.MarkerID)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListEvents returns the event log for a marker in append order.
func ListEvents(db *sql.DB, markerID string) ([]marker.Event, error) {
	rows, err := db.Query(`
		SELECT id, marker_id, event_type, at_row, created_at
		FROM marker_events WHERE marker_id = ?
		ORDER BY created_at ASC, id ASC
	`, markerID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	events := []marker.Event{}
	for rows.Next() {
		var e marker.Event
		var eventType string
		if err := rows.Scan(&e.ID, &e.MarkerID, &eventType, &e.AtRow, &e.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.EventType = marker.EventType(eventType)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return events, nil
}

func scanMarker(s scanner) (*marker.Marker, error) {
	var m marker.Marker
	var counterID sql.NullString
	var conditionJSON, triggerType, alertType, status string
	var startRow, endRow, repeatInterval, repeatOffset sql.NullInt64
	var isActive, suggestedByAI int

	err := s.Scan(
		&m.ID, &m.ProjectID, &counterID, &triggerType, &conditionJSON,
		&startRow, &endRow, &repeatInterval, &repeatOffset,
		&m.AlertMessage, &alertType, &m.Priority, &m.DisplayStyle, &m.Color, &m.Category,
		&isActive, &status, &suggestedByAI,
		&m.TimesTriggered, &m.TimesSnoozed, &m.TimesAcknowledged,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(conditionJSON), &m.Condition); err != nil {
		return nil, err
	}

	m.CounterID = fromNullString(counterID)
	m.TriggerType = marker.TriggerType(triggerType)
	m.AlertType = marker.AlertType(alertType)
	m.Status = marker.Status(status)
	m.StartRow = fromNullInt(startRow)
	m.EndRow = fromNullInt(endRow)
	m.RepeatInterval = fromNullInt(repeatInterval)
	m.RepeatOffset = fromNullInt(repeatOffset)
	m.IsActive = isActive != 0
	m.SuggestedByAI = suggestedByAI != 0
	return &m, nil
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func fromNullInt(nv sql.NullInt64) *int {
	if !nv.Valid {
		return nil
	}
	v := int(nv.Int64)
	return &v
}
