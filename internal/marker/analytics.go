package marker

// MarkerStats is the per-marker slice of an analytics summary.
type MarkerStats struct {
	ID                string  `json:"id"`
	AlertMessage      string  `json:"alert_message"`
	Category          string  `json:"category,omitempty"`
	TimesTriggered    int     `json:"times_triggered"`
	TimesSnoozed      int     `json:"times_snoozed"`
	TimesAcknowledged int     `json:"times_acknowledged"`
	SnoozeRate        float64 `json:"snooze_rate"`
}

// Summary is the analytics roll-up over a marker set.
type Summary struct {
	TotalMarkers      int            `json:"total_markers"`
	ActiveMarkers     int            `json:"active_markers"`
	CompletedMarkers  int            `json:"completed_markers"`
	AISuggested       int            `json:"ai_suggested"`
	TotalTriggered    int            `json:"total_triggered"`
	TotalSnoozed      int            `json:"total_snoozed"`
	TotalAcknowledged int            `json:"total_acknowledged"`
	SnoozeRate        float64        `json:"snooze_rate"`
	ByCategory        map[string]int `json:"by_category,omitempty"`
	Markers           []MarkerStats  `json:"markers"`
}

// Summarize rolls the marker set up into summary statistics. Pure function
// of its input; no I/O.
func Summarize(markers []Marker) Summary {
	s := Summary{
		TotalMarkers: len(markers),
		ByCategory:   map[string]int{},
		Markers:      make([]MarkerStats, 0, len(markers)),
	}

	for i := range markers {
		m := &markers[i]

		switch m.Status {
		case StatusCompleted:
			s.CompletedMarkers++
		default:
			s.ActiveMarkers++
		}
		if m.SuggestedByAI {
			s.AISuggested++
		}
		if m.Category != "" {
			s.ByCategory[m.Category]++
		}

		s.TotalTriggered += m.TimesTriggered
		s.TotalSnoozed += m.TimesSnoozed
		s.TotalAcknowledged += m.TimesAcknowledged

		s.Markers = append(s.Markers, MarkerStats{
			ID:                m.ID,
			AlertMessage:      m.AlertMessage,
			Category:          m.Category,
			TimesTriggered:    m.TimesTriggered,
			TimesSnoozed:      m.TimesSnoozed,
			TimesAcknowledged: m.TimesAcknowledged,
			SnoozeRate:        snoozeRate(m.TimesSnoozed, m.TimesTriggered),
		})
	}

	if len(s.ByCategory) == 0 {
		s.ByCategory = nil
	}
	s.SnoozeRate = snoozeRate(s.TotalSnoozed, s.TotalTriggered)
	return s
}

// snoozeRate is snoozed / max(triggered, 1).
func snoozeRate(snoozed, triggered int) float64 {
	if triggered < 1 {
		triggered = 1
	}
	return float64(snoozed) / float64(triggered)
}
