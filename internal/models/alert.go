package models

// Severity classifies an alert. Red forces refusal; orange downgrades the
// application to conditional risk unless a red alert exists.
type Severity string

const (
	SeverityRed    Severity = "red"
	SeverityOrange Severity = "orange"
)

// Alert is one triggered rule: a severity plus the message shown to the
// analyst. Alerts are immutable once emitted.
type Alert struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// RedAlert builds a red alert with the given message.
func RedAlert(message string) Alert {
	return Alert{Severity: SeverityRed, Message: message}
}

// OrangeAlert builds an orange alert with the given message.
func OrangeAlert(message string) Alert {
	return Alert{Severity: SeverityOrange, Message: message}
}

// AlertList accumulates alerts over the life of one application. Order of
// first occurrence is preserved and duplicate messages are dropped, so
// re-running a rule group never repeats a reason. Alerts are only removed
// by starting a new application.
type AlertList struct {
	Items []Alert `json:"items,omitempty"`
}

// Add appends the alerts whose messages are not already present and
// returns the ones that were actually added.
func (l *AlertList) Add(alerts ...Alert) []Alert {
	var added []Alert
	for _, alert := range alerts {
		if l.contains(alert.Message) {
			continue
		}
		l.Items = append(l.Items, alert)
		added = append(added, alert)
	}
	return added
}

func (l *AlertList) contains(message string) bool {
	for _, existing := range l.Items {
		if existing.Message == message {
			return true
		}
	}
	return false
}

// Messages returns the messages of the alerts with the given severity, in
// first-observed order.
func (l *AlertList) Messages(severity Severity) []string {
	var messages []string
	for _, alert := range l.Items {
		if alert.Severity == severity {
			messages = append(messages, alert.Message)
		}
	}
	return messages
}

// HasRed reports whether any red alert has been accumulated.
func (l *AlertList) HasRed() bool {
	for _, alert := range l.Items {
		if alert.Severity == SeverityRed {
			return true
		}
	}
	return false
}

// Len returns the number of accumulated alerts.
func (l *AlertList) Len() int {
	return len(l.Items)
}
