package domain

import "time"

// AlertType is the category of a security alert.
type AlertType int

const (
	AlertEvilTwin AlertType = iota
	AlertDeauthAttack
	AlertWPACracking
	AlertRogueAP
)

var alertTypeLabels = []string{"Evil Twin", "Deauth Attack", "WPA Cracking", "Rogue AP"}

func (t AlertType) String() string { return enumLabel(t, alertTypeLabels, "AlertType") }

func (t AlertType) MarshalText() ([]byte, error) {
	return marshalEnum(t, alertTypeLabels, "alert type")
}

func (t *AlertType) UnmarshalText(text []byte) error {
	v, err := parseEnum[AlertType](string(text), alertTypeLabels, "alert type")
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Severity is the ordered criticality of an alert. Low < Medium < High < Critical.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityLabels = []string{"Low", "Medium", "High", "Critical"}

func (s Severity) String() string { return enumLabel(s, severityLabels, "Severity") }

func (s Severity) MarshalText() ([]byte, error) {
	return marshalEnum(s, severityLabels, "severity")
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := parseEnum[Severity](string(text), severityLabels, "severity")
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s >= other
}

// Color returns the card background used for alerts of this severity.
func (s Severity) Color() Color {
	switch s {
	case SeverityCritical:
		return ColorSeverityCritical
	case SeverityHigh:
		return ColorSeverityHigh
	case SeverityMedium, SeverityLow:
		return ColorSeverityDefault
	}
	return ColorSeverityDefault
}

// AlertStatus is the triage state of an alert.
type AlertStatus int

const (
	StatusNew AlertStatus = iota
	StatusInvestigating
	StatusResolved
)

var alertStatusLabels = []string{"New", "Investigating", "Resolved"}

func (s AlertStatus) String() string { return enumLabel(s, alertStatusLabels, "AlertStatus") }

func (s AlertStatus) MarshalText() ([]byte, error) {
	return marshalEnum(s, alertStatusLabels, "alert status")
}

func (s *AlertStatus) UnmarshalText(text []byte) error {
	v, err := parseEnum[AlertStatus](string(text), alertStatusLabels, "alert status")
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Color returns the badge colour for the status.
func (s AlertStatus) Color() Color {
	switch s {
	case StatusNew:
		return ColorStatusNew
	case StatusInvestigating:
		return ColorStatusInvestigating
	case StatusResolved:
		return ColorStatusResolved
	}
	return ColorStatusNew
}

// Alert is a security event raised against a network.
// Network is a free-text SSID reference, not a BSSID key.
type Alert struct {
	ID          string      `json:"id"`
	Timestamp   time.Time   `json:"timestamp"`
	Type        AlertType   `json:"type"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	Network     string      `json:"network"`
	Status      AlertStatus `json:"status"`
}
