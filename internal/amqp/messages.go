package amqp

import (
	"encoding/json"
	"time"
)

// ScanJobMessage asks the worker for one inbox scan. It carries only
// identifiers and a window start; the worker resolves the connection and
// project from the database when the job runs.
type ScanJobMessage struct {
	ConnectionID string    `json:"connectionId,omitempty"`
	ProjectID    string    `json:"projectId"`
	Since        time.Time `json:"since"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewScanJobMessage creates a scan job message stamped now.
func NewScanJobMessage(connectionID, projectID string, since time.Time) *ScanJobMessage {
	return &ScanJobMessage{
		ConnectionID: connectionID,
		ProjectID:    projectID,
		Since:        since,
		Timestamp:    time.Now(),
	}
}

func (m *ScanJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ScanJobMessageFromJSON(data []byte) (*ScanJobMessage, error) {
	var msg ScanJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
