package amqp

import (
	"encoding/json"
	"time"
)

// Message type tags carried in the AMQP Publishing.Type field so the
// worker can route deliveries without sniffing the payload.
const (
	TypeExportRequest = "export.request"
	TypeAlertEvent    = "alert.event"
)

// ExportRequestMessage asks the worker to build a report and spool it
// as a CSV file. AsOf pins the report's current date so the file is
// reproducible regardless of when the worker picks the job up.
type ExportRequestMessage struct {
	ReportType  string    `json:"report_type"`
	TimeFrame   string    `json:"time_frame"`
	AsOf        string    `json:"as_of"`
	FileName    string    `json:"file_name"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewExportRequestMessage(reportType, timeFrame, asOf, fileName string) *ExportRequestMessage {
	return &ExportRequestMessage{
		ReportType:  reportType,
		TimeFrame:   timeFrame,
		AsOf:        asOf,
		FileName:    fileName,
		RequestedAt: time.Now().UTC(),
	}
}

func (m *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// AlertEventMessage records one alert firing for the worker to persist.
type AlertEventMessage struct {
	Category   string    `json:"category,omitempty"`
	Message    string    `json:"message"`
	Severity   string    `json:"severity"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewAlertEventMessage(category, message, severity string) *AlertEventMessage {
	return &AlertEventMessage{
		Category:   category,
		Message:    message,
		Severity:   severity,
		OccurredAt: time.Now().UTC(),
	}
}

func (m *AlertEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AlertEventMessageFromJSON(data []byte) (*AlertEventMessage, error) {
	var msg AlertEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
