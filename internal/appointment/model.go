package appointment

import "encoding/json"

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress" // doctor has accepted, a call may start
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type CallType string

const (
	CallVideo CallType = "video"
	CallAudio CallType = "audio"
)

// Record is one entry of the shared appointment document. The JSON keys are
// the ones the Helio portal already writes, so the agent reads documents
// produced by any cooperating client unchanged.
type Record struct {
	ID          string   `json:"id"`
	PatientID   string   `json:"patientId,omitempty"`
	PatientName string   `json:"patientName"`
	DoctorID    string   `json:"doctorId,omitempty"`
	DoctorName  string   `json:"doctor,omitempty"`
	Specialty   string   `json:"specialist,omitempty"`
	Date        string   `json:"date"` // calendar date, YYYY-MM-DD
	Time        string   `json:"time"` // wall clock, optionally suffixed with AM/PM
	Status      Status   `json:"status"`
	CallType    CallType `json:"callType,omitempty"`
	CallSession string   `json:"callSessionId,omitempty"`
}

// Terminal reports whether the record is excluded from upcoming
// aggregation regardless of its timestamp.
func (r Record) Terminal() bool {
	return r.Status == StatusCancelled || r.Status == StatusCompleted
}

// OpenInvitation reports whether the record carries a live call invitation.
// Both fields are required; a record violating the callType/callSessionId
// pairing invariant is treated as no invitation at all.
func (r Record) OpenInvitation() bool {
	return r.CallType != "" && r.CallSession != ""
}

// DecodeDocument turns the raw stored document into records. The document
// is written by collaborators the agent does not control, so anything that
// is not a JSON array (missing value, truncated write, an object) degrades
// to an empty collection rather than an error.
func DecodeDocument(data []byte) []Record {
	if len(data) == 0 {
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	return records
}

// EncodeDocument is the writer-side counterpart used by the seed and
// doctor-sim tools. A nil slice still encodes as an empty array so readers
// never observe "null".
func EncodeDocument(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}
