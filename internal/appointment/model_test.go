package appointment

import "testing"

func TestDecodeDocumentResilience(t *testing.T) {
	// None of these may panic or surface an error; they all degrade to
	// "no appointments".
	for _, raw := range []string{"", "not json", "null", "{}", `{"id":"x"}`, "[1,2,3]"} {
		records := DecodeDocument([]byte(raw))
		if len(records) != 0 {
			t.Fatalf("DecodeDocument(%q) = %d records, want 0", raw, len(records))
		}
	}
}

func TestDecodeDocumentPortalKeys(t *testing.T) {
	raw := `[{
		"id": "apt-7",
		"patientId": "p-1",
		"patientName": "Gurpreet Singh",
		"doctorId": "3",
		"doctor": "Dr. Harpreet Singh",
		"specialist": "General Medicine",
		"date": "2026-03-14",
		"time": "02:00 PM",
		"status": "in_progress",
		"callType": "video",
		"callSessionId": "sess-42"
	}]`

	records := DecodeDocument([]byte(raw))
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.DoctorName != "Dr. Harpreet Singh" || r.Specialty != "General Medicine" {
		t.Fatalf("doctor fields not mapped from portal keys: %+v", r)
	}
	if r.Status != StatusInProgress || r.CallType != CallVideo || r.CallSession != "sess-42" {
		t.Fatalf("status/call fields not mapped: %+v", r)
	}
	if !r.OpenInvitation() {
		t.Fatalf("record with callType and callSessionId should be an open invitation")
	}
}

func TestOpenInvitationRequiresBothFields(t *testing.T) {
	if (Record{CallType: CallVideo}).OpenInvitation() {
		t.Fatalf("callType without session id must not count as open")
	}
	if (Record{CallSession: "s"}).OpenInvitation() {
		t.Fatalf("session id without callType must not count as open")
	}
}

func TestEncodeDocumentNeverNull(t *testing.T) {
	data, err := EncodeDocument(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("nil slice should encode as empty array, got %q", data)
	}
}
