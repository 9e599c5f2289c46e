package models

// AttendanceStatus is the wire code for a day's attendance.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "P"
	AttendanceStatusAbsent  AttendanceStatus = "A"
	AttendanceStatusLeave   AttendanceStatus = "L"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLeave:
		return true
	default:
		return false
	}
}

// Label returns the display label for the status.
func (s AttendanceStatus) Label() string {
	switch s {
	case AttendanceStatusPresent:
		return "Present"
	case AttendanceStatusAbsent:
		return "Absent"
	case AttendanceStatusLeave:
		return "Leave"
	default:
		return string(s)
	}
}

// StatusFromLabel maps a display label back to its wire code. Unknown
// labels map to the empty status.
func StatusFromLabel(label string) AttendanceStatus {
	switch label {
	case "Present":
		return AttendanceStatusPresent
	case "Absent":
		return AttendanceStatusAbsent
	case "Leave":
		return AttendanceStatusLeave
	default:
		return ""
	}
}

// AttendanceRecord is one student's attendance row for a class date.
// The server omits Status for students not yet marked; the workflow
// default-fills those to Present before display.
type AttendanceRecord struct {
	StudentID   string           `json:"sId"`
	StudentName string           `json:"studentName"`
	SessionID   string           `json:"sessionId"`
	ClassID     string           `json:"classId"`
	Section     string           `json:"section"`
	ClassDate   string           `json:"classDate"`
	Status      AttendanceStatus `json:"att,omitempty"`
	MarkedBy    string           `json:"markedBy"`
}
