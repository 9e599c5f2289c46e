package models

// AcademicScope bounds an attendance operation to a session, class,
// section and date. Class and section must never outlive the session
// they were picked under; the selector enforces the cascading resets.
type AcademicScope struct {
	SessionID string `json:"sessionId"`
	ClassID   string `json:"classId"`
	Section   string `json:"section"`
	Date      string `json:"date"`
}

// Complete reports whether every field has been chosen.
func (s AcademicScope) Complete() bool {
	return s.SessionID != "" && s.ClassID != "" && s.Section != "" && s.Date != ""
}

// Session describes an academic session as listed by the gateway.
type Session struct {
	SessionID string `json:"sessionId"`
	IsActive  int    `json:"isActive"`
}

// TeacherClass is one (class, section) a teacher is allotted within a
// session.
type TeacherClass struct {
	SessionID string `json:"sessionId"`
	ClassID   string `json:"classId"`
	Section   string `json:"section"`
	SubjectID string `json:"subjectId"`
	TeacherID string `json:"tId"`
}
