package models

// TeacherProfile is the identity blob persisted for a logged-in teacher.
type TeacherProfile struct {
	TeacherID string `json:"tId"`
	Name      string `json:"name"`
	EmailID   string `json:"emailId"`
}

// StudentProfile is the identity blob persisted for a logged-in student.
// Session, class and section pin the student's current enrollment and
// scope every fee query.
type StudentProfile struct {
	StudentID string `json:"sId"`
	Name      string `json:"name"`
	EmailID   string `json:"emailId"`
	Session   string `json:"session"`
	Class     string `json:"class"`
	Section   string `json:"section"`
}

// UserType selects the login endpoint.
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeTeacher UserType = "teacher"
)
