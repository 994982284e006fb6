package v1

type CreateClassroomRequest struct {
	Name string `json:"name" binding:"required" example:"class-a"`
}

type ClassroomDetail struct {
	Id           int64           `json:"id"`
	Name         string          `json:"name"`
	StudentCount int64           `json:"student_count"`
	Students     []StudentDetail `json:"students,omitempty"`
}

type ListClassroomResponse struct {
	Response
	Data []ClassroomDetail
}

type CreateStudentRequest struct {
	ClassroomID int64  `json:"classroom_id" binding:"required"`
	Name        string `json:"name" binding:"required" example:"student-a"`
	Username    string `json:"username" binding:"required,min=3,max=120"`
	Password    string `json:"password" binding:"required,min=6"`
}

type ResetStudentPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

type StudentLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// StudentLoginResponseData is the student portal view: identity plus the VMs
// provisioned for the student, with their console URLs.
type StudentLoginResponseData struct {
	Student StudentDetail `json:"student"`
	VMs     []VMDetail    `json:"vms"`
}

type StudentDetail struct {
	Id          int64  `json:"id"`
	Name        string `json:"name"`
	ClassroomID int64  `json:"classroom_id"`
	Username    string `json:"username"`
	IsActive    bool   `json:"is_active"`
}
