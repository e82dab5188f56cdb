package models

// RoleType represents the role of a user account
type RoleType string

const (
	RoleStudent      RoleType = "STUDENT"
	RoleAdvisor      RoleType = "ADVISOR"
	RoleCareerCenter RoleType = "CAREER_CENTER"
	RoleAdmin        RoleType = "ADMIN"
)

// IsValid reports whether the role is one of the known roles
func (r RoleType) IsValid() bool {
	switch r {
	case RoleStudent, RoleAdvisor, RoleCareerCenter, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role has review access to student records
func (r RoleType) IsStaff() bool {
	return r == RoleAdvisor || r == RoleCareerCenter || r == RoleAdmin
}

// ApplicationStatus represents the lifecycle state of a staj başvurusu
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "PENDING"
	ApplicationApproved  ApplicationStatus = "APPROVED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationCancelled ApplicationStatus = "CANCELLED"
)

// IsValid reports whether the status is one of the known application states
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected, ApplicationCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further company decision is possible
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationRejected || s == ApplicationCancelled
}

// LogbookStatus represents the lifecycle state of a staj defteri
type LogbookStatus string

const (
	LogbookWaiting  LogbookStatus = "WAITING"
	LogbookUploaded LogbookStatus = "UPLOADED"
	LogbookApproved LogbookStatus = "APPROVED"
)

// IsValid reports whether the status is one of the known logbook states
func (s LogbookStatus) IsValid() bool {
	switch s {
	case LogbookWaiting, LogbookUploaded, LogbookApproved:
		return true
	}
	return false
}

// ImportJobStatus represents the state of a bulk Excel import job
type ImportJobStatus string

const (
	ImportProcessing ImportJobStatus = "PROCESSING"
	ImportCompleted  ImportJobStatus = "COMPLETED"
	ImportFailed     ImportJobStatus = "FAILED"
	ImportCancelled  ImportJobStatus = "CANCELLED"
)

// ImportJobType represents the kind of records a bulk import creates
type ImportJobType string

const (
	ImportAdvisors          ImportJobType = "ADVISOR"
	ImportStudents          ImportJobType = "STUDENT"
	ImportDualMajorStudents ImportJobType = "DUAL_MAJOR_STUDENT"
)

// IsValid reports whether the job type is one of the known import kinds
func (t ImportJobType) IsValid() bool {
	switch t {
	case ImportAdvisors, ImportStudents, ImportDualMajorStudents:
		return true
	}
	return false
}
