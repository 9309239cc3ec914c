package domain

import "time"

// Department enumerates academic departments accepted at registration.
type Department string

const (
	DepartmentComputerScience        Department = "Computer Science"
	DepartmentSoftwareEngineering    Department = "Software Engineering"
	DepartmentElectricalEngineering  Department = "Electrical Engineering"
	DepartmentBusinessAdministration Department = "Business Administration"
	DepartmentFineArts               Department = "Fine Arts"
	DepartmentPsychology             Department = "Psychology"
	DepartmentMathematics            Department = "Mathematics"
	DepartmentPhysics                Department = "Physics"
	DepartmentOther                  Department = "Other"
)

// Departments lists every accepted department value.
var Departments = []Department{
	DepartmentComputerScience,
	DepartmentSoftwareEngineering,
	DepartmentElectricalEngineering,
	DepartmentBusinessAdministration,
	DepartmentFineArts,
	DepartmentPsychology,
	DepartmentMathematics,
	DepartmentPhysics,
	DepartmentOther,
}

// ValidDepartment reports whether d is one of the accepted departments.
func ValidDepartment(d Department) bool {
	for _, candidate := range Departments {
		if candidate == d {
			return true
		}
	}
	return false
}

// MaxSkills caps the skills list stored per user.
const MaxSkills = 10

// Rating is the denormalized rating aggregate on a user.
type Rating struct {
	Average float64
	Count   int
}

// Earnings tracks settled and in-flight seller income.
type Earnings struct {
	Total   int64
	Pending int64
}

// User is the aggregate for a registered student account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Department   Department
	Year         int
	Skills       []string
	Avatar       string
	Bio          string
	Rating       Rating
	Earnings     Earnings
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
