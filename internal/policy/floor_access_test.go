package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arjaysison/library-room-reservation/internal/model"
)

func student(course, department string) *model.User {
	return &model.User{
		ID:         1,
		Role:       model.RoleStudent,
		IDNumber:   "2023-00001",
		Course:     course,
		Department: department,
		Verified:   true,
	}
}

func TestFloorAccessGroundFloor(t *testing.T) {
	fa := FloorAccess{}
	tests := []struct {
		name string
		user *model.User
		want bool
	}{
		{"masters student allowed", student("Master of Science in Biology", "College of Science"), true},
		{"phd student allowed", student("PhD in Education", "College of Education"), true},
		{"mba student allowed", student("MBA", "College of Business"), true},
		{"llm student allowed", student("LL.M in Taxation", "College of Law"), true},
		{"undergraduate denied", student("BS Computer Science", "College of Engineering"), false},
		{"empty course denied", student("", "College of Nursing"), false},
		{"faculty exempt", &model.User{Role: model.RoleFaculty}, true},
		{"staff exempt", &model.User{Role: model.RoleStaff}, true},
		{"admin exempt", &model.User{Role: model.RoleAdmin}, true},
		{"nil user denied", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fa.Allowed(tt.user, "Ground"))
		})
	}
}

func TestFloorAccessSecondFloor(t *testing.T) {
	fa := FloorAccess{}
	tests := []struct {
		name string
		user *model.User
		want bool
	}{
		{"law department allowed", student("Juris Doctor", "College of Law"), true},
		{"law course allowed", student("Bachelor of Laws", "Graduate School"), true},
		{"non-law denied", student("BS Accountancy", "College of Business"), false},
		{"faculty exempt", &model.User{Role: model.RoleFaculty}, true},
		{"nil user denied", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fa.Allowed(tt.user, "2nd"))
		})
	}
}

func TestFloorAccessOpenAndUnknownFloors(t *testing.T) {
	fa := FloorAccess{}
	undergrad := student("BS Computer Science", "College of Engineering")

	assert.True(t, fa.Allowed(undergrad, "4th"))
	assert.True(t, fa.Allowed(undergrad, "5th"))
	assert.True(t, fa.Allowed(undergrad, "Mezzanine"), "unknown floors default to allowed")
	assert.False(t, fa.Allowed(nil, "4th"), "nil user is denied even on open floors")
}

func TestFloorAccessNormalizesFloorNames(t *testing.T) {
	fa := FloorAccess{}
	grad := student("Master of Arts in History", "Graduate School")
	undergrad := student("BS Biology", "College of Science")

	for _, floor := range []string{"Ground", "ground", " GROUND FLOOR ", "Ground Floor"} {
		assert.True(t, fa.Allowed(grad, floor), "floor spelling %q", floor)
		assert.False(t, fa.Allowed(undergrad, floor), "floor spelling %q", floor)
	}
}

func TestFloorAccessExplain(t *testing.T) {
	fa := FloorAccess{}
	assert.Contains(t, fa.Explain("Ground Floor"), "graduate")
	assert.Contains(t, fa.Explain("2nd"), "Law")
	assert.Contains(t, fa.Explain("4th"), "no booking restriction")
}
