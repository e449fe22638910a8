package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/backend/internal/models"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestCan(t *testing.T) {
	clubA := uuid.New()
	clubB := uuid.New()

	student := &models.User{ID: uuid.New(), Role: models.RoleStudent}
	staffA := &models.User{ID: uuid.New(), Role: models.RoleClubStaff, ClubID: ptr(clubA)}
	staffUnassigned := &models.User{ID: uuid.New(), Role: models.RoleClubStaff}
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	tests := []struct {
		name    string
		user    *models.User
		op      Operation
		target  Target
		allowed bool
	}{
		{"anonymous browses", nil, OpBrowse, Target{}, true},
		{"anonymous cannot register", nil, OpRegisterSelf, Target{}, false},
		{"anonymous cannot manage clubs", nil, OpManageClubs, Target{}, false},

		{"student browses", student, OpBrowse, Target{}, true},
		{"student registers self", student, OpRegisterSelf, Target{UserID: ptr(student.ID)}, true},
		{"student registers without explicit target", student, OpRegisterSelf, Target{}, true},
		{"student cannot register another user", student, OpRegisterSelf, Target{UserID: ptr(uuid.New())}, false},
		{"student cannot manage events", student, OpManageClubEvents, Target{ClubID: ptr(clubA)}, false},
		{"student cannot manage clubs", student, OpManageClubs, Target{}, false},
		{"student cannot manage users", student, OpManageUsers, Target{}, false},

		{"staff manages own club's events", staffA, OpManageClubEvents, Target{ClubID: ptr(clubA)}, true},
		{"staff cannot manage other club's events", staffA, OpManageClubEvents, Target{ClubID: ptr(clubB)}, false},
		{"staff needs a target club", staffA, OpManageClubEvents, Target{}, false},
		{"staff cannot register", staffA, OpRegisterSelf, Target{UserID: ptr(staffA.ID)}, false},
		{"staff cannot manage clubs", staffA, OpManageClubs, Target{}, false},
		{"staff cannot manage users", staffA, OpManageUsers, Target{}, false},
		{"unassigned staff manages nothing", staffUnassigned, OpManageClubEvents, Target{ClubID: ptr(clubA)}, false},

		{"admin manages clubs", admin, OpManageClubs, Target{}, true},
		{"admin manages users", admin, OpManageUsers, Target{}, true},
		{"admin browses", admin, OpBrowse, Target{}, true},
		{"admin cannot register", admin, OpRegisterSelf, Target{UserID: ptr(admin.ID)}, false},
		{"admin cannot manage club events directly", admin, OpManageClubEvents, Target{ClubID: ptr(clubA)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Can(tt.user, tt.op, tt.target)
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, d.Reason, "denials carry a reason")
			} else {
				assert.Empty(t, d.Reason)
			}
		})
	}
}

func TestCanIsPure(t *testing.T) {
	clubID := uuid.New()
	staff := &models.User{ID: uuid.New(), Role: models.RoleClubStaff, ClubID: &clubID}
	target := Target{ClubID: &clubID}

	first := Can(staff, OpManageClubEvents, target)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Can(staff, OpManageClubEvents, target))
	}
	assert.Equal(t, models.RoleClubStaff, staff.Role, "gate must not mutate the user")
	assert.Equal(t, clubID, *staff.ClubID)
}
