package lifecycle

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"

	"lead-system/internal/entities"
	"lead-system/pkg/constants"
)

func userWithRole(id uint64, role constants.Role, centreID uint64) *entities.User {
	return &entities.User{
		ID:       id,
		Role:     role,
		CentreID: null.Uint64From(centreID),
	}
}

func testRecord() *entities.Record {
	return &entities.Record{
		ID:            1,
		State:         constants.StateNew,
		CentreID:      10,
		CommercialIDs: []int64{100, 101},
		ConfirmerIDs:  []int64{200},
	}
}

func TestAuthorize_AdminIsAlwaysDirect(t *testing.T) {
	admin := userWithRole(1, constants.RoleAdmin, 99)
	for _, target := range States() {
		d := Authorize(Attempt{Actor: admin, Record: testRecord(), Target: target})
		assert.Equal(t, Direct, d, string(target))
	}
}

func TestAuthorize_ConfirmerIsDirectCrossCentre(t *testing.T) {
	confirmer := userWithRole(200, constants.RoleConfirmer, 99) // different centre
	d := Authorize(Attempt{Actor: confirmer, Record: testRecord(), Target: constants.StateConfirmed})
	assert.Equal(t, Direct, d)
}

func TestAuthorize_ManagerIsCentreScoped(t *testing.T) {
	rec := testRecord()

	sameCentre := userWithRole(2, constants.RoleManager, rec.CentreID)
	assert.Equal(t, Direct, Authorize(Attempt{Actor: sameCentre, Record: rec, Target: constants.StateRefused}))

	otherCentre := userWithRole(3, constants.RoleManager, rec.CentreID+1)
	assert.Equal(t, Denied, Authorize(Attempt{Actor: otherCentre, Record: rec, Target: constants.StateRefused}))
}

func TestAuthorize_Commercial(t *testing.T) {
	rec := testRecord()
	assigned := userWithRole(100, constants.RoleCommercial, rec.CentreID)
	stranger := userWithRole(500, constants.RoleCommercial, rec.CentreID)

	t.Run("own new confirmed slot is direct", func(t *testing.T) {
		d := Authorize(Attempt{Actor: assigned, Record: rec, Target: constants.StateConfirmed, NewSlot: true})
		assert.Equal(t, Direct, d)
	})

	t.Run("confirmed without a new slot is propose-only", func(t *testing.T) {
		d := Authorize(Attempt{Actor: assigned, Record: rec, Target: constants.StateConfirmed})
		assert.Equal(t, ProposeOnly, d)
	})

	t.Run("signature outcome is propose-only", func(t *testing.T) {
		d := Authorize(Attempt{Actor: assigned, Record: rec, Target: constants.StateSigned, NewSlot: true})
		assert.Equal(t, ProposeOnly, d)
	})

	t.Run("secondary commercial may also propose", func(t *testing.T) {
		secondary := userWithRole(101, constants.RoleCommercial, rec.CentreID)
		d := Authorize(Attempt{Actor: secondary, Record: rec, Target: constants.StateRefused})
		assert.Equal(t, ProposeOnly, d)
	})

	t.Run("unassigned commercial is denied", func(t *testing.T) {
		d := Authorize(Attempt{Actor: stranger, Record: rec, Target: constants.StateRefused})
		assert.Equal(t, Denied, d)
		d = Authorize(Attempt{Actor: stranger, Record: rec, Target: constants.StateConfirmed, NewSlot: true})
		assert.Equal(t, Denied, d)
	})
}

func TestAuthorize_UnknownRoleIsDenied(t *testing.T) {
	ghost := userWithRole(9, constants.Role("GHOST"), 10)
	d := Authorize(Attempt{Actor: ghost, Record: testRecord(), Target: constants.StateRefused})
	assert.Equal(t, Denied, d)
}
