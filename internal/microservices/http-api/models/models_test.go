package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeClock(t *testing.T, year int) {
	t.Helper()
	prev := Clock
	Clock = func() time.Time { return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { Clock = prev })
}

func TestUserCapabilities(t *testing.T) {
	var anonymous *User
	assert.False(t, anonymous.IsAdmin())
	assert.False(t, anonymous.IsModerator())

	assert.True(t, (&User{Role: RoleModerator}).IsModerator())
	assert.False(t, (&User{Role: RoleModerator}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.True(t, (&User{Role: RoleUser, IsSuperuser: true}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}

func TestUserCapabilitiesFollowRole(t *testing.T) {
	u := &User{Role: RoleModerator}
	assert.True(t, u.IsModerator())

	u.Role = RoleAdmin
	assert.False(t, u.IsModerator())
	assert.True(t, u.IsAdmin())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleModerator.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("owner").Valid())
	assert.False(t, Role("").Valid())
}

func TestValidName(t *testing.T) {
	assert.False(t, ValidName(""))
	assert.True(t, ValidName("Heat"))
	assert.True(t, ValidName(strings.Repeat("я", MaxNameLength)))
	assert.False(t, ValidName(strings.Repeat("я", MaxNameLength+1)))
	assert.False(t, ValidName(strings.Repeat("a", MaxNameLength+1)))
}

func TestValidateYear(t *testing.T) {
	freezeClock(t, 2024)

	assert.NoError(t, ValidateYear(2024))
	assert.NoError(t, ValidateYear(1869))
	assert.ErrorIs(t, ValidateYear(2025), ErrYearInFuture)
	assert.Error(t, ValidateYear(0))
	assert.Error(t, ValidateYear(-5))
}

func TestTitleBeforeSaveUsesSameClock(t *testing.T) {
	freezeClock(t, 2024)

	err := (&Title{Name: "Dune", Year: 2025}).BeforeSave(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrYearInFuture)

	assert.NoError(t, (&Title{Name: "Dune", Year: 1965}).BeforeSave(nil))
}

func TestUserBeforeCreateDefaults(t *testing.T) {
	u := &User{Username: "alice"}
	require.NoError(t, u.BeforeCreate(nil))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, RoleUser, u.Role)

	fixed := &User{ID: "fixed", Role: RoleAdmin}
	require.NoError(t, fixed.BeforeCreate(nil))
	assert.Equal(t, "fixed", fixed.ID)
	assert.Equal(t, RoleAdmin, fixed.Role)
}

func TestNamedSlugShared(t *testing.T) {
	n := NamedSlug{Name: "Rock", Slug: "rock"}
	assert.Equal(t, n, NewGenre(n).Named())
	assert.Equal(t, n, NewCategory(n).Named())
}
