package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpaceTypeSet(t *testing.T) {
	defaults := NewSpaceTypeSet(nil)
	typ, err := defaults.Parse(" Court ")
	require.NoError(t, err)
	assert.Equal(t, SpaceTypeCourt, typ)

	_, err = defaults.Parse("pool")
	assert.Error(t, err)

	extended := NewSpaceTypeSet([]string{"room", "pool"})
	typ, err = extended.Parse("pool")
	require.NoError(t, err)
	assert.Equal(t, SpaceType("pool"), typ)
	_, err = extended.Parse("court")
	assert.Error(t, err)
}

func TestSpace_Availability(t *testing.T) {
	s := NewSpace(" Sala A ", SpaceTypeRoom, 10, "", testNow)
	assert.Equal(t, "Sala A", s.Name)
	assert.True(t, s.IsAvailableForCapacity(10))
	assert.False(t, s.IsAvailableForCapacity(11))

	s.Deactivate()
	assert.False(t, s.IsAvailableForCapacity(1))
	s.Activate()
	assert.True(t, s.IsActive)
}

func TestUser_Capabilities(t *testing.T) {
	u := &User{Role: RoleUser}
	assert.True(t, u.CanMakeReservation())
	assert.False(t, u.IsAdmin())

	admin := &User{Role: RoleAdmin}
	assert.True(t, admin.CanMakeReservation())
	assert.True(t, admin.IsAdmin())

	assert.False(t, (&User{Role: "guest"}).CanMakeReservation())

	_, err := ParseRole("root")
	assert.Error(t, err)
}
