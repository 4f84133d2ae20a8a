package services

import (
	"testing"

	"parcelhub/internal/models"
	"parcelhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParcelTransitionAdjacency(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.ParcelStatusRegistered, models.ParcelStatusInTransit},
		{models.ParcelStatusInTransit, models.ParcelStatusInSorting},
		{models.ParcelStatusInSorting, models.ParcelStatusOutForDelivery},
		{models.ParcelStatusOutForDelivery, models.ParcelStatusDelivered},
		{models.ParcelStatusOutForDelivery, models.ParcelStatusFailed},
		{models.ParcelStatusFailed, models.ParcelStatusReturned},
	}
	for _, tc := range allowed {
		assert.NoError(t, checkParcelTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	all := []string{
		models.ParcelStatusRegistered,
		models.ParcelStatusInTransit,
		models.ParcelStatusInSorting,
		models.ParcelStatusOutForDelivery,
		models.ParcelStatusDelivered,
		models.ParcelStatusFailed,
		models.ParcelStatusReturned,
	}

	// 邻接表之外的任何状态对一律拒绝
	isAllowed := func(from, to string) bool {
		for _, tc := range allowed {
			if tc.from == from && tc.to == to {
				return true
			}
		}
		return false
	}
	for _, from := range all {
		for _, to := range all {
			if isAllowed(from, to) {
				continue
			}
			err := checkParcelTransition(from, to)
			require.Error(t, err, "%s -> %s", from, to)
			var stateErr *errors.InvalidStateTransitionError
			require.ErrorAs(t, err, &stateErr)
			assert.Equal(t, from, stateErr.Current)
			assert.Equal(t, to, stateErr.Attempted)
		}
	}
}

func TestParcelTerminalStatesHaveNoExit(t *testing.T) {
	for _, terminal := range []string{models.ParcelStatusDelivered, models.ParcelStatusReturned} {
		for _, to := range []string{
			models.ParcelStatusRegistered,
			models.ParcelStatusInTransit,
			models.ParcelStatusOutForDelivery,
			models.ParcelStatusFailed,
		} {
			assert.Error(t, checkParcelTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
}

func TestParcelGenericUpdateGuard(t *testing.T) {
	// 邻接表内的普通推进允许
	assert.NoError(t, checkParcelGenericUpdate(models.ParcelStatusRegistered, models.ParcelStatusInTransit))
	assert.NoError(t, checkParcelGenericUpdate(models.ParcelStatusFailed, models.ParcelStatusReturned))

	// DELIVERED/FAILED必须走专用操作，即使邻接表允许
	err := checkParcelGenericUpdate(models.ParcelStatusOutForDelivery, models.ParcelStatusDelivered)
	require.Error(t, err)
	var stateErr *errors.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)
	assert.NotEmpty(t, stateErr.Reason)

	assert.Error(t, checkParcelGenericUpdate(models.ParcelStatusOutForDelivery, models.ParcelStatusFailed))

	// 跳级推进拒绝
	assert.Error(t, checkParcelGenericUpdate(models.ParcelStatusRegistered, models.ParcelStatusOutForDelivery))
}

func TestParcelDetailsModifyGuard(t *testing.T) {
	assert.NoError(t, checkParcelDetailsModify(&models.Parcel{Status: models.ParcelStatusRegistered}))

	for _, status := range []string{
		models.ParcelStatusInTransit,
		models.ParcelStatusInSorting,
		models.ParcelStatusOutForDelivery,
		models.ParcelStatusDelivered,
		models.ParcelStatusFailed,
		models.ParcelStatusReturned,
	} {
		assert.Error(t, checkParcelDetailsModify(&models.Parcel{Status: status}), status)
	}
}
