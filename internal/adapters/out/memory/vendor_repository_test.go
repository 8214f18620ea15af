package memory_test

import (
	"testing"

	"foodmarket/internal/adapters/out/memory"
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/vendor"
	"foodmarket/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVendor(t *testing.T, owner, name string) *vendor.Vendor {
	t.Helper()
	v, err := vendor.NewVendor(kernel.NewUUID(), kernel.Identity(owner), name, "")
	require.NoError(t, err)
	return v
}

func TestVendorRepository(t *testing.T) {
	ctx := t.Context()
	repo := memory.NewVendorRepository()

	owner := "507f1f77bcf86cd799439011"
	spice := newVendor(t, owner, "Spice Hub")
	dosa := newVendor(t, "owner-2", "Dosa Corner")
	require.NoError(t, repo.Add(ctx, spice))
	require.NoError(t, repo.Add(ctx, dosa))

	t.Run("should reject a second vendor for the same owner", func(t *testing.T) {
		err := repo.Add(ctx, newVendor(t, "507F1F77BCF86CD799439011", "Other"))
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should find by record id and by owner id", func(t *testing.T) {
		byID, err := repo.FindByRef(ctx, spice.ID().Identity())
		require.NoError(t, err)
		assert.True(t, byID.ID().IsEqual(spice.ID()))

		byOwner, err := repo.FindByRef(ctx, kernel.Identity(`ObjectId("`+owner+`")`))
		require.NoError(t, err)
		assert.True(t, byOwner.ID().IsEqual(spice.ID()))

		_, err = repo.FindByRef(ctx, "nobody")
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should list vendors by name", func(t *testing.T) {
		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Dosa Corner", all[0].Name())
		assert.Equal(t, "Spice Hub", all[1].Name())
	})

	t.Run("should update roster and list by member", func(t *testing.T) {
		_, err := repo.UpdateWith(ctx, spice.ID(), func(v *vendor.Vendor) error {
			v.AddToRoster("agent-1")
			return nil
		})
		require.NoError(t, err)

		vendors, err := repo.ListByRosterMember(ctx, "agent-1")
		require.NoError(t, err)
		require.Len(t, vendors, 1)
		assert.True(t, vendors[0].ID().IsEqual(spice.ID()))

		none, err := repo.ListByRosterMember(ctx, "agent-2")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("should return not found from GetByOwner", func(t *testing.T) {
		_, err := repo.GetByOwner(ctx, "ghost")
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}
