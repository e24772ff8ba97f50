package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	"github.com/jwalitptl/clinic-booking/internal/repository/memory"
)

// countingDoctors counts Get calls that reach the wrapped repository.
type countingDoctors struct {
	repository.DoctorRepository
	gets int
}

func (c *countingDoctors) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	c.gets++
	return c.DoctorRepository.Get(ctx, id)
}

func TestDoctorCache(t *testing.T) {
	store := memory.NewStore()
	backing := &countingDoctors{DoctorRepository: store.Doctors()}
	repo := NewDoctorRepository(backing, time.Minute)
	ctx := context.Background()

	doctor := &model.Doctor{
		Base:           model.Base{ID: uuid.New()},
		Email:          "lee@clinic.test",
		Name:           "Dr. Lee",
		AvailableTimes: []string{"09:00"},
	}
	require.NoError(t, repo.Create(ctx, doctor))

	for i := 0; i < 3; i++ {
		got, err := repo.Get(ctx, doctor.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dr. Lee", got.Name)
	}
	assert.Equal(t, 1, backing.gets)

	doctor.AvailableTimes = []string{"10:00"}
	require.NoError(t, repo.Update(ctx, doctor))

	got, err := repo.Get(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, []string(got.AvailableTimes))
	assert.Equal(t, 2, backing.gets)

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context) error {
		_, err := repo.Get(ctx, doctor.ID)
		return err
	}))
	assert.Equal(t, 3, backing.gets, "reads inside a unit of work go to the store")

	require.NoError(t, repo.Delete(ctx, doctor.ID))
	_, err = repo.Get(ctx, doctor.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDoctorCacheEvictsAgainWhenUnitEnds(t *testing.T) {
	store := memory.NewStore()
	backing := &countingDoctors{DoctorRepository: store.Doctors()}
	repo := NewDoctorRepository(backing, time.Minute)
	ctx := context.Background()

	doctor := &model.Doctor{
		Base:           model.Base{ID: uuid.New()},
		Email:          "lee@clinic.test",
		Name:           "Dr. Lee",
		AvailableTimes: []string{"09:00"},
	}
	require.NoError(t, repo.Create(ctx, doctor))

	txCtx := repository.MarkTx(ctx)
	require.NoError(t, repo.Delete(txCtx, doctor.ID))

	// A reader outside the unit refills the entry before the unit ends.
	_, err := repo.Get(ctx, doctor.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, store.Doctors().Create(ctx, doctor))
	_, err = repo.Get(ctx, doctor.ID)
	require.NoError(t, err)
	_, err = repo.Get(ctx, doctor.ID)
	require.NoError(t, err)
	gets := backing.gets

	repository.Finish(txCtx)

	_, err = repo.Get(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, gets+1, backing.gets, "entry cached during the unit must be dropped when it ends")
}
