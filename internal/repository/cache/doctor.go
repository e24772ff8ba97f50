// Package cache decorates repositories with an in-process read-through cache.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
)

const allDoctorsKey = "doctors:all"

type doctorRepository struct {
	repository.DoctorRepository
	cache *gocache.Cache
}

// NewDoctorRepository caches Get and List results for ttl. Writes through the
// decorator evict affected entries, again once their unit of work has ended.
// Reads made inside a unit of work bypass the cache.
func NewDoctorRepository(next repository.DoctorRepository, ttl time.Duration) repository.DoctorRepository {
	return &doctorRepository{
		DoctorRepository: next,
		cache:            gocache.New(ttl, 2*ttl),
	}
}

func doctorKey(id uuid.UUID) string {
	return "doctor:" + id.String()
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	if repository.InTx(ctx) {
		return r.DoctorRepository.Get(ctx, id)
	}
	if cached, ok := r.cache.Get(doctorKey(id)); ok {
		d := cloneDoctor(cached.(*model.Doctor))
		return d, nil
	}

	doctor, err := r.DoctorRepository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(doctorKey(id), cloneDoctor(doctor))
	return doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	if repository.InTx(ctx) {
		return r.DoctorRepository.List(ctx)
	}
	if cached, ok := r.cache.Get(allDoctorsKey); ok {
		return cloneDoctors(cached.([]*model.Doctor)), nil
	}

	doctors, err := r.DoctorRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(allDoctorsKey, cloneDoctors(doctors))
	return doctors, nil
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	if err := r.DoctorRepository.Create(ctx, doctor); err != nil {
		return err
	}
	r.evictAfter(ctx, doctor.ID)
	return nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	r.evict(doctor.ID)
	if err := r.DoctorRepository.Update(ctx, doctor); err != nil {
		return err
	}
	r.evictAfter(ctx, doctor.ID)
	return nil
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.evict(id)
	if err := r.DoctorRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.evictAfter(ctx, id)
	return nil
}

// evictAfter drops entries a concurrent reader may have refilled with
// pre-commit state while the unit of work was open.
func (r *doctorRepository) evictAfter(ctx context.Context, id uuid.UUID) {
	repository.AfterTx(ctx, func() { r.evict(id) })
}

func (r *doctorRepository) evict(id uuid.UUID) {
	r.cache.Delete(doctorKey(id))
	r.cache.Delete(allDoctorsKey)
}

func cloneDoctor(d *model.Doctor) *model.Doctor {
	c := *d
	c.AvailableTimes = append([]string(nil), d.AvailableTimes...)
	return &c
}

func cloneDoctors(doctors []*model.Doctor) []*model.Doctor {
	out := make([]*model.Doctor, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, cloneDoctor(d))
	}
	return out
}
