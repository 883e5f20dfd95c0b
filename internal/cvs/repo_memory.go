package cvs

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used when no database is configured and
// in tests. WithinTx applies the function to a copy of the data and swaps it
// in only on success, mirroring the all-or-nothing behavior of the Postgres
// store.
type MemoryStore struct {
	mu   sync.RWMutex
	data *memoryData
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemoryData()}
}

func (s *MemoryStore) CVs() CVRepo { return &cvMemoryRepo{b: s} }

func (s *MemoryStore) PersonalInfo() Repository[PersonalInformation] {
	return &personalInfoMemoryRepo{b: s}
}

func (s *MemoryStore) Experiences() Repository[ExperienceInformation] {
	return &experienceMemoryRepo{b: s}
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&txMemoryStore{data: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *MemoryStore) read(fn func(*memoryData) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *MemoryStore) write(fn func(*memoryData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// txMemoryStore serves repository calls made inside WithinTx. It operates on
// the working copy without locking; the parent store holds its lock for the
// duration of the transaction.
type txMemoryStore struct {
	data *memoryData
}

func (s *txMemoryStore) CVs() CVRepo { return &cvMemoryRepo{b: s} }

func (s *txMemoryStore) PersonalInfo() Repository[PersonalInformation] {
	return &personalInfoMemoryRepo{b: s}
}

func (s *txMemoryStore) Experiences() Repository[ExperienceInformation] {
	return &experienceMemoryRepo{b: s}
}

func (s *txMemoryStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

func (s *txMemoryStore) read(fn func(*memoryData) error) error  { return fn(s.data) }
func (s *txMemoryStore) write(fn func(*memoryData) error) error { return fn(s.data) }

type memoryBackend interface {
	read(fn func(*memoryData) error) error
	write(fn func(*memoryData) error) error
}

type memoryData struct {
	cvs          map[int64]CV
	personalInfo map[int64]PersonalInformation
	experiences  map[int64]ExperienceInformation

	nextCVID, nextPersonalInfoID, nextExperienceID int64
}

func newMemoryData() *memoryData {
	return &memoryData{
		cvs:                make(map[int64]CV),
		personalInfo:       make(map[int64]PersonalInformation),
		experiences:        make(map[int64]ExperienceInformation),
		nextCVID:           1,
		nextPersonalInfoID: 1,
		nextExperienceID:   1,
	}
}

func (d *memoryData) clone() *memoryData {
	out := &memoryData{
		cvs:                make(map[int64]CV, len(d.cvs)),
		personalInfo:       make(map[int64]PersonalInformation, len(d.personalInfo)),
		experiences:        make(map[int64]ExperienceInformation, len(d.experiences)),
		nextCVID:           d.nextCVID,
		nextPersonalInfoID: d.nextPersonalInfoID,
		nextExperienceID:   d.nextExperienceID,
	}
	for id, cv := range d.cvs {
		out.cvs[id] = cv
	}
	for id, info := range d.personalInfo {
		out.personalInfo[id] = info
	}
	for id, exp := range d.experiences {
		out.experiences[id] = exp
	}
	return out
}

type cvMemoryRepo struct {
	b memoryBackend
}

func (r *cvMemoryRepo) GetAll(ctx context.Context) ([]CV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []CV
	err := r.b.read(func(d *memoryData) error {
		for _, cv := range d.cvs {
			out = append(out, cv)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *cvMemoryRepo) GetByID(ctx context.Context, id int64) (CV, error) {
	if err := ctx.Err(); err != nil {
		return CV{}, err
	}
	var cv CV
	err := r.b.read(func(d *memoryData) error {
		stored, ok := d.cvs[id]
		if !ok {
			return ErrNotFound
		}
		cv = stored
		return nil
	})
	return cv, err
}

func (r *cvMemoryRepo) Add(ctx context.Context, cv CV) (CV, error) {
	if err := ctx.Err(); err != nil {
		return CV{}, err
	}
	err := r.b.write(func(d *memoryData) error {
		cv.ID = d.nextCVID
		d.nextCVID++
		d.cvs[cv.ID] = cv
		return nil
	})
	return cv, err
}

func (r *cvMemoryRepo) Update(ctx context.Context, cv CV) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.b.write(func(d *memoryData) error {
		if _, ok := d.cvs[cv.ID]; !ok {
			return ErrNotFound
		}
		d.cvs[cv.ID] = cv
		return nil
	})
}

func (r *cvMemoryRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.b.write(func(d *memoryData) error {
		for expID, exp := range d.experiences {
			if exp.CVID == id {
				delete(d.experiences, expID)
			}
		}
		delete(d.cvs, id)
		return nil
	})
}

func (r *cvMemoryRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *cvMemoryRepo) GetExperiences(ctx context.Context, cvID int64) ([]ExperienceInformation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []ExperienceInformation
	err := r.b.read(func(d *memoryData) error {
		for _, exp := range d.experiences {
			if exp.CVID == cvID {
				out = append(out, exp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *cvMemoryRepo) AddExperience(ctx context.Context, cvID int64, exp ExperienceInformation) (ExperienceInformation, error) {
	exp.CVID = cvID
	return (&experienceMemoryRepo{b: r.b}).Add(ctx, exp)
}

func (r *cvMemoryRepo) RemoveExperience(ctx context.Context, cvID, experienceID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.b.write(func(d *memoryData) error {
		exp, ok := d.experiences[experienceID]
		if !ok || exp.CVID != cvID {
			return nil
		}
		delete(d.experiences, experienceID)
		return nil
	})
}

func (r *cvMemoryRepo) HasExperience(ctx context.Context, cvID, experienceID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var has bool
	err := r.b.read(func(d *memoryData) error {
		exp, ok := d.experiences[experienceID]
		has = ok && exp.CVID == cvID
		return nil
	})
	return has, err
}

type personalInfoMemoryRepo struct {
	b memoryBackend
}

func (r *personalInfoMemoryRepo) GetAll(ctx context.Context) ([]PersonalInformation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []PersonalInformation
	err := r.b.read(func(d *memoryData) error {
		for _, info := range d.personalInfo {
			out = append(out, info)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *personalInfoMemoryRepo) GetByID(ctx context.Context, id int64) (PersonalInformation, error) {
	if err := ctx.Err(); err != nil {
		return PersonalInformation{}, err
	}
	var info PersonalInformation
	err := r.b.read(func(d *memoryData) error {
		stored, ok := d.personalInfo[id]
		if !ok {
			return ErrNotFound
		}
		info = stored
		return nil
	})
	return info, err
}

func (r *personalInfoMemoryRepo) Add(ctx context.Context, info PersonalInformation) (PersonalInformation, error) {
	if err := ctx.Err(); err != nil {
		return PersonalInformation{}, err
	}
	err := r.b.write(func(d *memoryData) error {
		info.ID = d.nextPersonalInfoID
		d.nextPersonalInfoID++
		d.personalInfo[info.ID] = info
		return nil
	})
	return info, err
}

func (r *personalInfoMemoryRepo) Update(ctx context.Context, info PersonalInformation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.b.write(func(d *memoryData) error {
		if _, ok := d.personalInfo[info.ID]; !ok {
			return ErrNotFound
		}
		d.personalInfo[info.ID] = info
		return nil
	})
}

func (r *personalInfoMemoryRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.b.write(func(d *memoryData) error {
		delete(d.personalInfo, id)
		return nil
	})
}

func (r *personalInfoMemoryRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type experienceMemoryRepo struct {
	b memoryBackend
}

func (r *experienceMemoryRepo) GetAll(ctx context.Context) ([]ExperienceInformation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []ExperienceInformation
	err := r.b.read(func(d *memoryData) error {
		for _, exp := range d.experiences {
			out = append(out, exp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *experienceMemoryRepo) GetByID(ctx context.Context, id int64) (ExperienceInformation, error) {
	if err := ctx.Err(); err != nil {
		return ExperienceInformation{}, err
	}
	var exp ExperienceInformation
	err := r.b.read(func(d *memoryData) error {
		stored, ok := d.experiences[id]
		if !ok {
			return ErrNotFound
		}
		exp = stored
		return nil
	})
	return exp, err
}

func (r *experienceMemoryRepo) Add(ctx context.Context, exp ExperienceInformation) (ExperienceInformation, error) {
	if err := ctx.Err(); err != nil {
		return ExperienceInformation{}, err
	}
	err := r.b.write(func(d *memoryData) error {
		exp.ID = d.nextExperienceID
		d.nextExperienceID++
		d.experiences[exp.ID] = exp
		return nil
	})
	return exp, err
}

func (r *experienceMemoryRepo) Update(ctx context.Context, exp ExperienceInformation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.b.write(func(d *memoryData) error {
		if _, ok := d.experiences[exp.ID]; !ok {
			return ErrNotFound
		}
		d.experiences[exp.ID] = exp
		return nil
	})
}

func (r *experienceMemoryRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.b.write(func(d *memoryData) error {
		delete(d.experiences, id)
		return nil
	})
}

func (r *experienceMemoryRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
