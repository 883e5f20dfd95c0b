package cvs

import "context"

// Repository is the generic CRUD contract shared by the cv-manager entities.
// Each implementation binds one concrete entity to its own table; there is no
// reflection-derived mapping.
//
// GetByID returns ErrNotFound for an absent id. Update returns ErrNotFound
// when no stored row matches the entity id, so a write against non-persisted
// data never silently succeeds. Delete is a no-op for an absent id.
type Repository[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id int64) (T, error)
	Add(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

// CVRepo extends the generic contract with experience ownership operations.
// Delete removes the CV's experience rows before the CV row itself; the
// schema does not cascade.
type CVRepo interface {
	Repository[CV]
	GetExperiences(ctx context.Context, cvID int64) ([]ExperienceInformation, error)
	AddExperience(ctx context.Context, cvID int64, exp ExperienceInformation) (ExperienceInformation, error)
	RemoveExperience(ctx context.Context, cvID, experienceID int64) error
	HasExperience(ctx context.Context, cvID, experienceID int64) (bool, error)
}

// Store bundles the entity repositories behind one transactional boundary.
//
// WithinTx runs fn against transaction-bound repositories and commits only if
// fn returns nil; any error aborts every write made inside fn. The
// transaction is released on every exit path.
type Store interface {
	CVs() CVRepo
	PersonalInfo() Repository[PersonalInformation]
	Experiences() Repository[ExperienceInformation]
	WithinTx(ctx context.Context, fn func(Store) error) error
}
