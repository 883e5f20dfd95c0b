package cvs

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"cvmanager-backend/internal/shared/metrics"
	"cvmanager-backend/internal/shared/telemetry"
)

// Service orchestrates multi-entity CV aggregate operations. Every mutating
// operation runs all of its writes inside one Store transaction; a failing
// step aborts every write made in that transaction.
type Service struct {
	Store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{Store: store}
}

// List returns every stored CV aggregate. Aggregates for different CVs are
// assembled concurrently; a single failed fetch fails the whole listing
// rather than returning a partial list.
func (s *Service) List(ctx context.Context) ([]Aggregate, error) {
	cvList, err := s.Store.CVs().GetAll(ctx)
	if err != nil {
		telemetry.Error("cvs.list", map[string]any{"step": "get_all", "error": err.Error()})
		return nil, fmt.Errorf("list cvs: %w", err)
	}

	out := make([]Aggregate, len(cvList))
	g, gctx := errgroup.WithContext(ctx)
	for i, cv := range cvList {
		i, cv := i, cv
		g.Go(func() error {
			agg, err := s.assemble(gctx, cv)
			if err != nil {
				return err
			}
			out[i] = agg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.Error("cvs.list", map[string]any{"step": "assemble", "error": err.Error()})
		return nil, fmt.Errorf("assemble cv aggregates: %w", err)
	}
	return out, nil
}

// Get returns one CV aggregate. ErrNotFound is a normal result for an
// unknown id, not a storage failure.
func (s *Service) Get(ctx context.Context, id int64) (Aggregate, error) {
	cv, err := s.Store.CVs().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Aggregate{}, ErrNotFound
		}
		telemetry.Error("cvs.get", map[string]any{"cv_id": id, "error": err.Error()})
		return Aggregate{}, fmt.Errorf("get cv %d: %w", id, err)
	}

	agg, err := s.assemble(ctx, cv)
	if err != nil {
		telemetry.Error("cvs.get", map[string]any{"cv_id": id, "error": err.Error()})
		return Aggregate{}, fmt.Errorf("assemble cv %d: %w", id, err)
	}
	return agg, nil
}

// assemble fetches the personal information and experiences for one CV
// concurrently. The two branches read disjoint rows.
func (s *Service) assemble(ctx context.Context, cv CV) (Aggregate, error) {
	agg := Aggregate{CV: cv}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := s.Store.PersonalInfo().GetByID(gctx, cv.PersonalInformationID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// The one-to-one link is an application-level convention; a
				// dangling reference shows up as a missing section.
				return nil
			}
			return err
		}
		agg.PersonalInformation = &info
		return nil
	})
	g.Go(func() error {
		exps, err := s.Store.CVs().GetExperiences(gctx, cv.ID)
		if err != nil {
			return err
		}
		agg.Experiences = exps
		return nil
	})
	if err := g.Wait(); err != nil {
		return Aggregate{}, err
	}
	return agg, nil
}

// Create persists a new CV aggregate in one transaction: the CV row first
// (carrying the zero sentinel foreign key), then each experience stamped
// with the new CV's id, then the personal information, and finally the CV
// row again pointing at the persisted personal information. The payload must
// carry a complete personal-information section and at least one experience.
func (s *Service) Create(ctx context.Context, name string, info PersonalInformation, exps []ExperienceInformation) (Aggregate, error) {
	if name == "" || info.FullName == "" || info.MobileNumber == "" || len(exps) == 0 {
		return Aggregate{}, ErrInvalidInput
	}

	var agg Aggregate
	err := s.Store.WithinTx(ctx, func(tx Store) error {
		cv, err := tx.CVs().Add(ctx, CV{Name: name})
		if err != nil {
			return fmt.Errorf("add cv: %w", err)
		}

		// Writes share one transaction and therefore one connection, so
		// they run in order.
		created := make([]ExperienceInformation, 0, len(exps))
		for _, exp := range exps {
			exp.ID = 0
			saved, err := tx.CVs().AddExperience(ctx, cv.ID, exp)
			if err != nil {
				return fmt.Errorf("add experience for cv %d: %w", cv.ID, err)
			}
			created = append(created, saved)
		}

		savedInfo, err := tx.PersonalInfo().Add(ctx, info)
		if err != nil {
			return fmt.Errorf("add personal information: %w", err)
		}

		cv.PersonalInformationID = savedInfo.ID
		if err := tx.CVs().Update(ctx, cv); err != nil {
			return fmt.Errorf("link personal information to cv %d: %w", cv.ID, err)
		}

		agg = Aggregate{CV: cv, PersonalInformation: &savedInfo, Experiences: created}
		return nil
	})
	if err != nil {
		telemetry.Error("cvs.create", map[string]any{"error": err.Error()})
		return Aggregate{}, err
	}

	metrics.IncCVCreated()
	telemetry.Info("cvs.create", map[string]any{
		"cv_id":            agg.CV.ID,
		"experience_count": len(agg.Experiences),
	})
	return agg, nil
}

// Update replaces a CV aggregate's state. The target CV must exist; the
// check happens before the transaction and an unknown id performs no writes.
// ErrNotFound reports only an unknown CV id; any failure inside the
// transaction, including a stale section id, surfaces as a plain error.
// Experiences present in storage but absent from the payload are removed; a
// payload experience with the zero sentinel id is inserted, any other id is
// updated in place. The personal-information row and the CV row are updated
// last.
func (s *Service) Update(ctx context.Context, id int64, name string, info PersonalInformation, exps []ExperienceInformation) error {
	exists, err := s.Store.CVs().Exists(ctx, id)
	if err != nil {
		telemetry.Error("cvs.update", map[string]any{"cv_id": id, "error": err.Error()})
		return fmt.Errorf("check cv %d: %w", id, err)
	}
	if !exists {
		return ErrNotFound
	}

	err = s.Store.WithinTx(ctx, func(tx Store) error {
		current, err := tx.CVs().GetExperiences(ctx, id)
		if err != nil {
			return fmt.Errorf("get experiences for cv %d: %w", id, err)
		}

		incoming := make(map[int64]struct{}, len(exps))
		for _, exp := range exps {
			if exp.ID != 0 {
				incoming[exp.ID] = struct{}{}
			}
		}
		for _, exp := range current {
			if _, keep := incoming[exp.ID]; !keep {
				if err := tx.CVs().RemoveExperience(ctx, id, exp.ID); err != nil {
					return fmt.Errorf("remove experience %d from cv %d: %w", exp.ID, id, err)
				}
			}
		}

		for _, exp := range exps {
			exp.CVID = id
			if exp.ID == 0 {
				// The sentinel id always means insert, never "update id 0".
				if _, err := tx.CVs().AddExperience(ctx, id, exp); err != nil {
					return fmt.Errorf("add experience for cv %d: %w", id, err)
				}
				continue
			}
			// A stale experience id is a storage failure of the update as a
			// whole, not a missing CV; %v keeps ErrNotFound from escaping.
			if err := tx.Experiences().Update(ctx, exp); err != nil {
				return fmt.Errorf("update experience %d for cv %d: %v", exp.ID, id, err)
			}
		}

		if err := tx.PersonalInfo().Update(ctx, info); err != nil {
			return fmt.Errorf("update personal information %d: %v", info.ID, err)
		}

		cv := CV{ID: id, Name: name, PersonalInformationID: info.ID}
		if err := tx.CVs().Update(ctx, cv); err != nil {
			return fmt.Errorf("update cv %d: %v", id, err)
		}
		return nil
	})
	if err != nil {
		telemetry.Error("cvs.update", map[string]any{"cv_id": id, "error": err.Error()})
		return err
	}

	metrics.IncCVUpdated()
	telemetry.Info("cvs.update", map[string]any{"cv_id": id, "experience_count": len(exps)})
	return nil
}

// Delete removes a CV aggregate: experiences first, then the CV row, then
// the personal-information row, all in one transaction. The ordering matters
// because the storage layer does not cascade. An unknown id performs no
// writes.
func (s *Service) Delete(ctx context.Context, id int64) error {
	cv, err := s.Store.CVs().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		telemetry.Error("cvs.delete", map[string]any{"cv_id": id, "error": err.Error()})
		return fmt.Errorf("get cv %d: %w", id, err)
	}

	err = s.Store.WithinTx(ctx, func(tx Store) error {
		if err := tx.CVs().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete cv %d: %w", id, err)
		}
		if err := tx.PersonalInfo().Delete(ctx, cv.PersonalInformationID); err != nil {
			return fmt.Errorf("delete personal information %d: %w", cv.PersonalInformationID, err)
		}
		return nil
	})
	if err != nil {
		telemetry.Error("cvs.delete", map[string]any{"cv_id": id, "error": err.Error()})
		return err
	}

	metrics.IncCVDeleted()
	telemetry.Info("cvs.delete", map[string]any{"cv_id": id})
	return nil
}
