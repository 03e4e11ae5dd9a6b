package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/repository"
)

// VaccineSpec is one seed entry for the catalog.
type VaccineSpec struct {
	Name        string
	Description string
	AgeMonths   int
	DoseNumber  int
	Required    bool
}

// DefaultCatalog is the standard childhood schedule seeded on first start.
var DefaultCatalog = []VaccineSpec{
	{"Hepatitis B", "Protects against hepatitis B virus infection", 0, 1, true},
	{"DTaP", "Diphtheria, Tetanus, Pertussis vaccine", 2, 1, true},
	{"Hib", "Haemophilus influenzae type b vaccine", 2, 1, true},
	{"IPV", "Inactivated Poliovirus vaccine", 2, 1, true},
	{"PCV13", "Pneumococcal conjugate vaccine", 2, 1, true},
	{"Rotavirus", "Protects against rotavirus infection", 2, 1, true},
	{"MMR", "Measles, Mumps, Rubella vaccine", 12, 1, true},
	{"Varicella", "Chickenpox vaccine", 12, 1, true},
	{"Hepatitis A", "Protects against hepatitis A virus infection", 12, 1, true},
	{"Meningococcal", "Protects against meningococcal disease", 12, 1, true},
}

// CatalogService provides helpers around the vaccine catalog.
type CatalogService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewCatalogService(store *repository.Store, log *zap.Logger) *CatalogService {
	return &CatalogService{store: store, log: log}
}

func (s *CatalogService) List(ctx context.Context) ([]model.Vaccine, error) {
	return s.store.Vaccines.ListAll(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*model.Vaccine, error) {
	return s.store.Vaccines.FindByID(ctx, id)
}

// Seed inserts every spec whose name is not in the catalog yet and
// returns how many were added.
func (s *CatalogService) Seed(ctx context.Context, specs []VaccineSpec) (int, error) {
	added := 0
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		for _, spec := range specs {
			vaccine, err := model.NewVaccine(spec.Name, spec.Description, spec.AgeMonths, spec.DoseNumber, spec.Required)
			if err != nil {
				return fmt.Errorf("seed %q: %w", spec.Name, err)
			}
			if _, ok, err := tx.Vaccines.FindByName(ctx, vaccine.Name); err != nil {
				return err
			} else if ok {
				continue
			}
			if err := tx.Vaccines.Create(ctx, &vaccine); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if added > 0 {
		s.log.Info("catalog seeded", zap.Int("added", added))
	}
	return added, nil
}
