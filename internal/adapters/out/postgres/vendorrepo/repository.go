package vendorrepo

import (
	"context"
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/vendor"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.VendorRepository = (*GormVendorRepository)(nil)

// GormVendorRepository implements VendorRepository using GORM.
type GormVendorRepository struct {
	db *gorm.DB
}

func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// Add saves a new vendor with its roster. A second vendor for the same owner violates
// the owner_key unique index and is reported as a validation error.
func (r *GormVendorRepository) Add(ctx context.Context, aggregate *vendor.Vendor) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewValueIsInvalidErrorWithCause("ownerId", errors.New("owner already has a vendor"))
		}
		return err
	}

	return nil
}

func (r *GormVendorRepository) Get(ctx context.Context, id kernel.UUID) (*vendor.Vendor, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(r.db.WithContext(ctx), "vendor", id.String(), "id = ?", id.Bytes())
}

// UpdateWith locks the vendor row, applies mutate and rewrites the roster.
func (r *GormVendorRepository) UpdateWith(
	ctx context.Context,
	id kernel.UUID,
	mutate func(v *vendor.Vendor) error,
) (*vendor.Vendor, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var updated *vendor.Vendor
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := r.first(tx.Clauses(clause.Locking{Strength: "UPDATE"}), "vendor", id.String(), "id = ?", id.Bytes())
		if err != nil {
			return err
		}
		if err = mutate(current); err != nil {
			return err
		}

		dto := fromDomain(current)
		if err = tx.Omit(clause.Associations).Save(&dto).Error; err != nil {
			return err
		}
		if err = tx.Where("vendor_id = ?", dto.ID).Delete(&RosterEntryDTO{}).Error; err != nil {
			return err
		}
		if len(dto.Roster) > 0 {
			if err = tx.Create(&dto.Roster).Error; err != nil {
				return err
			}
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *GormVendorRepository) List(ctx context.Context) ([]*vendor.Vendor, error) {
	var dtos []VendorDTO
	if err := r.withRoster(r.db.WithContext(ctx)).Order("name").Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

// FindByRef resolves an item vendor reference: a UUID-shaped ref is tried as the record
// id first, anything else (or a miss) is looked up as the owner id.
func (r *GormVendorRepository) FindByRef(ctx context.Context, ref kernel.Identity) (*vendor.Vendor, error) {
	key := ref.Canonical()
	if key == "" {
		return nil, errs.NewObjectNotFoundError("vendorRef", ref.String())
	}

	db := r.db.WithContext(ctx)
	if id, err := kernel.UUIDFromString(key); err == nil {
		v, findErr := r.first(db, "vendorRef", ref.String(), "id = ?", id.Bytes())
		if findErr == nil || !errors.Is(findErr, errs.ErrObjectNotFound) {
			return v, findErr
		}
	}
	return r.first(db, "vendorRef", ref.String(), "owner_key = ?", key)
}

func (r *GormVendorRepository) GetByOwner(ctx context.Context, owner kernel.Identity) (*vendor.Vendor, error) {
	key := owner.Canonical()
	if key == "" {
		return nil, errs.NewObjectNotFoundError("ownerId", owner.String())
	}
	return r.first(r.db.WithContext(ctx), "ownerId", owner.String(), "owner_key = ?", key)
}

// ListByRosterMember matches the agent on the canonical roster key.
func (r *GormVendorRepository) ListByRosterMember(ctx context.Context, agent kernel.Identity) ([]*vendor.Vendor, error) {
	key := agent.Canonical()
	if key == "" {
		return []*vendor.Vendor{}, nil
	}

	query, args, err := sq.Select("vendor_id").
		From("vendor_roster").
		Where(sq.Eq{"agent_key": key}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var dtos []VendorDTO
	if err = r.withRoster(r.db.WithContext(ctx)).
		Where("id IN (?)", gorm.Expr(query, args...)).
		Order("name").Order("id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormVendorRepository) first(db *gorm.DB, param string, shown any, where string, args ...any) (*vendor.Vendor, error) {
	var dto VendorDTO
	if err := r.withRoster(db).Where(where, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(param, shown)
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormVendorRepository) withRoster(db *gorm.DB) *gorm.DB {
	return db.Preload("Roster", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

func toDomainList(dtos []VendorDTO) ([]*vendor.Vendor, error) {
	vendors := make([]*vendor.Vendor, 0, len(dtos))
	for _, dto := range dtos {
		v, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, nil
}
