package orderrepo

import (
	"context"
	"errors"
	"time"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.OrderRepository = (*GormOrderRepository)(nil)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository. db is either the pool
// or the transaction of a unit of work.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order together with its items.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewValueIsInvalidErrorWithCause("id", err)
		}
		return err
	}

	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	dto, err := r.load(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return toDomain(dto)
}

// UpdateIfMatches locks the order row with SELECT ... FOR UPDATE for the whole
// read-evaluate-write cycle. Inside a unit of work the nested transaction becomes a
// savepoint, so a failed condition leaves the outer transaction usable.
func (r *GormOrderRepository) UpdateIfMatches(
	ctx context.Context,
	id kernel.UUID,
	cond order.Condition,
	mutate order.Mutation,
) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var updated *order.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dto, err := r.load(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		current, err := toDomain(dto)
		if err != nil {
			return err
		}

		if cond != nil {
			if err = cond(current); err != nil {
				return err
			}
		}
		if mutate != nil {
			if err = mutate(current); err != nil {
				return err
			}
		}

		next, err := fromDomain(current)
		if err != nil {
			return err
		}
		if err = tx.Omit(clause.Associations).Save(&next).Error; err != nil {
			return err
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteIfMatches removes the order and its items when cond passes against the
// locked row.
func (r *GormOrderRepository) DeleteIfMatches(
	ctx context.Context,
	id kernel.UUID,
	cond order.Condition,
) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var removed *order.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dto, err := r.load(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		current, err := toDomain(dto)
		if err != nil {
			return err
		}
		if cond != nil {
			if err = cond(current); err != nil {
				return err
			}
		}

		if err = tx.Where("order_id = ?", dto.ID).Delete(&OrderItemDTO{}).Error; err != nil {
			return err
		}
		if err = tx.Delete(&OrderDTO{}, "id = ?", dto.ID).Error; err != nil {
			return err
		}

		removed = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (r *GormOrderRepository) ListByCustomer(ctx context.Context, customerID kernel.Identity) ([]*order.Order, error) {
	key := customerID.Canonical()
	if key == "" {
		return []*order.Order{}, nil
	}

	var dtos []OrderDTO
	if err := r.withItems(r.db.WithContext(ctx)).
		Where("customer_key = ?", key).
		Order("created_at DESC").Order("id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

// ListByVendorSet resolves matching order ids with a squirrel-built query over the
// item vendor keys, then loads the aggregates.
func (r *GormOrderRepository) ListByVendorSet(
	ctx context.Context,
	set kernel.IdentitySet,
	filter ports.OrderFilter,
) ([]*order.Order, error) {
	keys := set.Keys()
	if len(keys) == 0 {
		return []*order.Order{}, nil
	}

	builder := sq.Select("o.id").
		From("orders o").
		Where(sq.Expr(
			"EXISTS (SELECT 1 FROM order_items i WHERE i.order_id = o.id AND i.vendor_key = ANY(?))",
			pq.StringArray(keys),
		))
	if filter.OnlyPickup {
		builder = builder.Where(sq.Eq{
			"o.status":      []int{int(order.AcceptedByVendor), int(order.ReadyForPickup)},
			"o.claimed_key": "",
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var ids []string
	if err = r.db.WithContext(ctx).Raw(query, args...).Scan(&ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*order.Order{}, nil
	}

	var dtos []OrderDTO
	if err = r.withItems(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("created_at DESC").Order("id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

// ListExpiredCheckouts returns unpaid Processing orders created before cutoff.
func (r *GormOrderRepository) ListExpiredCheckouts(ctx context.Context, cutoff time.Time, limit int) ([]*order.Order, error) {
	query := r.withItems(r.db.WithContext(ctx)).
		Where("status = ? AND payment_confirmed = ? AND created_at < ?", int(order.Processing), false, cutoff.UTC()).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []OrderDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormOrderRepository) load(db *gorm.DB, id kernel.UUID) (OrderDTO, error) {
	var dto OrderDTO
	if err := r.withItems(db).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, errs.NewObjectNotFoundError("order", id.String())
		}
		return OrderDTO{}, err
	}
	return dto, nil
}

func (r *GormOrderRepository) withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

func toDomainList(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
