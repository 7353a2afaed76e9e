package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invprov/internal/domain/inventory"
	"invprov/internal/infrastructure/persistence/mappers"
	"invprov/internal/infrastructure/persistence/models"
	"invprov/internal/shared/db"
	apperrors "invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
)

// likeEscape is used instead of backslash, whose literal form differs between MySQL and SQLite.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// GraphStoreRepository implements inventory.GraphStore on one gorm table.
type GraphStoreRepository struct {
	db     *gorm.DB
	mapper mappers.EntityMapper
	logger logger.Interface
}

var _ inventory.GraphStore = (*GraphStoreRepository)(nil)

func NewGraphStoreRepository(db *gorm.DB, logger logger.Interface) *GraphStoreRepository {
	return &GraphStoreRepository{
		db:     db,
		mapper: mappers.NewEntityMapper(),
		logger: logger,
	}
}

func (r *GraphStoreRepository) FindByName(ctx context.Context, kind inventory.Kind, name string) (*inventory.Entity, error) {
	return r.findByName(ctx, db.GetTxFromContext(ctx, r.db), kind, name)
}

// FindByNameForUpdate issues a locking read. On MySQL a locking read sees rows committed
// after the transaction's snapshot; SQLite serializes writers and ignores the clause.
func (r *GraphStoreRepository) FindByNameForUpdate(ctx context.Context, kind inventory.Kind, name string) (*inventory.Entity, error) {
	tx := db.GetTxFromContext(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findByName(ctx, tx, kind, name)
}

func (r *GraphStoreRepository) findByName(ctx context.Context, tx *gorm.DB, kind inventory.Kind, name string) (*inventory.Entity, error) {
	var model models.InventoryEntityModel

	if err := tx.WithContext(ctx).Where("kind = ? AND name = ?", string(kind), name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to find entity", "kind", kind, "name", name, "error", err)
		return nil, unavailable("find entity", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *GraphStoreRepository) Create(ctx context.Context, entity *inventory.Entity) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return err
	}
	model.ID = 0
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return inventory.ErrNameInUse(entity.Kind(), entity.Name())
		}
		r.logger.Errorw("failed to create entity", "kind", entity.Kind(), "name", entity.Name(), "error", err)
		return unavailable("create entity", err)
	}

	return entity.SetID(model.ID)
}

// Save inserts entities without an ID and otherwise updates the row whose version
// still matches, bumping the version.
func (r *GraphStoreRepository) Save(ctx context.Context, entity *inventory.Entity) error {
	if entity.ID() == 0 {
		return r.Create(ctx, entity)
	}

	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return err
	}
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.InventoryEntityModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"parent":     model.Parent,
			"refs":       model.Refs,
			"properties": model.Properties,
			"version":    gorm.Expr("version + 1"),
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return inventory.ErrNameInUse(entity.Kind(), entity.Name())
		}
		r.logger.Errorw("failed to update entity", "id", model.ID, "error", result.Error)
		return unavailable("update entity", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s (id=%d, version=%d)", inventory.ErrConcurrentUpdate, entity.Ref(), model.ID, model.Version)
	}

	entity.IncrementVersion()
	return nil
}

func (r *GraphStoreRepository) Delete(ctx context.Context, entity *inventory.Entity) error {
	tx := db.GetTxFromContext(ctx, r.db)

	query := tx.Where("kind = ? AND name = ?", string(entity.Kind()), entity.Name())
	if entity.ID() != 0 {
		query = tx.Where("id = ?", entity.ID())
	}
	result := query.Delete(&models.InventoryEntityModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete entity", "kind", entity.Kind(), "name", entity.Name(), "error", result.Error)
		return unavailable("delete entity", result.Error)
	}
	if result.RowsAffected == 0 {
		return inventory.ErrEntityNotFound(entity.Kind(), entity.Name())
	}
	return nil
}

// FindAll pushes kind, parent and name prefix into SQL. Property and reference
// predicates live inside JSON columns and are applied to the narrowed rows.
func (r *GraphStoreRepository) FindAll(ctx context.Context, filter inventory.EntityFilter) ([]*inventory.Entity, error) {
	var list []*models.InventoryEntityModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Scopes(filterScope(filter)).Order("id ASC").Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list entities", "kind", filter.Kind, "error", err)
		return nil, unavailable("list entities", err)
	}

	entities, err := r.mapper.ToDomainList(list)
	if err != nil {
		return nil, err
	}

	out := entities[:0]
	for _, e := range entities {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *GraphStoreRepository) Count(ctx context.Context, filter inventory.EntityFilter) (int64, error) {
	if filter.Property != "" || filter.Ref != nil {
		list, err := r.FindAll(ctx, filter)
		if err != nil {
			return 0, err
		}
		return int64(len(list)), nil
	}

	var count int64
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.InventoryEntityModel{}).Scopes(filterScope(filter)).Count(&count).Error; err != nil {
		r.logger.Errorw("failed to count entities", "kind", filter.Kind, "error", err)
		return 0, unavailable("count entities", err)
	}
	return count, nil
}

func filterScope(filter inventory.EntityFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if filter.Kind != "" {
			q = q.Where("kind = ?", string(filter.Kind))
		}
		if filter.Parent != nil {
			q = q.Where("parent = ?", *filter.Parent)
		}
		if filter.NamePrefix != "" {
			q = q.Where("name LIKE ? ESCAPE '"+likeEscape+"'", likeEscaper.Replace(filter.NamePrefix)+"%")
		}
		return q
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", inventory.ErrStoreUnavailable, op, err)
}
