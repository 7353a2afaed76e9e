package http

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"invprov/internal/application/provisioning/services"
	"invprov/internal/application/provisioning/usecases"
	"invprov/internal/domain/inventory"
	"invprov/internal/infrastructure/config"
	"invprov/internal/infrastructure/lock"
	"invprov/internal/infrastructure/repository"
	"invprov/internal/interfaces/http/handlers"
	provisioninghandlers "invprov/internal/interfaces/http/handlers/provisioning"
	"invprov/internal/shared/db"
	"invprov/internal/shared/logger"
)

// Container wires the store, allocation locks, domain services and use cases
// behind the HTTP router. Shutdown releases what it opened.
type Container struct {
	db    *gorm.DB
	cfg   *config.Config
	log   logger.Interface
	redis *redis.Client

	store inventory.GraphStore
	tx    *db.TransactionManager

	UseCases *UseCases
	router   *Router
}

// UseCases groups the provisioning actions so the CLI can share the wiring.
type UseCases struct {
	CreateService    *usecases.CreateServiceUseCase
	ModifyService    *usecases.ModifyServiceUseCase
	ChangeStatus     *usecases.ChangeServiceStatusUseCase
	DeleteService    *usecases.DeleteServiceUseCase
	TransferAccount  *usecases.TransferAccountUseCase
	RenameSubscriber *usecases.RenameSubscriberUseCase
	GetService       *usecases.GetServiceUseCase
	AllocateVLAN     *usecases.AllocateVLANUseCase
	SeedInventory    *usecases.SeedInventoryUseCase
}

func NewContainer(ctx context.Context, database *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		db:  database,
		cfg: cfg,
		log: log,
	}

	locker, err := c.newLocker(ctx)
	if err != nil {
		return nil, err
	}

	vlanRange := services.VLANRange{
		Start: cfg.Allocation.VLANRangeStart,
		End:   cfg.Allocation.VLANRangeEnd,
	}
	if err := vlanRange.Validate(); err != nil {
		return nil, err
	}

	c.store = repository.NewGraphStoreRepository(database, logger.WithComponent("graphstore"))
	c.tx = db.NewTransactionManager(database)

	resolver := services.NewResolver(c.store, logger.WithComponent("resolver"))
	allocator := services.NewAllocator(c.store, locker, vlanRange, logger.WithComponent("allocator"))
	cascade := services.NewCascade(c.store, logger.WithComponent("cascade"))
	reclaimer := services.NewReclaimer(c.store, logger.WithComponent("reclaimer"))

	ucLog := logger.WithComponent("provisioning")
	c.UseCases = &UseCases{
		CreateService:    usecases.NewCreateServiceUseCase(c.store, resolver, allocator, c.tx, ucLog),
		ModifyService:    usecases.NewModifyServiceUseCase(c.store, cascade, c.tx, ucLog),
		ChangeStatus:     usecases.NewChangeServiceStatusUseCase(c.store, c.tx, ucLog),
		DeleteService:    usecases.NewDeleteServiceUseCase(reclaimer, c.tx, ucLog),
		TransferAccount:  usecases.NewTransferAccountUseCase(c.store, resolver, cascade, c.tx, ucLog),
		RenameSubscriber: usecases.NewRenameSubscriberUseCase(resolver, cascade, c.tx, ucLog),
		GetService:       usecases.NewGetServiceUseCase(c.store, ucLog),
		AllocateVLAN:     usecases.NewAllocateVLANUseCase(allocator, ucLog),
		SeedInventory:    usecases.NewSeedInventoryUseCase(resolver, c.tx, ucLog),
	}

	return c, nil
}

// newLocker returns a Redis locker when Redis is enabled, in-process locks otherwise.
func (c *Container) newLocker(ctx context.Context) (services.Locker, error) {
	if !c.cfg.Redis.Enabled {
		c.log.Infow("redis disabled, using in-process allocation locks")
		return lock.NewLocalLocker(), nil
	}

	c.redis = redis.NewClient(&redis.Options{
		Addr:     c.cfg.Redis.GetAddr(),
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})
	if err := c.redis.Ping(ctx).Err(); err != nil {
		_ = c.redis.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", c.cfg.Redis.GetAddr(), err)
	}
	c.log.Infow("using redis allocation locks", "addr", c.cfg.Redis.GetAddr())
	return lock.NewRedisLocker(c.redis, c.cfg.Allocation.LockTTL(), logger.WithComponent("redislocker")), nil
}

// Router builds the HTTP router on first use.
func (c *Container) Router() (*Router, error) {
	if c.router != nil {
		return c.router, nil
	}

	sqlDB, err := c.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	uc := c.UseCases
	provisioningHandler := provisioninghandlers.NewHandler(
		uc.CreateService,
		uc.ModifyService,
		uc.ChangeStatus,
		uc.DeleteService,
		uc.TransferAccount,
		uc.RenameSubscriber,
		uc.GetService,
		uc.AllocateVLAN,
		uc.SeedInventory,
		logger.WithComponent("http"),
	)

	c.router = NewRouter(provisioningHandler, handlers.NewHealthHandler(sqlDB), c.log)
	c.router.SetupRoutes()
	return c.router, nil
}

// Shutdown closes the Redis client if one was opened. The database is owned by the caller.
func (c *Container) Shutdown() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}
