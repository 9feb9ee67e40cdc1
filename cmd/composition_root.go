package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/deliverydir"
	"orderflow/internal/adapters/out/postgres/webhookrepo"
	"orderflow/internal/adapters/out/webhook"
	"orderflow/internal/cache"
	"orderflow/internal/core/application/services"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/notifications"
	"orderflow/internal/pkg/keymutex"
)

// CompositionRoot wires the adapter stack into command and query handlers.
// All write handlers share one keyed mutex and one effect runner so that
// per-order serialization and post-commit side effects behave the same on
// every path.
type CompositionRoot struct {
	config      Config
	gormDB      *gorm.DB
	uowFactory  postgres.GormUnitOfWorkFactory
	coordinator *cache.Coordinator
	hub         *notifications.Hub
	effects     commands.EffectRunner
	locks       *keymutex.KeyMutex
	logger      *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	coordinator := cache.NewCoordinator(config.CacheTTL, 2*config.CacheTTL, logger)
	hub := notifications.NewHub(config.NotificationBufferSize, logger)

	dispatcher, err := webhook.NewDispatcher(webhookrepo.NewGormWebhookSubscriptionRepository(gormDB), logger)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("failed to build webhook dispatcher: %w", err)
	}

	effects, err := services.NewEffectRunner(coordinator, hub, dispatcher, logger,
		services.WithDeliveryPersonDirectory(deliverydir.NewGormDeliveryPersonDirectory(gormDB)))
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("failed to build effect runner: %w", err)
	}

	return CompositionRoot{
		config:      config,
		gormDB:      gormDB,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		coordinator: coordinator,
		hub:         hub,
		effects:     effects,
		locks:       keymutex.New(0),
		logger:      logger,
	}, nil
}

// Hub exposes the notification hub for the websocket endpoint.
func (c *CompositionRoot) Hub() *notifications.Hub {
	return c.hub
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.effects)
}

func (c *CompositionRoot) CreateRequestOrderTransitionCommandHandler() commands.RequestOrderTransitionCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRequestOrderTransitionCommandHandler(f, c.locks, c.effects)
}

func (c *CompositionRoot) CreateAssignDeliveryPersonCommandHandler() commands.AssignDeliveryPersonCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignDeliveryPersonCommandHandler(f, c.locks, c.effects)
}

func (c *CompositionRoot) CreateArchiveOrderCommandHandler() commands.ArchiveOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewArchiveOrderCommandHandler(f, c.locks, c.effects)
}

func (c *CompositionRoot) CreateVerifyReceiptCommandHandler() commands.VerifyReceiptCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewVerifyReceiptCommandHandler(f, c.locks, c.effects)
}

func (c *CompositionRoot) CreateUpdateDeliveryLocationCommandHandler() commands.UpdateDeliveryLocationCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateDeliveryLocationCommandHandler(f, c.locks, c.effects)
}

func (c *CompositionRoot) CreateRegisterWebhookSubscriptionCommandHandler() commands.RegisterWebhookSubscriptionCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRegisterWebhookSubscriptionCommandHandler(f)
}

func (c *CompositionRoot) CreateFlagStaleLocationsCommandHandler() (commands.FlagStaleLocationsCommandHandler, error) {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	alerter := hubStaleLocationAlerter{hub: c.hub}
	return commands.NewFlagStaleLocationsCommandHandler(f, alerter, c.config.StaleLocationMaxAge)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB, c.coordinator, c.config.CacheTTL)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB, c.coordinator, c.config.CacheTTL)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// hubStaleLocationAlerter publishes stale location findings to the admin
// subscriber group.
type hubStaleLocationAlerter struct {
	hub *notifications.Hub
}

func (a hubStaleLocationAlerter) AlertStaleLocation(_ context.Context, orderID int64, _ *time.Time) {
	a.hub.Publish(notifications.GroupAdmin, notifications.Event{
		OrderID:   orderID,
		Status:    "location_stale",
		Timestamp: time.Now().UTC(),
	})
}
