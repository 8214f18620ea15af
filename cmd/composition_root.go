package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	httpadapter "foodmarket/internal/adapters/in/http"
	"foodmarket/internal/adapters/in/ws"
	"foodmarket/internal/adapters/out/jwtauth"
	"foodmarket/internal/adapters/out/memory"
	"foodmarket/internal/adapters/out/pgrelay"
	"foodmarket/internal/adapters/out/postgres"
	"foodmarket/internal/adapters/out/rabbitmq"
	"foodmarket/internal/core/application/usecases/commands"
	"foodmarket/internal/core/application/usecases/queries"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/dispatch"
	"foodmarket/internal/jobs"

	"gorm.io/gorm"
)

// CompositionRoot owns the long-lived infrastructure and builds the use cases on top
// of it.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	gormDB     *gorm.DB
	uowFactory ports.UnitOfWorkFactory
	orders     ports.OrderRepository
	vendors    ports.VendorRepository

	auth     *jwtauth.Provider
	broker   *dispatch.Broker
	topics   *dispatch.TopicResolver
	notifier *dispatch.Notifier
	relay    *pgrelay.Relay
	rabbit   *rabbitmq.Client
}

func NewCompositionRoot(cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	auth, err := jwtauth.NewProvider(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{cfg: cfg, logger: logger, auth: auth}

	switch cfg.Storage {
	case StorageMemory:
		store := memory.NewStore()
		c.uowFactory = memory.NewUnitOfWorkFactory(store)
		c.orders = store.Orders()
		c.vendors = store.Vendors()
	case StoragePostgres:
		db, err := postgres.Open(cfg.DSN())
		if err != nil {
			return nil, err
		}
		factory := postgres.NewGormUnitOfWorkFactory(db)
		c.gormDB = db
		c.uowFactory = factory
		c.orders, c.vendors = factory.ReadRepositories()
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	var sinks []dispatch.Sink
	if cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(cfg.RabbitMQURL)
		if err != nil {
			return nil, errors.Join(err, c.Close())
		}
		c.rabbit = client
		if err = client.DeclareFanoutExchange(cfg.RabbitMQExchange); err != nil {
			return nil, errors.Join(fmt.Errorf("declare exchange %s: %w", cfg.RabbitMQExchange, err), c.Close())
		}
		sinks = append(sinks, rabbitmq.NewEventSink(client.Channel(), cfg.RabbitMQExchange))
	}
	if cfg.RelayEnabled {
		c.relay = pgrelay.NewRelay(c.gormDB, cfg.DSN(), cfg.RelayChannel, DeliverFunc(func(events []dispatch.Event) {
			c.notifier.Deliver(events)
		}), logger)
		sinks = append(sinks, c.relay)
	}

	c.broker = dispatch.NewBroker(logger)
	c.topics = dispatch.NewTopicResolver(c.vendors, logger)
	c.notifier = dispatch.NewNotifier(c.broker, c.topics, dispatch.NotifierConfig{
		Workers:   cfg.DispatchWorkers,
		QueueSize: cfg.DispatchQueueSize,
	}, logger, sinks...)

	return c, nil
}

// Notifier is started and stopped by the caller around the servers.
func (c *CompositionRoot) Notifier() *dispatch.Notifier {
	return c.notifier
}

// Relay is nil unless RELAY_ENABLED is set.
func (c *CompositionRoot) Relay() *pgrelay.Relay {
	return c.relay
}

// Close releases the broker connection and the database pool.
func (c *CompositionRoot) Close() error {
	var err error
	if c.rabbit != nil {
		err = errors.Join(err, c.rabbit.Close())
	}
	if c.gormDB != nil {
		err = errors.Join(err, postgres.Close(c.gormDB))
	}
	return err
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(c.uowFactory, c.notifier)
}

func (c *CompositionRoot) CreateVerifyPaymentCommandHandler() commands.VerifyPaymentCommandHandler {
	return commands.NewVerifyPaymentCommandHandler(c.uowFactory, c.notifier)
}

func (c *CompositionRoot) CreateUpdateVendorStatusCommandHandler() commands.UpdateVendorStatusCommandHandler {
	return commands.NewUpdateVendorStatusCommandHandler(c.uowFactory, c.notifier)
}

func (c *CompositionRoot) CreateAssignDeliveryCommandHandler() commands.AssignDeliveryCommandHandler {
	return commands.NewAssignDeliveryCommandHandler(c.uowFactory, c.notifier)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	return commands.NewClaimOrderCommandHandler(c.uowFactory, c.notifier)
}

func (c *CompositionRoot) CreatePickupOrderCommandHandler() commands.PickupOrderCommandHandler {
	return commands.NewPickupOrderCommandHandler(c.uowFactory, c.notifier)
}

func (c *CompositionRoot) CreateDeliverOrderCommandHandler() commands.DeliverOrderCommandHandler {
	return commands.NewDeliverOrderCommandHandler(c.uowFactory, c.notifier)
}

func (c *CompositionRoot) CreateReportLocationCommandHandler() commands.ReportLocationCommandHandler {
	return commands.NewReportLocationCommandHandler(c.uowFactory, c.notifier)
}

func (c *CompositionRoot) CreateExpireCheckoutsCommandHandler() commands.ExpireCheckoutsCommandHandler {
	return commands.NewExpireCheckoutsCommandHandler(c.uowFactory, c.notifier)
}

func (c *CompositionRoot) CreateCreateVendorCommandHandler() commands.CreateVendorCommandHandler {
	return commands.NewCreateVendorCommandHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateUpdateRosterCommandHandler() commands.UpdateRosterCommandHandler {
	return commands.NewUpdateRosterCommandHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateUpdateVendorProfileCommandHandler() commands.UpdateVendorProfileCommandHandler {
	return commands.NewUpdateVendorProfileCommandHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetCustomerOrdersQueryHandler() queries.GetCustomerOrdersQueryHandler {
	return queries.NewGetCustomerOrdersQueryHandler(c.orders)
}

func (c *CompositionRoot) CreateGetVendorOrdersQueryHandler() queries.GetVendorOrdersQueryHandler {
	return queries.NewGetVendorOrdersQueryHandler(c.orders, c.vendors)
}

func (c *CompositionRoot) CreateGetDeliveryOrdersQueryHandler() queries.GetDeliveryOrdersQueryHandler {
	return queries.NewGetDeliveryOrdersQueryHandler(c.orders, c.vendors)
}

func (c *CompositionRoot) CreateGetDeliveryLocationQueryHandler() queries.GetDeliveryLocationQueryHandler {
	return queries.NewGetDeliveryLocationQueryHandler(c.orders, c.vendors)
}

func (c *CompositionRoot) CreateGetMyVendorQueryHandler() queries.GetMyVendorQueryHandler {
	return queries.NewGetMyVendorQueryHandler(c.vendors)
}

func (c *CompositionRoot) CreateGetAssignedVendorsQueryHandler() queries.GetAssignedVendorsQueryHandler {
	return queries.NewGetAssignedVendorsQueryHandler(c.vendors)
}

func (c *CompositionRoot) CreateListVendorsQueryHandler() queries.ListVendorsQueryHandler {
	return queries.NewListVendorsQueryHandler(c.vendors)
}

func (c *CompositionRoot) CreateHTTPServer() (*httpadapter.Server, error) {
	return httpadapter.NewServer(httpadapter.Handlers{
		PlaceOrder:          c.CreatePlaceOrderCommandHandler(),
		VerifyPayment:       c.CreateVerifyPaymentCommandHandler(),
		UpdateVendorStatus:  c.CreateUpdateVendorStatusCommandHandler(),
		AssignDelivery:      c.CreateAssignDeliveryCommandHandler(),
		ClaimOrder:          c.CreateClaimOrderCommandHandler(),
		PickupOrder:         c.CreatePickupOrderCommandHandler(),
		DeliverOrder:        c.CreateDeliverOrderCommandHandler(),
		ReportLocation:      c.CreateReportLocationCommandHandler(),
		CreateVendor:        c.CreateCreateVendorCommandHandler(),
		UpdateRoster:        c.CreateUpdateRosterCommandHandler(),
		UpdateVendorProfile: c.CreateUpdateVendorProfileCommandHandler(),

		GetCustomerOrders:   c.CreateGetCustomerOrdersQueryHandler(),
		GetVendorOrders:     c.CreateGetVendorOrdersQueryHandler(),
		GetDeliveryOrders:   c.CreateGetDeliveryOrdersQueryHandler(),
		GetDeliveryLocation: c.CreateGetDeliveryLocationQueryHandler(),
		GetMyVendor:         c.CreateGetMyVendorQueryHandler(),
		GetAssignedVendors:  c.CreateGetAssignedVendorsQueryHandler(),
		ListVendors:         c.CreateListVendorsQueryHandler(),
	}, c.auth)
}

func (c *CompositionRoot) CreateWebSocketHandler() *ws.Handler {
	return ws.NewHandler(c.broker, c.topics, c.CreateGetDeliveryLocationQueryHandler(), c.auth,
		ws.Config{SendBuffer: c.cfg.WSSendBuffer}, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	sweep := jobs.NewExpiredCheckoutJob(c.CreateExpireCheckoutsCommandHandler(), jobs.ExpiredCheckoutConfig{
		TTL:      c.cfg.CheckoutTTL,
		Schedule: c.cfg.CheckoutSweepSchedule,
		Batch:    c.cfg.CheckoutSweepBatch,
	}, c.logger)
	return jobs.NewJobManager(c.logger, sweep)
}

// DeliverFunc adapts a function to pgrelay.LocalDeliverer.
type DeliverFunc func(events []dispatch.Event)

func (f DeliverFunc) Deliver(events []dispatch.Event) {
	f(events)
}
