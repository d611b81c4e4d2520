// Command shopper runs a headless storefront session against the API: it
// loads the catalog, puts products in the basket and checks out through the
// same intent events a browser view would emit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Lixing-Zhang/storefront/internal/apiclient"
	"github.com/Lixing-Zhang/storefront/internal/cart"
	"github.com/Lixing-Zhang/storefront/internal/catalog"
	"github.com/Lixing-Zhang/storefront/internal/checkout"
	"github.com/Lixing-Zhang/storefront/internal/config"
	"github.com/Lixing-Zhang/storefront/internal/eventbus"
	"github.com/Lixing-Zhang/storefront/internal/eventstream"
	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/Lixing-Zhang/storefront/pkg/logger"
)

// step is one intent a browser view would emit
type step struct {
	name    string
	payload any
}

type options struct {
	payment string
	address string
	email   string
	phone   string
	fake    bool
	ids     []string
}

func main() {
	var opts options
	flag.StringVar(&opts.payment, "payment", string(models.PaymentOnline), "payment method: online or receive")
	flag.StringVar(&opts.address, "address", "", "delivery address")
	flag.StringVar(&opts.email, "email", "", "contact email")
	flag.StringVar(&opts.phone, "phone", "", "contact phone, +7 followed by 10 digits")
	flag.BoolVar(&opts.fake, "fake-order", false, "accept the order locally instead of posting it")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [product-id ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	opts.ids = flag.Args()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, log); err != nil {
		log.Error("checkout failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, log *slog.Logger) error {
	if !models.PaymentMethod(opts.payment).Known() {
		return errors.Errorf("unknown payment method %q, want %s or %s", opts.payment, models.PaymentOnline, models.PaymentReceive)
	}

	session := uuid.NewString()
	log = log.With("session", session)

	bus := eventbus.New()
	if logger.ParseLevel(cfg.LogLevel) == slog.LevelDebug {
		bus.SubscribeAll(eventbus.Trace(log))
	}

	if len(cfg.Stream.Brokers) > 0 {
		publisher := eventstream.New(eventstream.NewWriter(cfg.Stream.Brokers, cfg.Stream.Topic), session, log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("failed to flush event stream", "error", err)
			}
		}()
		bus.SubscribeAll(publisher.Handler())
		log.Info("exporting events", "brokers", cfg.Stream.Brokers, "topic", cfg.Stream.Topic)
	}

	client := apiclient.New(cfg.API.URL, cfg.API.CDNURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(log),
	)
	var placer checkout.OrderPlacer = client
	if opts.fake {
		placer = apiclient.FakePlacer{}
	}

	products := catalog.New(bus)
	basket := cart.New(bus)
	coordinator := checkout.New(bus, products, basket, placer,
		checkout.WithLogger(log),
		checkout.WithResetOnFailure(cfg.Checkout.ResetOnFailure),
		checkout.WithSubmitTimeout(cfg.Checkout.SubmitTimeout),
	)
	coordinator.Start()
	defer coordinator.Stop()

	var confirmed *models.SuccessView
	eventbus.On(bus, models.EventViewSuccess, func(ctx context.Context, v models.SuccessView) error {
		confirmed = &v
		return nil
	})
	eventbus.On(bus, models.EventViewPaymentForm, formReporter(log, "payment"))
	eventbus.On(bus, models.EventViewContactForm, formReporter(log, "contact"))
	eventbus.On(bus, models.EventViewBasket, func(ctx context.Context, v models.BasketView) error {
		log.InfoContext(ctx, "basket", "items", len(v.Items), "total", v.TotalText)
		return nil
	})

	list, err := client.ListProducts(ctx)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	if err := products.SetAll(ctx, list); err != nil {
		return err
	}
	log.InfoContext(ctx, "catalog loaded", "products", len(list))

	ids := opts.ids
	if len(ids) == 0 {
		for _, p := range list {
			if p.Purchasable() {
				ids = []string{p.ID}
				break
			}
		}
	}
	if len(ids) == 0 {
		return errors.New("no product can be bought")
	}

	var steps []step
	for _, id := range ids {
		steps = append(steps,
			step{models.EventProductSelect, models.ProductRef{ID: id}},
			step{models.EventPreviewAdd, models.ProductRef{ID: id}},
		)
	}
	steps = append(steps,
		step{models.EventBasketOpen, nil},
		step{models.EventBasketOrder, nil},
		step{models.EventPaymentInput, models.PaymentInfo{Payment: models.PaymentMethod(opts.payment), Address: opts.address}},
		step{models.EventPaymentSubmit, nil},
		step{models.EventContactInput, models.ContactInfo{Email: opts.email, Phone: opts.phone}},
		step{models.EventContactSubmit, nil},
	)

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := bus.Emit(ctx, s.name, s.payload); err != nil {
			return errors.Wrapf(err, "emit %s", s.name)
		}
	}

	if confirmed == nil {
		return errors.Errorf("checkout stopped at stage %s", coordinator.Stage())
	}
	log.InfoContext(ctx, "order confirmed", "order_id", confirmed.OrderID, "text", confirmed.Text)
	return nil
}

func formReporter(log *slog.Logger, form string) func(context.Context, models.FormState) error {
	return func(ctx context.Context, s models.FormState) error {
		if s.ErrorText != "" {
			log.WarnContext(ctx, "form invalid", "form", form, "error", s.ErrorText)
		}
		return nil
	}
}
