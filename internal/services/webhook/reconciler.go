package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/slogantech/intelliweb/internal/lib/sl"
	"github.com/slogantech/intelliweb/internal/models"
)

var eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "intelliweb_webhook_events_total",
	Help: "Webhook events by processing outcome.",
}, []string{"outcome"})

// Ledger описывает операции журнала подписок, нужные обработчику вебхуков.
type Ledger interface {
	ApplyTransition(ctx context.Context, t models.SubscriptionTransition) error
	SubjectByExternalRef(ctx context.Context, externalRef string) (string, error)
}

// DedupStore — окно дедупликации идентификаторов событий.
// AddOnce обязан быть атомарным: две конкурирующие доставки одного
// события не должны обе пройти проверку.
type DedupStore interface {
	AddOnce(ctx context.Context, key string, window time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Config — параметры проверки и применения событий.
// Секрет процесс-уровневый и передаётся при создании, а не через глобальное
// состояние, чтобы тесты могли подставлять свои секреты.
type Config struct {
	Secret      string                 // Общий секрет подписи вебхуков
	DedupWindow time.Duration          // TTL окна дедупликации
	Tolerance   time.Duration          // Допустимый возраст подписи, 0 — без проверки
	PriceTiers  map[string]models.Tier // Отображение идентификатора цены в уровень
}

// Reconciler применяет события жизненного цикла платёжного провайдера
// к журналу подписок идемпотентно и с защитой от доставки вне очереди.
type Reconciler struct {
	log    *slog.Logger
	ledger Ledger
	dedup  DedupStore
	cfg    Config
}

// New создаёт Reconciler.
func New(log *slog.Logger, ledger Ledger, dedup DedupStore, cfg Config) *Reconciler {
	return &Reconciler{
		log:    log,
		ledger: ledger,
		dedup:  dedup,
		cfg:    cfg,
	}
}

// Process обрабатывает сырое тело вебхука с заголовком подписи.
//
// Возвращаемые ошибки классифицированы: models.ErrUnauthenticatedEvent и
// models.ErrMalformedEvent постоянны (ответ 4xx, провайдер не повторяет),
// models.ErrStorageUnavailable временна (ответ 5xx, провайдер повторит
// доставку; повтор безопасен благодаря окну дедупликации).
func (r *Reconciler) Process(ctx context.Context, body []byte, signatureHeader string) error {
	const op = "webhook.Process"
	log := r.log.With(slog.String("op", op))

	if !verifySignature(r.cfg.Secret, body, signatureHeader, r.cfg.Tolerance, time.Now()) {
		eventsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%s: %w", op, models.ErrUnauthenticatedEvent)
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		eventsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%s: %w", op, models.ErrMalformedEvent)
	}
	if event.ID == "" || event.Type == "" {
		eventsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%s: %w", op, models.ErrMalformedEvent)
	}
	log = log.With(slog.String("event_id", event.ID), slog.String("event_type", event.Type))

	transition, ok, err := r.mapEvent(&event)
	if err != nil {
		eventsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		log.Info("ignored webhook event")
		eventsTotal.WithLabelValues("ignored").Inc()
		return nil
	}

	dedupKey := "webhook:event:" + event.ID
	fresh, err := r.dedup.AddOnce(ctx, dedupKey, r.cfg.DedupWindow)
	if err != nil {
		eventsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	if !fresh {
		log.Info("duplicate webhook event, acknowledged without reprocessing")
		eventsTotal.WithLabelValues("duplicate").Inc()
		return nil
	}

	if err = r.apply(ctx, log, transition); err != nil {
		// Снимаем регистрацию, чтобы повторная доставка после сбоя
		// не была отброшена как дубликат.
		if relErr := r.dedup.Release(ctx, dedupKey); relErr != nil {
			log.Error("failed to release dedup key", sl.Err(relErr))
		}
		eventsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	return nil
}

// mapEvent переводит тип события в целевой переход (уровень, статус).
// Возвращает ok=false для событий, которые обработчик игнорирует.
func (r *Reconciler) mapEvent(event *Event) (models.SubscriptionTransition, bool, error) {
	const op = "webhook.mapEvent"
	t := models.SubscriptionTransition{
		UserUID:     event.Data.Object.Metadata["user_uid"],
		ExternalRef: event.externalRef(),
		EffectiveAt: time.Unix(event.Created, 0).UTC(),
	}

	switch event.Type {
	case SubscriptionCreated, SubscriptionUpdated:
		tier, ok := r.cfg.PriceTiers[event.priceID()]
		if !ok {
			return t, false, fmt.Errorf("%s: unknown price %q: %w", op, event.priceID(), models.ErrMalformedEvent)
		}
		t.Tier = tier
		switch event.Data.Object.Status {
		case "active", "trialing":
			t.Status = models.StatusActive
		case "past_due":
			t.Status = models.StatusPastDue
		case "canceled", "unpaid", "incomplete_expired":
			t.Status = models.StatusCanceled
		default:
			return t, false, nil
		}
	case InvoicePaymentFailed:
		// Уровень не меняется: он разрешается из текущей записи внутри транзакции.
		t.Status = models.StatusPastDue
	case SubscriptionDeleted:
		t.Status = models.StatusCanceled
	default:
		return t, false, nil
	}
	return t, true, nil
}

// apply разрешает субъекта события и применяет переход к журналу.
// Переход, устаревший относительно текущей записи, подтверждается без применения.
func (r *Reconciler) apply(ctx context.Context, log *slog.Logger, t models.SubscriptionTransition) error {
	const op = "webhook.apply"

	if t.UserUID == "" {
		uid, err := r.ledger.SubjectByExternalRef(ctx, t.ExternalRef)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				log.Warn("webhook event for unknown subscription, acknowledged",
					slog.String("external_ref", t.ExternalRef))
				eventsTotal.WithLabelValues("ignored").Inc()
				return nil
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		t.UserUID = uid
	}

	if err := r.ledger.ApplyTransition(ctx, t); err != nil {
		if errors.Is(err, models.ErrStaleTransition) {
			log.Info("out-of-order webhook event, acknowledged without applying",
				slog.Time("effective_at", t.EffectiveAt))
			eventsTotal.WithLabelValues("stale").Inc()
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	eventsTotal.WithLabelValues("applied").Inc()
	return nil
}
