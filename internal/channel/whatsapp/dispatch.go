package whatsapp

import (
	"context"
	"time"

	"github.com/mfcastro/juniorbot/internal/config"
	"github.com/mfcastro/juniorbot/internal/domain"
	"github.com/mfcastro/juniorbot/internal/logging"
)

// Dispatcher delivers outbound messages through the session. Single sends
// may run concurrently with an in-progress bulk dispatch; bulk dispatch
// itself is strictly sequential with a mandatory inter-message delay, as
// backpressure against the network's anti-abuse limits. Do not parallelize.
type Dispatcher struct {
	sess        *Session
	delay       time.Duration
	sendTimeout time.Duration
	log         *logging.Logger
}

// NewDispatcher creates a dispatcher over the session with the configured
// throttling knobs.
func NewDispatcher(sess *Session, cfg config.WhatsAppConfig, log *logging.Logger) *Dispatcher {
	delay := time.Duration(cfg.BulkDelayMS) * time.Millisecond
	if cfg.BulkDelayMS == 0 {
		delay = 5 * time.Second
	}
	timeout := time.Duration(cfg.SendTimeoutMS) * time.Millisecond
	if cfg.SendTimeoutMS == 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		sess:        sess,
		delay:       delay,
		sendTimeout: timeout,
		log:         log.Sub("dispatch"),
	}
}

// DefaultDelay returns the configured inter-message delay for bulk sends.
func (d *Dispatcher) DefaultDelay() time.Duration { return d.delay }

// SendOne delivers a single message. The recipient is normalized to the
// individual-contact address form. Returns ErrNotReady before the session
// handshake completes, or a SendError carrying the network cause.
func (d *Dispatcher) SendOne(ctx context.Context, to, body string) error {
	if !d.sess.Ready() {
		d.log.Warn().Str("to", to).Msg("client not ready, message not sent")
		return ErrNotReady
	}

	addr := NormalizeUser(to)

	sctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.sess.net.SendMessage(sctx, addr, body); err != nil {
		d.log.Error().Err(err).Str("to", addr).Msg("send failed")
		return &SendError{To: addr, Cause: err}
	}

	d.log.Debug().Str("to", addr).Msg("message sent")
	return nil
}

// SendBulk delivers body to every recipient, strictly one at a time,
// waiting delay between consecutive sends. A negative delay selects the
// configured default. One recipient's failure never aborts the batch;
// cancellation via ctx stops further sends, marking the remaining
// recipients failed while keeping every outcome already recorded. On
// return Sent+Failed equals len(numbers) and Details has one entry per
// recipient, in order.
func (d *Dispatcher) SendBulk(ctx context.Context, numbers []string, body string, delay time.Duration) domain.BulkReport {
	if delay < 0 {
		delay = d.delay
	}

	if !d.sess.Ready() {
		d.log.Warn().Int("recipients", len(numbers)).Msg("client not ready, bulk send skipped")
		report := domain.BulkReport{Success: false, Failed: len(numbers)}
		now := time.Now()
		for _, number := range numbers {
			report.Details = append(report.Details, domain.Delivery{
				Number:    number,
				Status:    domain.DeliveryFailed,
				Error:     ErrNotReady.Error(),
				Timestamp: now,
			})
		}
		return report
	}

	report := domain.BulkReport{Success: true}

	for i, number := range numbers {
		if i > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
		}

		if err := ctx.Err(); err != nil {
			d.log.Warn().Err(err).Int("remaining", len(numbers)-i).Msg("bulk send cancelled")
			now := time.Now()
			for _, rest := range numbers[i:] {
				report.Failed++
				report.Details = append(report.Details, domain.Delivery{
					Number:    rest,
					Status:    domain.DeliveryFailed,
					Error:     err.Error(),
					Timestamp: now,
				})
			}
			break
		}

		addr := NormalizeUser(number)

		sctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := d.sess.net.SendMessage(sctx, addr, body)
		cancel()

		if err != nil {
			d.log.Error().Err(err).Str("number", number).Msg("bulk recipient failed")
			report.Failed++
			report.Details = append(report.Details, domain.Delivery{
				Number:    number,
				Status:    domain.DeliveryFailed,
				Error:     err.Error(),
				Timestamp: time.Now(),
			})
			continue
		}

		report.Sent++
		report.Details = append(report.Details, domain.Delivery{
			Number:    number,
			Status:    domain.DeliverySent,
			Timestamp: time.Now(),
		})
	}

	d.log.Info().
		Int("sent", report.Sent).
		Int("failed", report.Failed).
		Msg("bulk send finished")
	return report
}
