package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"deals_api/internal/domain/model"
	"deals_api/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

const popTimeout = 5 * time.Second

// LoadRecorder persists a load event. Implemented by service.LoadLogService.
type LoadRecorder interface {
	RecordLoad(ctx context.Context, event model.LoadEvent) (*model.DataLoadLog, error)
}

// LoadLogWorker drains load events published after CSV loads and writes data_load_logs rows.
type LoadLogWorker struct {
	rdb      *redis.Client
	recorder LoadRecorder
}

func NewLoadLogWorker(rdb *redis.Client, recorder LoadRecorder) *LoadLogWorker {
	return &LoadLogWorker{rdb: rdb, recorder: recorder}
}

var errMalformedEvent = errors.New("malformed load event")

func (w *LoadLogWorker) Start(ctx context.Context) {
	queueName := config.AppConfig.LoadEventsQueue
	log.Println("Load log worker started, listening to queue:", queueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Load log worker stopping...")
			return
		default:
			res, err := w.rdb.BRPop(ctx, popTimeout, queueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					log.Println("Load log worker context canceled during BRPop")
					return
				}
				log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", queueName, err)
				sleepCtx(ctx, 5*time.Second)
				continue
			}

			// res is [queueName, value]
			if len(res) < 2 || res[1] == "" {
				log.Println("WARN: BRPop returned an empty load event.")
				continue
			}

			if err := w.handleEvent(ctx, res[1]); err != nil {
				if errors.Is(err, errMalformedEvent) {
					log.Printf("ERROR: Dropping load event: %v", err)
					continue
				}
				log.Printf("ERROR: Failed to record load event: %v", err)
				w.requeue(ctx, queueName, res[1])
			}
		}
	}
}

func (w *LoadLogWorker) handleEvent(ctx context.Context, payload string) error {
	var event model.LoadEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	if event.CategoryID == 0 {
		return fmt.Errorf("%w: missing category_id", errMalformedEvent)
	}

	entry, err := w.recorder.RecordLoad(ctx, event)
	if err != nil {
		return err
	}
	log.Printf("Recorded load log %d: %d rows into category %d from %s", entry.ID, entry.RowsInserted, entry.CategoryID, entry.FileName)
	return nil
}

// requeue pushes payload back to the consuming end so the next BRPop retries it. The push
// outlives cancellation so an event that failed during shutdown stays queued.
func (w *LoadLogWorker) requeue(ctx context.Context, queueName, payload string) {
	if err := w.rdb.RPush(context.WithoutCancel(ctx), queueName, payload).Err(); err != nil {
		log.Printf("ERROR: Failed to re-queue load event: %v", err)
		return
	}
	sleepCtx(ctx, time.Second)
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
