package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"kodechat/internal/platform/rabbitmq"
	"kodechat/internal/repository"
)

// RoomActivityWorker consumes message events and maintains the denormalized
// per-room stats (message count, last activity). Chat correctness never depends
// on it; a lost event only skews the stats.
type RoomActivityWorker struct {
	conn      *amqp.Connection
	roomRepo  *repository.RoomRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRoomActivityWorker(conn *amqp.Connection, roomRepo *repository.RoomRepository, queueName string) *RoomActivityWorker {
	return &RoomActivityWorker{
		conn:      conn,
		roomRepo:  roomRepo,
		queueName: queueName,
	}
}

func (w *RoomActivityWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event rabbitmq.MessageEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Printf("worker decode message event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.roomRepo.RecordActivity(event.RoomID, event.PostedAt); err != nil {
					log.Printf("worker record room activity failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *RoomActivityWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
