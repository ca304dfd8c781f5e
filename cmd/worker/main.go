package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classhub/internal/config"
	"classhub/internal/queue"
	"classhub/internal/reminder"
	"classhub/internal/store"
)

// Worker polls for due reminders, pushes them through the queue, and
// dispatches notifications. Repeating reminders are rescheduled on dispatch.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "classhub:reminders")
	}

	reminders := reminder.NewService(reminder.NewRepository(db.Client))

	// Poll loop: enqueue due reminders.
	go func() {
		ticker := time.NewTicker(cfg.ReminderPoll)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				due, err := reminders.Due(ctx)
				if err != nil {
					log.Printf("due reminders query failed: %v", err)
					continue
				}
				for _, rem := range due {
					body, err := json.Marshal(rem)
					if err != nil {
						continue
					}
					if err := q.Publish(ctx, queue.Message{Type: "reminder", Body: body}); err != nil {
						log.Printf("queue publish failed: %v", err)
					}
				}
			}
		}
	}()

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "reminder" {
			continue
		}

		var rem reminder.Reminder
		if err := json.Unmarshal(msg.Body, &rem); err != nil {
			log.Printf("bad reminder payload: %v", err)
			continue
		}

		// Notification hook; for now the dispatch is the log line.
		log.Printf("reminder due for user %s: %s (%s)", rem.UserID, rem.Title, rem.Priority)

		if err := reminders.Dispatch(ctx, rem); err != nil {
			log.Printf("dispatch reminder %s failed: %v", rem.ID, err)
		}
	}

	log.Println("worker stopped")
}
