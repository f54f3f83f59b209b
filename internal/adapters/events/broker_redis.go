package events

import (
	"context"
	"delivery-insertion-planner/internal/ports"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "planner:progress"

// RedisBroker fans progress out over Redis Pub/Sub so every planner
// instance behind a load balancer can serve the event stream.
type RedisBroker struct {
	rdb     *redis.Client
	channel string
}

func NewRedisBroker(rdb *redis.Client, channel string) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{rdb: rdb, channel: channel}
}

// NewRedisBrokerFromURL parses a redis:// URL such as REDIS_URL.
func NewRedisBrokerFromURL(url string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisBroker(redis.NewClient(opt), ""), nil
}

func (b *RedisBroker) Client() *redis.Client { return b.rdb }

func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan ports.Progress, func()) {
	ch := make(chan ports.Progress, subscriberBuffer)

	ps := b.rdb.Subscribe(ctx, b.channel)
	// Wait for the subscription confirmation so no publish is missed.
	if _, err := ps.Receive(ctx); err != nil {
		log.Printf("op=events.subscribe channel=%s err=%v", b.channel, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(ch)
		msgs := ps.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var p ports.Progress
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					log.Printf("op=events.subscribe channel=%s err=%v", b.channel, err)
					continue
				}
				select {
				case ch <- p:
				default:
				}
			}
		}
	}()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}
}

func (b *RedisBroker) Report(ctx context.Context, p ports.Progress) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	data, err := json.Marshal(p)
	if err != nil {
		log.Printf("op=events.publish job_id=%s err=%v", p.JobID, err)
		return
	}
	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		log.Printf("op=events.publish job_id=%s err=%v", p.JobID, err)
	}
}
