package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

// EventService fans group events out over Redis pub/sub. Each group has
// its own channel; subscribers only ever see events for groups their
// capability token asserted at connect time.
type EventService struct {
	rdb *redis.Client
}

func NewEventService(redisClient *redis.Client) *EventService {
	return &EventService{
		rdb: redisClient,
	}
}

func channelFor(groupID uuid.UUID) string {
	return "group:" + groupID.String()
}

// Publish broadcasts the event on its group's channel.
func (s *EventService) Publish(ctx context.Context, event domain.GroupEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "EventService.Publish: marshal failed")
	}

	if err := s.rdb.Publish(ctx, channelFor(event.GroupID), payload).Err(); err != nil {
		return errors.Wrap(err, "EventService.Publish: redis publish failed")
	}
	return nil
}

// Stream subscribes to the given groups and forwards their events to
// output until ctx is cancelled. The output channel is closed on
// return.
func (s *EventService) Stream(ctx context.Context, groupIDs []uuid.UUID, output chan<- domain.GroupEvent) {
	defer close(output)

	if len(groupIDs) == 0 {
		<-ctx.Done()
		return
	}

	channels := make([]string, 0, len(groupIDs))
	for _, id := range groupIDs {
		channels = append(channels, channelFor(id))
	}

	sub := s.rdb.Subscribe(ctx, channels...)
	defer sub.Close()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event domain.GroupEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.WarnContext(ctx, "dropping malformed group event",
					slog.String("channel", msg.Channel),
					slog.String("error", err.Error()),
				)
				continue
			}
			select {
			case <-ctx.Done():
				return
			case output <- event:
			}
		}
	}
}
