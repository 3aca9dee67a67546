package http

import (
	"context"
	"sync"
	"time"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/shared/eventbus"
	"showcase-cms/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	subscriberBuffer = 16
	pingInterval     = 30 * time.Second
	readDeadline     = 60 * time.Second
)

// FeedMessage is one frame pushed to change-feed subscribers.
type FeedMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type feedSubscriber struct {
	id       string
	parentID string
	key      string
	ch       chan *model.CollectionChange
}

func (s *feedSubscriber) wants(change *model.CollectionChange) bool {
	if s.parentID != "" && s.parentID != change.ParentID {
		return false
	}
	return s.key == "" || s.key == string(change.Key)
}

// ChangeFeed fans collection.replaced events out to websocket subscribers.
// Slow subscribers lose events rather than block the bus.
type ChangeFeed struct {
	mu          sync.RWMutex
	subscribers map[string]*feedSubscriber
	log         logger.Logger
}

// NewChangeFeed creates a feed and subscribes it to bus.
func NewChangeFeed(bus eventbus.EventBusInterface, log logger.Logger) *ChangeFeed {
	f := &ChangeFeed{
		subscribers: make(map[string]*feedSubscriber),
		log:         log.WithComponent("change_feed"),
	}
	bus.Subscribe(eventbus.EventTypeCollectionReplaced, f.handleEvent)
	return f
}

func (f *ChangeFeed) handleEvent(_ context.Context, event eventbus.Event) error {
	change, ok := event.Data().(*model.CollectionChange)
	if !ok {
		return nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, sub := range f.subscribers {
		if !sub.wants(change) {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			f.log.Warn("Change feed subscriber is behind, dropping event",
				zap.String("subscriberID", sub.id),
				zap.String("parentID", change.ParentID))
		}
	}
	return nil
}

// subscribe registers a subscriber filtered by parentID and key; empty values match all.
func (f *ChangeFeed) subscribe(parentID, key string) *feedSubscriber {
	sub := &feedSubscriber{
		id:       uuid.NewString(),
		parentID: parentID,
		key:      key,
		ch:       make(chan *model.CollectionChange, subscriberBuffer),
	}
	f.mu.Lock()
	f.subscribers[sub.id] = sub
	f.mu.Unlock()
	return sub
}

func (f *ChangeFeed) unsubscribe(id string) {
	f.mu.Lock()
	delete(f.subscribers, id)
	f.mu.Unlock()
}

// SubscriberCount reports the number of open subscriptions.
func (f *ChangeFeed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// RegisterRoutes mounts the change-feed endpoint at /ws/v1/listen.
func (f *ChangeFeed) RegisterRoutes(router fiber.Router) {
	ws := router.Group("/ws/v1")
	ws.Use("/listen", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/listen", websocket.New(f.serve))
}

func (f *ChangeFeed) serve(conn *websocket.Conn) {
	sub := f.subscribe(conn.Query("parentId"), conn.Query("key"))
	f.log.Info("Change feed subscriber connected",
		zap.String("subscriberID", sub.id),
		zap.String("parentID", sub.parentID),
		zap.String("key", sub.key))

	defer func() {
		f.unsubscribe(sub.id)
		f.log.Info("Change feed subscriber disconnected", zap.String("subscriberID", sub.id))
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			conn.SetReadDeadline(time.Now().Add(readDeadline))
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					f.log.Error("Change feed read failed",
						zap.String("subscriberID", sub.id),
						zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case change := <-sub.ch:
			msg := FeedMessage{Type: eventbus.EventTypeCollectionReplaced, Data: change}
			if err := conn.WriteJSON(msg); err != nil {
				f.log.Warn("Change feed write failed",
					zap.String("subscriberID", sub.id),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
