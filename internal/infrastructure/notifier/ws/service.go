package wsnotifier

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

const (
	// DefaultReconnectInterval is the time waited before trying to
	// re-establish a dropped connection.
	DefaultReconnectInterval = 5 * time.Second
)

type service struct {
	url               string
	reconnectInterval time.Duration

	conn     *websocket.Conn
	lock     *sync.RWMutex
	stopOnce *sync.Once

	feedChan chan ports.TransferNotification
	quitChan chan struct{}
}

// NewNotifier returns a Notifier reading transfer notifications from the
// websocket feed at the given url. Every message is a JSON object with at
// least the "contract" field.
func NewNotifier(
	wsURL string, reconnectInterval time.Duration,
) (ports.Notifier, error) {
	u, err := url.Parse(wsURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return nil, fmt.Errorf("invalid notifier url, must be a valid ws URL")
	}
	if reconnectInterval <= 0 {
		reconnectInterval = DefaultReconnectInterval
	}

	return &service{
		url:               wsURL,
		reconnectInterval: reconnectInterval,
		lock:              &sync.RWMutex{},
		stopOnce:          &sync.Once{},
		feedChan:          make(chan ports.TransferNotification),
		quitChan:          make(chan struct{}),
	}, nil
}

func (s *service) Start() (<-chan ports.TransferNotification, error) {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		return nil, err
	}
	s.setConn(conn)

	go s.listen()

	return s.feedChan, nil
}

func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.quitChan)

		conn := s.getConn()
		if conn == nil {
			return
		}
		//nolint
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		conn.Close()
	})
}

func (s *service) listen() {
	defer close(s.feedChan)

	for {
		conn := s.getConn()
		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.isStopped() {
				return
			}
			log.WithError(err).Warn(
				"notifier connection dropped unexpectedly. Trying to reconnect...",
			)
			conn.Close()

			if !s.reconnect() {
				return
			}
			log.Debug("notifier connection re-established")
			continue
		}

		notification, err := parseNotification(message)
		if err != nil {
			log.WithError(err).Debug("skipping malformed notification")
			continue
		}

		select {
		case s.feedChan <- *notification:
		case <-s.quitChan:
			return
		}
	}
}

func (s *service) reconnect() bool {
	for {
		select {
		case <-s.quitChan:
			return false
		case <-time.After(s.reconnectInterval):
		}

		conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
		if err != nil {
			log.WithError(err).Warn("failed to reconnect notifier, retrying...")
			continue
		}
		s.setConn(conn)

		if s.isStopped() {
			conn.Close()
			return false
		}
		return true
	}
}

func (s *service) isStopped() bool {
	select {
	case <-s.quitChan:
		return true
	default:
		return false
	}
}

func (s *service) getConn() *websocket.Conn {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.conn
}

func (s *service) setConn(conn *websocket.Conn) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.conn = conn
}

func parseNotification(msg []byte) (*ports.TransferNotification, error) {
	var header struct {
		Contract string `json:"contract"`
	}
	if err := json.Unmarshal(msg, &header); err != nil {
		return nil, err
	}
	if len(header.Contract) <= 0 {
		return nil, fmt.Errorf("missing contract")
	}
	return &ports.TransferNotification{
		Contract: header.Contract,
		Payload:  msg,
	}, nil
}
