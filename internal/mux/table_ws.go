package mux

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"drawpoker-server/pkg/engine"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

// getTableUUIDWS streams the requester's censored view of the table. A fresh
// view is pushed on connect and after every committed change.
func (m *Mux) getTableUUIDWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connection")
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		tableUUID := r.Context().Value(ctxTableKey).(string)
		requester := requesterFrom(r)

		updates, cancel := m.engine.Subscribe(tableUUID)
		done := make(chan struct{})

		defer func() {
			cancel()
			close(done)
			_ = conn.Close()
		}()

		go m.webSocketWriteLoop(conn, tableUUID, requester, updates, done)
		m.webSocketReadLoop(conn)
	}
}

func (m *Mux) webSocketWriteLoop(conn *websocket.Conn, tableUUID string, requester engine.Requester, updates <-chan struct{}, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	send := func() bool {
		details, err := m.engine.TableDetails(tableUUID, requester)
		if err != nil {
			logrus.WithError(err).WithField("table", tableUUID).Error("could not build table details")
			return false
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(details); err != nil {
			logrus.WithError(err).WithField("table", tableUUID).Error("could not write message")
			return false
		}

		return true
	}

	if !send() {
		return
	}

	for {
		select {
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-updates:
			if !send() {
				return
			}
		case <-done:
			return
		}
	}
}

func (m *Mux) webSocketReadLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).Debug("websocket closed unexpectedly")
			}

			return
		}
	}
}
