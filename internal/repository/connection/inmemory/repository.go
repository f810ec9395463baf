package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/reelfeed/server/internal/repository/connection"
)

type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
	}
}

func (r *repo) Add(conn *websocket.Conn, sessionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[conn] != "" || r.idList[sessionId] != nil {
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = sessionId
	r.idList[sessionId] = conn

	return nil
}

func (r *repo) RemoveBySessionId(sessionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[sessionId]
	if !ok {
		return connection.ErrNotFound
	}
	conn.Close()

	delete(r.connList, conn)
	delete(r.idList, sessionId)

	return nil
}

func (r *repo) GetConn(sessionId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[sessionId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}
