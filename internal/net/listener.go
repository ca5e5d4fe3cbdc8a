package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Options carries per-session queue sizing shared by both listeners.
type Options struct {
	InQueueSize  int
	OutQueueSize int
	WriteTimeout time.Duration
}

// TCPListener accepts raw TCP clients and hands new sessions to the game
// loop through the pending channel.
type TCPListener struct {
	addr    string
	opts    Options
	pending chan<- *Session
	log     *zap.Logger

	ln net.Listener
}

func NewTCPListener(addr string, opts Options, pending chan<- *Session, log *zap.Logger) *TCPListener {
	return &TCPListener{addr: addr, opts: opts, pending: pending, log: log}
}

// Start binds the port and runs the accept loop until ctx is cancelled.
// A bind failure is the one fatal startup error of the transport.
func (l *TCPListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", l.addr, err)
	}
	l.ln = ln
	l.log.Info("tcp listener started", zap.String("addr", l.addr))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.log.Warn("accept failed", zap.Error(err))
			continue
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}
		sess := NewSession(NewTCPConn(conn), l.opts.InQueueSize, l.opts.OutQueueSize, l.opts.WriteTimeout, l.log)
		l.log.Info("connection accepted",
			zap.Uint64("session", sess.ID), zap.String("addr", sess.RemoteAddr()))
		l.pending <- sess
	}
}

// WSListener serves the websocket endpoint for browser clients. Upgraded
// connections carry the same binary payloads as TCP frames.
type WSListener struct {
	addr    string
	opts    Options
	pending chan<- *Session
	log     *zap.Logger

	srv *http.Server
}

func NewWSListener(addr string, opts Options, pending chan<- *Session, log *zap.Logger) *WSListener {
	return &WSListener{addr: addr, opts: opts, pending: pending, log: log}
}

func (l *WSListener) Start(ctx context.Context) error {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		// The canvas client is served from anywhere during development.
		CheckOrigin: func(*http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			l.log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		sess := NewSession(NewWSConn(conn), l.opts.InQueueSize, l.opts.OutQueueSize, l.opts.WriteTimeout, l.log)
		l.log.Info("websocket connection accepted",
			zap.Uint64("session", sess.ID), zap.String("addr", sess.RemoteAddr()))
		l.pending <- sess
	})

	l.srv = &http.Server{Addr: l.addr, Handler: mux}
	l.log.Info("websocket listener started", zap.String("addr", l.addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.srv.Shutdown(shutdownCtx)
	}()

	err := l.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
