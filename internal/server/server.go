// Package server is a small RESP2 server backed by an in-memory Store. It
// speaks enough of the protocol for go-redis to connect and exercise the
// string and hash commands.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AAVision/learn-redis/internal/logger"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithStore serves an existing store instead of a fresh one.
func WithStore(store *Store) Option {
	return func(s *Server) { s.store = store }
}

type Server struct {
	store    *Store
	logger   *slog.Logger
	listener net.Listener

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

func New(opts ...Option) *Server {
	s := &Server{
		logger: logger.Named("server"),
		conns:  make(map[net.Conn]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.store == nil {
		s.store = NewStore()
	}
	return s
}

// Store returns the keyspace being served.
func (s *Server) Store() *Store { return s.store }

// Listen binds addr. Use "127.0.0.1:0" for an ephemeral port.
func (s *Server) Listen(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.logger.Info("gedis server listening", "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve accepts connections until ctx is cancelled or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("accept timeout", "error", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		if !s.track(conn) {
			conn.Close()
			return nil
		}
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handleConnection(conn)
		}()
	}
}

// Close stops accepting, drops open connections and stops the store.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.store.Close()
	s.logger.Info("gedis server stopped")
	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) handleConnection(conn net.Conn) {
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	log := s.logger.With("remote", conn.RemoteAddr().String())
	log.Debug("client connected")

	for {
		args, err := readArray(reader)
		if err != nil {
			if isProtocolError(err) {
				writeError(writer, "ERR "+err.Error())
				writer.Flush()
				log.Warn("closing connection after protocol error", "error", err)
				return
			}
			if !errors.Is(err, io.EOF) && !s.isClosed() {
				log.Debug("read failed", "error", err)
			}
			return
		}

		if len(args) == 0 {
			continue
		}

		s.dispatch(writer, args)

		if err := writer.Flush(); err != nil {
			log.Debug("write failed", "error", err)
			return
		}
	}
}

// command describes a handler and its arity. A negative arity means "at
// least -arity arguments", counting the command name, as in COMMAND INFO.
type command struct {
	arity   int
	handler func(s *Server, w *bufio.Writer, args []string)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"PING":     {-1, (*Server).ping},
		"SELECT":   {2, (*Server).selectDB},
		"CLIENT":   {-2, (*Server).client},
		"FLUSHDB":  {-1, (*Server).flushDB},
		"SET":      {-3, (*Server).set},
		"SETEX":    {4, (*Server).setEx},
		"GET":      {2, (*Server).get},
		"GETSET":   {3, (*Server).getSet},
		"GETRANGE": {4, (*Server).getRange},
		"GETBIT":   {3, (*Server).getBit},
		"SETBIT":   {4, (*Server).setBit},
		"MGET":     {-2, (*Server).mget},
		"DEL":      {-2, (*Server).del},
		"EXPIRE":   {3, (*Server).expire},
		"TTL":      {2, (*Server).ttl},
		"KEYS":     {-1, (*Server).keys},
		"HSET":     {-4, (*Server).hset},
		"HGET":     {3, (*Server).hget},
		"HGETALL":  {2, (*Server).hgetAll},
		"HDEL":     {-3, (*Server).hdel},
	}
}

func (s *Server) dispatch(w *bufio.Writer, args []string) {
	name := strings.ToUpper(args[0])
	cmd, ok := commands[name]
	if !ok {
		writeError(w, fmt.Sprintf("ERR unknown command '%s'", args[0]))
		return
	}
	if (cmd.arity > 0 && len(args) != cmd.arity) || (cmd.arity < 0 && len(args) < -cmd.arity) {
		writeError(w, fmt.Sprintf("ERR wrong number of arguments for '%s' command", strings.ToLower(name)))
		return
	}
	cmd.handler(s, w, args[1:])
}

func replyErr(w *bufio.Writer, err error) {
	var serr *ServerError
	if errors.As(err, &serr) {
		writeError(w, serr.Msg)
		return
	}
	writeError(w, "ERR "+err.Error())
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}
	return n, nil
}

// expireDuration converts n units to a Duration, rejecting values that
// would overflow it.
func expireDuration(n int64, unit time.Duration) (time.Duration, error) {
	limit := math.MaxInt64 / int64(unit)
	if n > limit || n < -limit {
		return 0, ErrInvalidExpire
	}
	return time.Duration(n) * unit, nil
}

func (s *Server) ping(w *bufio.Writer, args []string) {
	if len(args) > 0 {
		writeBulkString(w, args[0])
		return
	}
	writeSimpleString(w, "PONG")
}

// selectDB accepts any index; there is a single keyspace.
func (s *Server) selectDB(w *bufio.Writer, args []string) {
	if _, err := parseInt(args[0]); err != nil {
		replyErr(w, err)
		return
	}
	writeSimpleString(w, "OK")
}

// client acknowledges CLIENT SETNAME / SETINFO so handshakes succeed.
func (s *Server) client(w *bufio.Writer, _ []string) {
	writeSimpleString(w, "OK")
}

func (s *Server) flushDB(w *bufio.Writer, _ []string) {
	s.store.FlushDB()
	writeSimpleString(w, "OK")
}

func (s *Server) set(w *bufio.Writer, args []string) {
	key, value := args[0], args[1]
	var ttl time.Duration
	for i := 2; i < len(args); i++ {
		opt := strings.ToUpper(args[i])
		if (opt != "EX" && opt != "PX") || i+1 >= len(args) {
			replyErr(w, ErrSyntax)
			return
		}
		n, err := parseInt(args[i+1])
		if err != nil {
			replyErr(w, err)
			return
		}
		if n <= 0 {
			replyErr(w, ErrInvalidExpire)
			return
		}
		unit := time.Second
		if opt == "PX" {
			unit = time.Millisecond
		}
		if ttl, err = expireDuration(n, unit); err != nil {
			replyErr(w, err)
			return
		}
		i++
	}
	if ttl > 0 {
		s.store.SetEx(key, value, ttl)
	} else {
		s.store.Set(key, value)
	}
	writeSimpleString(w, "OK")
}

func (s *Server) setEx(w *bufio.Writer, args []string) {
	secs, err := parseInt(args[1])
	if err != nil {
		replyErr(w, err)
		return
	}
	if secs <= 0 {
		replyErr(w, ErrInvalidExpire)
		return
	}
	ttl, err := expireDuration(secs, time.Second)
	if err != nil {
		replyErr(w, err)
		return
	}
	s.store.SetEx(args[0], args[2], ttl)
	writeSimpleString(w, "OK")
}

func (s *Server) get(w *bufio.Writer, args []string) {
	value, ok, err := s.store.Get(args[0])
	switch {
	case err != nil:
		replyErr(w, err)
	case !ok:
		writeNull(w)
	default:
		writeBulkString(w, value)
	}
}

func (s *Server) getSet(w *bufio.Writer, args []string) {
	old, ok, err := s.store.GetSet(args[0], args[1])
	switch {
	case err != nil:
		replyErr(w, err)
	case !ok:
		writeNull(w)
	default:
		writeBulkString(w, old)
	}
}

func (s *Server) getRange(w *bufio.Writer, args []string) {
	start, err := parseInt(args[1])
	if err != nil {
		replyErr(w, err)
		return
	}
	end, err := parseInt(args[2])
	if err != nil {
		replyErr(w, err)
		return
	}
	value, err := s.store.GetRange(args[0], start, end)
	if err != nil {
		replyErr(w, err)
		return
	}
	writeBulkString(w, value)
}

func (s *Server) getBit(w *bufio.Writer, args []string) {
	offset, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		replyErr(w, ErrBitOffset)
		return
	}
	bit, err := s.store.GetBit(args[0], offset)
	if err != nil {
		replyErr(w, err)
		return
	}
	writeInteger(w, int64(bit))
}

func (s *Server) setBit(w *bufio.Writer, args []string) {
	offset, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		replyErr(w, ErrBitOffset)
		return
	}
	if args[2] != "0" && args[2] != "1" {
		replyErr(w, ErrBitValue)
		return
	}
	prev, err := s.store.SetBit(args[0], offset, int(args[2][0]-'0'))
	if err != nil {
		replyErr(w, err)
		return
	}
	writeInteger(w, int64(prev))
}

func (s *Server) mget(w *bufio.Writer, args []string) {
	writeNullableArray(w, s.store.MGet(args...))
}

func (s *Server) del(w *bufio.Writer, args []string) {
	writeInteger(w, int64(s.store.Del(args...)))
}

func (s *Server) expire(w *bufio.Writer, args []string) {
	secs, err := parseInt(args[1])
	if err != nil {
		replyErr(w, err)
		return
	}
	ttl, err := expireDuration(secs, time.Second)
	if err != nil {
		replyErr(w, err)
		return
	}
	if s.store.Expire(args[0], ttl) {
		writeInteger(w, 1)
	} else {
		writeInteger(w, 0)
	}
}

func (s *Server) ttl(w *bufio.Writer, args []string) {
	writeInteger(w, s.store.TTL(args[0]))
}

// keys ignores any pattern and lists every live key.
func (s *Server) keys(w *bufio.Writer, _ []string) {
	keys := s.store.Keys()
	sort.Strings(keys)
	writeArrayHeader(w, len(keys))
	for _, k := range keys {
		writeBulkString(w, k)
	}
}

func (s *Server) hset(w *bufio.Writer, args []string) {
	added, err := s.store.HSet(args[0], args[1:])
	if err != nil {
		replyErr(w, err)
		return
	}
	writeInteger(w, int64(added))
}

func (s *Server) hget(w *bufio.Writer, args []string) {
	value, ok, err := s.store.HGet(args[0], args[1])
	switch {
	case err != nil:
		replyErr(w, err)
	case !ok:
		writeNull(w)
	default:
		writeBulkString(w, value)
	}
}

func (s *Server) hgetAll(w *bufio.Writer, args []string) {
	fields, err := s.store.HGetAll(args[0])
	if err != nil {
		replyErr(w, err)
		return
	}
	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names)
	writeArrayHeader(w, len(names)*2)
	for _, f := range names {
		writeBulkString(w, f)
		writeBulkString(w, fields[f])
	}
}

func (s *Server) hdel(w *bufio.Writer, args []string) {
	removed, err := s.store.HDel(args[0], args[1:]...)
	if err != nil {
		replyErr(w, err)
		return
	}
	writeInteger(w, int64(removed))
}
