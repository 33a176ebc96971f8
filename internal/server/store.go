package server

import (
	"sync"
	"time"
)

// maxBitOffset matches the 512MB string limit of a real server.
const maxBitOffset = 1<<32 - 1

type kind int

const (
	kindString kind = iota
	kindHash
)

type entry struct {
	kind kind
	str  []byte
	hash map[string]string
}

// Store is the in-memory keyspace. Expired keys are invisible to reads and
// removed by a background sweeper.
type Store struct {
	mu        sync.RWMutex
	data      map[string]*entry
	expiry    map[string]time.Time
	stopCh    chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// ServerError is a reply-level error; Msg is written to the client verbatim.
type ServerError struct {
	Msg string
}

func (e *ServerError) Error() string {
	return e.Msg
}

var (
	ErrWrongType     = &ServerError{Msg: "WRONGTYPE Operation against a key holding the wrong kind of value"}
	ErrBitOffset     = &ServerError{Msg: "ERR bit offset is not an integer or out of range"}
	ErrBitValue      = &ServerError{Msg: "ERR bit is not an integer or out of range"}
	ErrNotInteger    = &ServerError{Msg: "ERR value is not an integer or out of range"}
	ErrSyntax        = &ServerError{Msg: "ERR syntax error"}
	ErrInvalidExpire = &ServerError{Msg: "ERR invalid expire time"}
)

func NewStore() *Store {
	return newStore(time.Now)
}

func newStore(now func() time.Time) *Store {
	store := &Store{
		data:   make(map[string]*entry),
		expiry: make(map[string]time.Time),
		stopCh: make(chan struct{}),
		now:    now,
	}

	go store.cleanupExpiredKeys()

	return store
}

func (s *Store) cleanupExpiredKeys() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for key, exp := range s.expiry {
				if now.After(exp) {
					delete(s.data, key)
					delete(s.expiry, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCh)
	})
}

// lookup returns the live entry for key. Callers hold s.mu.
func (s *Store) lookup(key string) (*entry, bool) {
	if exp, ok := s.expiry[key]; ok && s.now().After(exp) {
		return nil, false
	}
	e, ok := s.data[key]
	return e, ok
}

// purgeIfExpired drops an expired entry so writers start from an empty key.
// Callers hold the write lock.
func (s *Store) purgeIfExpired(key string) {
	if exp, ok := s.expiry[key]; ok && s.now().After(exp) {
		delete(s.data, key)
		delete(s.expiry, key)
	}
}

func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = &entry{kind: kindString, str: []byte(value)}
	delete(s.expiry, key)
}

func (s *Store) SetEx(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = &entry{kind: kindString, str: []byte(value)}
	s.expiry[key] = s.now().Add(ttl)
}

// Get returns the string at key. A hash at key is ErrWrongType.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(key)
	if !ok {
		return "", false, nil
	}
	if e.kind != kindString {
		return "", false, ErrWrongType
	}
	return string(e.str), true, nil
}

// GetSet stores value and returns the previous string, if any.
func (s *Store) GetSet(key, value string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeIfExpired(key)
	old, existed := s.data[key]
	if existed && old.kind != kindString {
		return "", false, ErrWrongType
	}
	s.data[key] = &entry{kind: kindString, str: []byte(value)}
	delete(s.expiry, key)
	if !existed {
		return "", false, nil
	}
	return string(old.str), true, nil
}

// GetRange returns the inclusive substring [start, end]. Negative offsets
// count back from the end of the value.
func (s *Store) GetRange(key string, start, end int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(key)
	if !ok {
		return "", nil
	}
	if e.kind != kindString {
		return "", ErrWrongType
	}
	return string(substr(e.str, start, end)), nil
}

func substr(b []byte, start, end int64) []byte {
	n := int64(len(b))
	if start < 0 && end < 0 && start > end {
		return nil
	}
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	if end >= n {
		end = n - 1
	}
	if n == 0 || start > end {
		return nil
	}
	return b[start : end+1]
}

// GetBit returns the bit at offset; bits past the end read as zero.
func (s *Store) GetBit(key string, offset int64) (int, error) {
	if offset < 0 || offset > maxBitOffset {
		return 0, ErrBitOffset
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(key)
	if !ok {
		return 0, nil
	}
	if e.kind != kindString {
		return 0, ErrWrongType
	}
	idx := offset >> 3
	if idx >= int64(len(e.str)) {
		return 0, nil
	}
	return int(e.str[idx]>>(7-uint(offset&7))) & 1, nil
}

// SetBit sets or clears the bit at offset, growing the value with zero
// bytes as needed, and returns the previous bit.
func (s *Store) SetBit(key string, offset int64, bit int) (int, error) {
	if offset < 0 || offset > maxBitOffset {
		return 0, ErrBitOffset
	}
	if bit != 0 && bit != 1 {
		return 0, ErrBitValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeIfExpired(key)
	e, ok := s.data[key]
	if !ok {
		e = &entry{kind: kindString}
		s.data[key] = e
	}
	if e.kind != kindString {
		return 0, ErrWrongType
	}

	idx := offset >> 3
	if need := idx + 1; need > int64(len(e.str)) {
		grown := make([]byte, need)
		copy(grown, e.str)
		e.str = grown
	}
	shift := 7 - uint(offset&7)
	prev := int(e.str[idx]>>shift) & 1
	if bit == 1 {
		e.str[idx] |= 1 << shift
	} else {
		e.str[idx] &^= 1 << shift
	}
	return prev, nil
}

// MGet returns one slot per key; missing keys and non-strings are nil.
func (s *Store) MGet(keys ...string) []*string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([]*string, len(keys))
	for i, key := range keys {
		e, ok := s.lookup(key)
		if !ok || e.kind != kindString {
			continue
		}
		v := string(e.str)
		values[i] = &v
	}
	return values
}

func (s *Store) Del(keys ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0

	for _, key := range keys {
		if _, exists := s.lookup(key); exists {
			count++
		}
		delete(s.data, key)
		delete(s.expiry, key)
	}

	return count
}

// Expire sets a TTL on an existing key. A non-positive ttl deletes it.
func (s *Store) Expire(key string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lookup(key); !exists {
		return false
	}

	if ttl <= 0 {
		delete(s.data, key)
		delete(s.expiry, key)
		return true
	}
	s.expiry[key] = s.now().Add(ttl)
	return true
}

// TTL reports the remaining lifetime in whole seconds, -1 for keys without
// an expiry and -2 for missing keys.
func (s *Store) TTL(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.lookup(key); !ok {
		return -2
	}
	exp, exists := s.expiry[key]
	if !exists {
		return -1
	}
	remaining := exp.Sub(s.now())
	return int64((remaining + time.Second/2) / time.Second)
}

// HSet writes field/value pairs and returns how many fields were new.
func (s *Store) HSet(key string, pairs []string) (int, error) {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return 0, &ServerError{Msg: "ERR wrong number of arguments for 'hset' command"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeIfExpired(key)
	e, ok := s.data[key]
	if !ok {
		e = &entry{kind: kindHash, hash: make(map[string]string)}
		s.data[key] = e
	}
	if e.kind != kindHash {
		return 0, ErrWrongType
	}

	added := 0
	for i := 0; i < len(pairs); i += 2 {
		if _, exists := e.hash[pairs[i]]; !exists {
			added++
		}
		e.hash[pairs[i]] = pairs[i+1]
	}
	return added, nil
}

func (s *Store) HGet(key, field string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(key)
	if !ok {
		return "", false, nil
	}
	if e.kind != kindHash {
		return "", false, ErrWrongType
	}
	v, ok := e.hash[field]
	return v, ok, nil
}

func (s *Store) HGetAll(key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(key)
	if !ok {
		return map[string]string{}, nil
	}
	if e.kind != kindHash {
		return nil, ErrWrongType
	}
	out := make(map[string]string, len(e.hash))
	for k, v := range e.hash {
		out[k] = v
	}
	return out, nil
}

// HDel removes fields and drops the key once the hash is empty.
func (s *Store) HDel(key string, fields ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok {
		return 0, nil
	}
	if e.kind != kindHash {
		return 0, ErrWrongType
	}
	removed := 0
	for _, f := range fields {
		if _, exists := e.hash[f]; exists {
			delete(e.hash, f)
			removed++
		}
	}
	if len(e.hash) == 0 {
		delete(s.data, key)
		delete(s.expiry, key)
	}
	return removed, nil
}

func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		if _, ok := s.lookup(key); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func (s *Store) FlushDB() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]*entry)
	s.expiry = make(map[string]time.Time)
}
