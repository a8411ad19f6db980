package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"careline/pkg/errs"
	"careline/pkg/logger"
	"careline/pkg/models"
)

var (
	db     *pebble.DB
	dbPath string
)

// seq breaks ties when multiple messages in a thread share the same
// nanosecond timestamp; lexical key order stays creation order.
var seq uint64

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	dbPath = ""
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func notOpen() error {
	return fmt.Errorf("pebble not opened; call store.Open first")
}

// Key layout. Message keys sort by ord suffix, so a prefix scan yields the
// thread's log in creation order.
func threadMetaKey(threadID string) []byte {
	return []byte("thread:" + threadID + ":meta")
}

func msgPrefix(threadID string) []byte {
	return []byte("thread:" + threadID + ":msg:")
}

func msgKey(threadID, ord string) []byte {
	return []byte("thread:" + threadID + ":msg:" + ord)
}

func msgIdxKey(threadID, msgID string) []byte {
	return []byte("thread:" + threadID + ":idx:" + msgID)
}

func pairKey(a, b string) []byte {
	if b < a {
		a, b = b, a
	}
	return []byte("pair:" + a + "|" + b)
}

func memberKey(principal, threadID string) []byte {
	return []byte("member:" + principal + ":" + threadID)
}

func principalKey(id string) []byte {
	return []byte("principal:" + id)
}

// NewOrd returns a fresh log-position suffix: a zero-padded nanosecond
// timestamp plus a process-wide counter.
func NewOrd() string {
	ts := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&seq, 1)
	return fmt.Sprintf("%020d-%06d", ts, s%1000000)
}

func get(key []byte, out interface{}) error {
	v, closer, err := db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return errs.ErrNotFound
		}
		return err
	}
	defer closer.Close()
	return json.Unmarshal(v, out)
}

// GetThread returns the thread record for the given id.
func GetThread(threadID string) (models.Thread, error) {
	var th models.Thread
	if db == nil {
		return th, notOpen()
	}
	if err := get(threadMetaKey(threadID), &th); err != nil {
		return th, err
	}
	return th, nil
}

// SaveThread overwrites the thread record. Callers mutating alongside the
// message log should prefer the batch-based message operations below.
func SaveThread(th models.Thread) error {
	if db == nil {
		return notOpen()
	}
	b, err := json.Marshal(th)
	if err != nil {
		return fmt.Errorf("marshal thread: %w", err)
	}
	if err := db.Set(threadMetaKey(th.ID), b, pebble.Sync); err != nil {
		logger.Error("save_thread_failed", "thread", th.ID, "error", err)
		return err
	}
	logger.Debug("thread_saved", "thread", th.ID)
	return nil
}

// PairThreadID returns the thread id registered for the unordered pair
// (a, b), or errs.ErrNotFound.
func PairThreadID(a, b string) (string, error) {
	if db == nil {
		return "", notOpen()
	}
	v, closer, err := db.Get(pairKey(a, b))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return "", errs.ErrNotFound
		}
		return "", err
	}
	defer closer.Close()
	return string(v), nil
}

// CreateThreadForPair registers a new thread for its participant pair:
// thread record, pair uniqueness index and both membership index entries
// are committed in one batch. Returns errs.ErrConflict if the pair is
// already registered.
func CreateThreadForPair(th models.Thread) error {
	if db == nil {
		return notOpen()
	}
	a, b := th.Participants[0], th.Participants[1]
	unlock := pairLocks.lock(string(pairKey(a, b)))
	defer unlock()

	if _, err := PairThreadID(a, b); err == nil {
		return errs.ErrConflict
	} else if !errors.Is(err, errs.ErrNotFound) {
		return err
	}

	data, err := json.Marshal(th)
	if err != nil {
		return fmt.Errorf("marshal thread: %w", err)
	}
	batch := db.NewBatch()
	defer batch.Close()
	_ = batch.Set(threadMetaKey(th.ID), data, nil)
	_ = batch.Set(pairKey(a, b), []byte(th.ID), nil)
	_ = batch.Set(memberKey(a, th.ID), nil, nil)
	_ = batch.Set(memberKey(b, th.ID), nil, nil)
	if err := batch.Commit(pebble.Sync); err != nil {
		logger.Error("create_thread_failed", "thread", th.ID, "error", err)
		return err
	}
	logger.Info("thread_created", "thread", th.ID, "participants", a+","+b)
	return nil
}

// ListThreadsFor returns every thread the principal participates in, in
// unspecified order.
func ListThreadsFor(principal string) ([]models.Thread, error) {
	if db == nil {
		return nil, notOpen()
	}
	prefix := []byte("member:" + principal + ":")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Thread
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		threadID := string(iter.Key()[len(prefix):])
		th, err := GetThread(threadID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, th)
	}
	return out, iter.Error()
}

// ListAllThreads returns every thread record in the store. Used by the
// maintenance sweep, not by request handlers.
func ListAllThreads() ([]models.Thread, error) {
	if db == nil {
		return nil, notOpen()
	}
	prefix := []byte("thread:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Thread
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		if !bytes.HasSuffix(iter.Key(), []byte(":meta")) {
			continue
		}
		var th models.Thread
		if err := json.Unmarshal(iter.Value(), &th); err != nil {
			continue
		}
		out = append(out, th)
	}
	return out, iter.Error()
}

// AppendMessage appends a message to its thread's log and updates the
// thread's last-message pointer and activity timestamp in the same batch.
// The message's Ord is assigned here. The thread must exist.
func AppendMessage(m *models.Message) error {
	if db == nil {
		return notOpen()
	}
	unlock := threadLocks.lock(m.Thread)
	defer unlock()

	th, err := GetThread(m.Thread)
	if err != nil {
		return err
	}

	m.Ord = NewOrd()
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	th.LastMessageID = m.ID
	th.UpdatedTS = m.CreatedTS
	meta, err := json.Marshal(th)
	if err != nil {
		return fmt.Errorf("marshal thread: %w", err)
	}

	batch := db.NewBatch()
	defer batch.Close()
	_ = batch.Set(msgKey(m.Thread, m.Ord), data, nil)
	_ = batch.Set(msgIdxKey(m.Thread, m.ID), []byte(m.Ord), nil)
	_ = batch.Set(threadMetaKey(th.ID), meta, nil)
	if err := batch.Commit(pebble.Sync); err != nil {
		logger.Error("append_message_failed", "thread", m.Thread, "id", m.ID, "error", err)
		return err
	}
	logger.Info("message_saved", "thread", m.Thread, "id", m.ID, "ord", m.Ord)
	return nil
}

// GetMessage returns a message by id within a thread.
func GetMessage(threadID, msgID string) (models.Message, error) {
	var m models.Message
	if db == nil {
		return m, notOpen()
	}
	v, closer, err := db.Get(msgIdxKey(threadID, msgID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return m, errs.ErrNotFound
		}
		return m, err
	}
	ord := string(v)
	closer.Close()
	if err := get(msgKey(threadID, ord), &m); err != nil {
		return m, err
	}
	return m, nil
}

// UpdateMessage applies mutate to the stored message under the thread's
// lock and rewrites it in place (the ord, and therefore the log position,
// never changes). When bumpThread is true the thread's UpdatedTS is
// advanced to the message's UpdatedTS in the same batch. A mutate error
// aborts without writing.
func UpdateMessage(threadID, msgID string, bumpThread bool, mutate func(*models.Message) error) error {
	if db == nil {
		return notOpen()
	}
	unlock := threadLocks.lock(threadID)
	defer unlock()

	m, err := GetMessage(threadID, msgID)
	if err != nil {
		return err
	}
	if err := mutate(&m); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	batch := db.NewBatch()
	defer batch.Close()
	_ = batch.Set(msgKey(threadID, m.Ord), data, nil)
	if bumpThread {
		th, err := GetThread(threadID)
		if err != nil {
			return err
		}
		th.UpdatedTS = m.UpdatedTS
		meta, err := json.Marshal(th)
		if err != nil {
			return fmt.Errorf("marshal thread: %w", err)
		}
		_ = batch.Set(threadMetaKey(threadID), meta, nil)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		logger.Error("update_message_failed", "thread", threadID, "id", msgID, "error", err)
		return err
	}
	logger.Info("message_updated", "thread", threadID, "id", msgID)
	return nil
}

// DeleteMessage hard-removes a message from the thread's log. When the
// removed message was the thread's last, the pointer is reassigned to the
// new log tail (or cleared when the log is empty); the removal, index
// cleanup and pointer update commit as one batch. The authorize callback
// runs under the thread lock before anything is written.
func DeleteMessage(threadID, msgID string, authorize func(models.Message) error) error {
	if db == nil {
		return notOpen()
	}
	unlock := threadLocks.lock(threadID)
	defer unlock()

	m, err := GetMessage(threadID, msgID)
	if err != nil {
		return err
	}
	if authorize != nil {
		if err := authorize(m); err != nil {
			return err
		}
	}
	th, err := GetThread(threadID)
	if err != nil {
		return err
	}

	batch := db.NewBatch()
	defer batch.Close()
	_ = batch.Delete(msgKey(threadID, m.Ord), nil)
	_ = batch.Delete(msgIdxKey(threadID, msgID), nil)

	th.UpdatedTS = time.Now().UTC().UnixNano()
	if th.LastMessageID == msgID {
		tailID, err := tailMessageID(threadID, m.Ord)
		if err != nil {
			return err
		}
		th.LastMessageID = tailID
	}
	meta, err := json.Marshal(th)
	if err != nil {
		return fmt.Errorf("marshal thread: %w", err)
	}
	_ = batch.Set(threadMetaKey(threadID), meta, nil)
	if err := batch.Commit(pebble.Sync); err != nil {
		logger.Error("delete_message_failed", "thread", threadID, "id", msgID, "error", err)
		return err
	}
	logger.Info("message_deleted", "thread", threadID, "id", msgID)
	return nil
}

// tailMessageID finds the id of the last message in the thread's log,
// skipping the entry at skipOrd (the one being deleted). Empty when the
// log holds nothing else.
func tailMessageID(threadID, skipOrd string) (string, error) {
	prefix := msgPrefix(threadID)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return "", err
	}
	defer iter.Close()
	// upper bound: bump the last prefix byte to seek to the end of the
	// thread's message keyspace, then walk backwards
	upper := append([]byte(nil), prefix...)
	upper[len(upper)-1]++
	var tail string
	for iter.SeekLT(upper); iter.Valid(); iter.Prev() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		ord := string(iter.Key()[len(prefix):])
		if ord == skipOrd {
			continue
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return "", fmt.Errorf("invalid message at %s: %w", iter.Key(), err)
		}
		tail = m.ID
		break
	}
	return tail, iter.Error()
}

// ListMessages returns all messages for a thread in insertion order.
func ListMessages(threadID string) ([]models.Message, error) {
	if db == nil {
		return nil, notOpen()
	}
	prefix := msgPrefix(threadID)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Message
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return nil, fmt.Errorf("invalid message at %s: %w", iter.Key(), err)
		}
		out = append(out, m)
	}
	return out, iter.Error()
}

// MarkThreadRead flips IsRead on every unread message in the thread not
// sent by principal. Returns the number of messages updated. The thread's
// activity timestamp is deliberately left alone.
func MarkThreadRead(threadID, principal string) (int, error) {
	if db == nil {
		return 0, notOpen()
	}
	unlock := threadLocks.lock(threadID)
	defer unlock()

	msgs, err := ListMessages(threadID)
	if err != nil {
		return 0, err
	}
	batch := db.NewBatch()
	defer batch.Close()
	n := 0
	for _, m := range msgs {
		if m.IsRead || m.Sender == principal {
			continue
		}
		m.IsRead = true
		data, err := json.Marshal(m)
		if err != nil {
			return 0, fmt.Errorf("marshal message: %w", err)
		}
		_ = batch.Set(msgKey(threadID, m.Ord), data, nil)
		n++
	}
	if n == 0 {
		return 0, nil
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		logger.Error("mark_read_failed", "thread", threadID, "error", err)
		return 0, err
	}
	logger.Debug("thread_marked_read", "thread", threadID, "principal", principal, "count", n)
	return n, nil
}

// SavePrincipal stores a directory record.
func SavePrincipal(id models.Identity) error {
	if db == nil {
		return notOpen()
	}
	b, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal principal: %w", err)
	}
	if err := db.Set(principalKey(id.ID), b, pebble.Sync); err != nil {
		logger.Error("save_principal_failed", "principal", id.ID, "error", err)
		return err
	}
	logger.Debug("principal_saved", "principal", id.ID)
	return nil
}

// GetPrincipal returns the directory record for the given principal id.
func GetPrincipal(id string) (models.Identity, error) {
	var out models.Identity
	if db == nil {
		return out, notOpen()
	}
	if err := get(principalKey(id), &out); err != nil {
		return out, err
	}
	return out, nil
}
