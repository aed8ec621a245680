package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"clinichat/pkg/logger"
	"clinichat/pkg/models"
	"clinichat/pkg/notify"
	"clinichat/pkg/seed"
)

var (
	db  *pebble.DB
	hub *notify.Hub
)

// seq reduces key collisions when multiple messages share the same
// nanosecond timestamp.
var seq uint64

// Key namespaces. Records hold the two external collections; conversation
// messages are keyed per contact with a sortable timestamp suffix, and every
// message is additionally versioned by id so edits and tombstones append.
const (
	KeyStaff     = "records:staff"
	KeyReception = "records:reception"
)

// Open opens (or creates) a Pebble database at the given path and keeps a
// global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
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
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

// SetHub installs the change hub notified on every record mutation.
func SetHub(h *notify.Hub) { hub = h }

func notifyKey(key string) {
	if hub != nil {
		hub.Publish(notify.Event{Key: key})
	}
}

// --- external record collections ---

// SaveStaff stores the medical staff records under the reserved key and
// notifies the change hub.
func SaveStaff(recs []models.StaffRecord) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal staff records: %w", err)
	}
	if err := db.Set([]byte(KeyStaff), b, pebble.Sync); err != nil {
		logger.Error("save_staff_failed", "error", err)
		return err
	}
	logger.Info("staff_records_saved", "count", len(recs))
	notifyKey(KeyStaff)
	return nil
}

// LoadStaff returns the stored staff records. A missing or unparseable
// value fails closed to the built-in seed list.
func LoadStaff() []models.StaffRecord {
	if db == nil {
		return seed.Staff()
	}
	v, closer, err := db.Get([]byte(KeyStaff))
	if err != nil {
		return seed.Staff()
	}
	defer closer.Close()
	var recs []models.StaffRecord
	if err := json.Unmarshal(v, &recs); err != nil {
		logger.Warn("staff_records_malformed", "error", err)
		return seed.Staff()
	}
	return recs
}

// SaveReception stores the reception records under the reserved key and
// notifies the change hub.
func SaveReception(recs []models.ReceptionRecord) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal reception records: %w", err)
	}
	if err := db.Set([]byte(KeyReception), b, pebble.Sync); err != nil {
		logger.Error("save_reception_failed", "error", err)
		return err
	}
	logger.Info("reception_records_saved", "count", len(recs))
	notifyKey(KeyReception)
	return nil
}

// LoadReception returns the stored reception records, falling back to the
// seed list when missing or malformed.
func LoadReception() []models.ReceptionRecord {
	if db == nil {
		return seed.Reception()
	}
	v, closer, err := db.Get([]byte(KeyReception))
	if err != nil {
		return seed.Reception()
	}
	defer closer.Close()
	var recs []models.ReceptionRecord
	if err := json.Unmarshal(v, &recs); err != nil {
		logger.Warn("reception_records_malformed", "error", err)
		return seed.Reception()
	}
	return recs
}

// --- conversation history ---

// AppendMessage appends a message version to a contact's conversation.
// Key format: conv:<contactID>:msg:<unix_nano_padded>-<seq>; the same value
// is indexed under version:msg:<id>: so edits and tombstones can be looked
// up and ordered by message id.
func AppendMessage(contactID string, msg models.Message) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	ts := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&seq, 1)
	key := fmt.Sprintf("conv:%s:msg:%020d-%06d", contactID, ts, s)

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := db.Set([]byte(key), data, pebble.Sync); err != nil {
		logger.Error("append_message_failed", "contact", contactID, "key", key, "error", err)
		return err
	}
	if msg.ID != "" {
		idxKey := fmt.Sprintf("version:msg:%s:%020d-%06d", msg.ID, ts, s)
		if err := db.Set([]byte(idxKey), data, pebble.Sync); err != nil {
			logger.Error("append_message_index_failed", "key", idxKey, "error", err)
			return err
		}
	}
	logger.Debug("message_appended", "contact", contactID, "id", msg.ID)
	notifyKey("conv:" + contactID)
	return nil
}

// ListMessages returns the latest version of every live message in a
// contact's conversation, in insertion order. Messages whose latest version
// is a tombstone are excluded.
func ListMessages(contactID string) ([]models.Message, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte("conv:" + contactID + ":msg:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	// latest version wins; order of first appearance is insertion order
	order := []string{}
	latest := map[string]models.Message{}
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Warn("stored_message_malformed", "contact", contactID, "error", err)
			continue
		}
		if _, seen := latest[m.ID]; !seen {
			order = append(order, m.ID)
		}
		latest[m.ID] = m
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(order))
	for _, id := range order {
		if m := latest[id]; !m.Deleted {
			out = append(out, m)
		}
	}
	return out, nil
}

// ListMessageVersions returns every stored version for a message id in
// chronological order.
func ListMessageVersions(msgID string) ([]models.Message, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte("version:msg:" + msgID + ":")
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
			return nil, fmt.Errorf("invalid message JSON: %w", err)
		}
		out = append(out, m)
	}
	return out, iter.Error()
}

// GetLatestMessage returns the newest version for a message id.
func GetLatestMessage(msgID string) (models.Message, error) {
	vers, err := ListMessageVersions(msgID)
	if err != nil {
		return models.Message{}, err
	}
	if len(vers) == 0 {
		return models.Message{}, fmt.Errorf("message not found: %s", msgID)
	}
	return vers[len(vers)-1], nil
}

// ClearConversation tombstones every live message in a contact's
// conversation.
func ClearConversation(contactID string) error {
	msgs, err := ListMessages(contactID)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		m.Deleted = true
		m.TS = time.Now().UTC().UnixNano()
		if err := AppendMessage(contactID, m); err != nil {
			return err
		}
	}
	logger.Info("conversation_cleared", "contact", contactID, "count", len(msgs))
	return nil
}

// PurgeDeleted hard-deletes every message whose latest version is a
// tombstone older than the cutoff (ns). All of the message's versions go:
// its conv: keys and its version:msg: index, so a sweep can never surface
// an older live version again. Returns the number of removed keys; used by
// the sweeper.
func PurgeDeleted(before int64) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("pebble not opened; call store.Open first")
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	// group conversation keys by message id; the last version seen for an
	// id is its latest because keys sort by timestamp within a contact and
	// ids never span contacts
	keysByID := map[string][][]byte{}
	latest := map[string]models.Message{}
	prefix := []byte("conv:")
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil || m.ID == "" {
			continue
		}
		keysByID[m.ID] = append(keysByID[m.ID], append([]byte(nil), iter.Key()...))
		latest[m.ID] = m
	}
	if err := iter.Error(); err != nil {
		iter.Close()
		return 0, err
	}
	iter.Close()

	var victims [][]byte
	for id, m := range latest {
		if !m.Deleted || m.TS >= before {
			continue
		}
		victims = append(victims, keysByID[id]...)
		vkeys, err := ListKeys("version:msg:" + id + ":")
		if err != nil {
			return 0, err
		}
		for _, k := range vkeys {
			victims = append(victims, []byte(k))
		}
	}
	for _, k := range victims {
		if err := db.Delete(k, pebble.Sync); err != nil {
			return 0, err
		}
	}
	if len(victims) > 0 {
		logger.Info("tombstones_purged", "keys", len(victims))
	}
	return len(victims), nil
}

// ListKeys returns all keys that start with the given prefix. An empty
// prefix returns every key; used by tests and admin tooling.
func ListKeys(prefix string) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	if prefix == "" {
		for iter.First(); iter.Valid(); iter.Next() {
			out = append(out, string(append([]byte(nil), iter.Key()...)))
		}
		return out, iter.Error()
	}
	pfx := []byte(prefix)
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, string(append([]byte(nil), iter.Key()...)))
	}
	return out, iter.Error()
}
