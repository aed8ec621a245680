package store

import (
	"testing"
	"time"

	"github.com/cockroachdb/pebble"

	"clinichat/pkg/models"
	"clinichat/pkg/notify"
	"clinichat/pkg/seed"
)

func setup(t *testing.T) {
	t.Helper()
	if err := Open(t.TempDir()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		SetHub(nil)
		if err := Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	})
}

func TestLoadFallsBackToSeed(t *testing.T) {
	setup(t)
	staff := LoadStaff()
	if len(staff) != len(seed.Staff()) {
		t.Fatalf("missing key should fall back to seed, got %d records", len(staff))
	}
	rec := LoadReception()
	if len(rec) != len(seed.Reception()) {
		t.Fatalf("missing key should fall back to seed, got %d records", len(rec))
	}
}

func TestSaveAndLoadRecords(t *testing.T) {
	setup(t)
	in := []models.StaffRecord{{ID: "dr-9", Name: "Dr. Nine", Specialty: "Oncology", Status: "active"}}
	if err := SaveStaff(in); err != nil {
		t.Fatalf("SaveStaff: %v", err)
	}
	out := LoadStaff()
	if len(out) != 1 || out[0].ID != "dr-9" {
		t.Fatalf("unexpected staff: %+v", out)
	}

	rin := []models.ReceptionRecord{{ID: "rc-9", Name: "Nine", Sector: "Billing", Status: "online"}}
	if err := SaveReception(rin); err != nil {
		t.Fatalf("SaveReception: %v", err)
	}
	rout := LoadReception()
	if len(rout) != 1 || rout[0].ID != "rc-9" {
		t.Fatalf("unexpected reception: %+v", rout)
	}
}

func TestMalformedRecordsFallBackToSeed(t *testing.T) {
	setup(t)
	if err := db.Set([]byte(KeyStaff), []byte("{not json"), pebble.Sync); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(LoadStaff()) != len(seed.Staff()) {
		t.Fatalf("malformed value should fall back to seed")
	}
}

func TestAppendAndListMessages(t *testing.T) {
	setup(t)
	if err := AppendMessage("dr-1", models.Message{ID: "a", Text: "one"}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := AppendMessage("dr-1", models.Message{ID: "b", Text: "two"}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	msgs, err := ListMessages("dr-1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "a" || msgs[1].ID != "b" {
		t.Fatalf("unexpected list: %+v", msgs)
	}

	other, err := ListMessages("dr-2")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("conversations must not bleed into each other: %+v", other)
	}
}

func TestLatestVersionWins(t *testing.T) {
	setup(t)
	if err := AppendMessage("dr-1", models.Message{ID: "a", Text: "original"}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := AppendMessage("dr-1", models.Message{ID: "a", Text: "edited", Edited: true}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	msgs, err := ListMessages("dr-1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text != "edited" || !msgs[0].Edited {
		t.Fatalf("latest version should win: %+v", msgs)
	}

	vers, err := ListMessageVersions("a")
	if err != nil {
		t.Fatalf("ListMessageVersions: %v", err)
	}
	if len(vers) != 2 || vers[0].Text != "original" || vers[1].Text != "edited" {
		t.Fatalf("unexpected versions: %+v", vers)
	}

	latest, err := GetLatestMessage("a")
	if err != nil {
		t.Fatalf("GetLatestMessage: %v", err)
	}
	if latest.Text != "edited" {
		t.Fatalf("unexpected latest: %+v", latest)
	}
}

func TestTombstonesHideMessages(t *testing.T) {
	setup(t)
	if err := AppendMessage("dr-1", models.Message{ID: "a", Text: "hello"}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := AppendMessage("dr-1", models.Message{ID: "a", Text: "hello", Deleted: true}); err != nil {
		t.Fatalf("AppendMessage tombstone: %v", err)
	}
	msgs, err := ListMessages("dr-1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("tombstoned message should be excluded: %+v", msgs)
	}
}

func TestClearConversationTombstonesEverything(t *testing.T) {
	setup(t)
	_ = AppendMessage("dr-1", models.Message{ID: "a"})
	_ = AppendMessage("dr-1", models.Message{ID: "b"})
	if err := ClearConversation("dr-1"); err != nil {
		t.Fatalf("ClearConversation: %v", err)
	}
	msgs, err := ListMessages("dr-1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("cleared conversation should list empty: %+v", msgs)
	}
	// history kept until the sweeper runs
	keys, err := ListKeys("conv:dr-1:")
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(keys) == 0 {
		t.Fatalf("tombstone versions should remain stored")
	}
}

func TestPurgeDeleted(t *testing.T) {
	setup(t)
	old := time.Now().Add(-48 * time.Hour).UTC().UnixNano()
	_ = AppendMessage("dr-1", models.Message{ID: "a", TS: old, Deleted: true})
	_ = AppendMessage("dr-1", models.Message{ID: "b", TS: time.Now().UTC().UnixNano(), Deleted: true})
	_ = AppendMessage("dr-1", models.Message{ID: "c", TS: old})

	cutoff := time.Now().Add(-24 * time.Hour).UnixNano()
	n, err := PurgeDeleted(cutoff)
	if err != nil {
		t.Fatalf("PurgeDeleted: %v", err)
	}
	// a's conv key plus its version index key
	if n != 2 {
		t.Fatalf("expected 2 purged keys, got %d", n)
	}
	// live old message and fresh tombstone survive
	keys, err := ListKeys("conv:dr-1:")
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 surviving keys, got %v", keys)
	}
	if keys, _ := ListKeys("version:msg:a:"); len(keys) != 0 {
		t.Fatalf("version index for purged message should be gone, got %v", keys)
	}
}

func TestPurgeRemovesAllVersionsOfDeletedMessage(t *testing.T) {
	setup(t)
	old := time.Now().Add(-48 * time.Hour).UTC().UnixNano()
	// a message with a live history, then tombstoned long ago
	_ = AppendMessage("dr-1", models.Message{ID: "a", Text: "secret", TS: old})
	_ = AppendMessage("dr-1", models.Message{ID: "a", Text: "secret", TS: old, Edited: true})
	_ = AppendMessage("dr-1", models.Message{ID: "a", Text: "secret", TS: old, Deleted: true})
	_ = AppendMessage("dr-1", models.Message{ID: "b", Text: "keep", TS: old})

	msgs, err := ListMessages("dr-1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "b" {
		t.Fatalf("tombstoned message should be hidden before the sweep: %+v", msgs)
	}

	cutoff := time.Now().Add(-24 * time.Hour).UnixNano()
	if _, err := PurgeDeleted(cutoff); err != nil {
		t.Fatalf("PurgeDeleted: %v", err)
	}

	// the sweep must not surface the older live versions again
	msgs, err = ListMessages("dr-1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "b" {
		t.Fatalf("purge resurrected a deleted message: %+v", msgs)
	}
	vers, err := ListMessageVersions("a")
	if err != nil {
		t.Fatalf("ListMessageVersions: %v", err)
	}
	if len(vers) != 0 {
		t.Fatalf("purged message should have no versions left, got %+v", vers)
	}
	// the untouched message keeps its history
	if vers, _ := ListMessageVersions("b"); len(vers) != 1 {
		t.Fatalf("unrelated message lost versions: %+v", vers)
	}
}

func TestPurgeKeepsMessagesWithFreshTombstones(t *testing.T) {
	setup(t)
	old := time.Now().Add(-48 * time.Hour).UTC().UnixNano()
	_ = AppendMessage("dr-1", models.Message{ID: "a", Text: "old but live", TS: old})
	_ = AppendMessage("dr-1", models.Message{ID: "a", Text: "old but live", TS: time.Now().UTC().UnixNano(), Deleted: true})

	cutoff := time.Now().Add(-24 * time.Hour).UnixNano()
	n, err := PurgeDeleted(cutoff)
	if err != nil {
		t.Fatalf("PurgeDeleted: %v", err)
	}
	if n != 0 {
		t.Fatalf("fresh tombstone must age out before its versions go, purged %d keys", n)
	}
	// still hidden, history intact
	msgs, err := ListMessages("dr-1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("tombstoned message leaked: %+v", msgs)
	}
	if vers, _ := ListMessageVersions("a"); len(vers) != 2 {
		t.Fatalf("expected both versions retained, got %+v", vers)
	}
}

func TestMutationsNotifyHub(t *testing.T) {
	setup(t)
	hub := notify.NewHub()
	SetHub(hub)
	ch, cancel := hub.Subscribe()
	defer cancel()

	if err := SaveStaff(seed.Staff()); err != nil {
		t.Fatalf("SaveStaff: %v", err)
	}
	select {
	case ev := <-ch:
		if ev.Key != KeyStaff {
			t.Fatalf("unexpected key: %s", ev.Key)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event after SaveStaff")
	}

	if err := AppendMessage("dr-1", models.Message{ID: "a"}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	select {
	case ev := <-ch:
		if ev.Key != "conv:dr-1" {
			t.Fatalf("unexpected key: %s", ev.Key)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event after AppendMessage")
	}
}
