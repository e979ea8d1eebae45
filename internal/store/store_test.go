package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	dir := t.TempDir()
	j, err := Open(filepath.Join(dir, "journal.db"), filepath.Join(dir, "journal.lock"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournalRecordAndList(t *testing.T) {
	j := openTestJournal(t)

	result := map[string]any{"success": true, "amount": "42.5"}
	if err := j.Record("withdraw", "", 8453, true, "0xabc", result); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := j.Record("add-liquidity", "USDC-WETH", 8453, false, "", nil); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := j.List("", 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}

	withdraws, err := j.List("withdraw", 10)
	if err != nil {
		t.Fatalf("List filtered failed: %v", err)
	}
	if len(withdraws) != 1 {
		t.Fatalf("expected one withdraw entry, got %d", len(withdraws))
	}
	entry := withdraws[0]
	if !entry.Success || entry.TxHash != "0xabc" || entry.ChainID != 8453 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	var payload map[string]any
	if err := json.Unmarshal(entry.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["amount"] != "42.5" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	got, err := j.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Operation != "withdraw" {
		t.Fatalf("unexpected operation: %s", got.Operation)
	}
}

func TestJournalGetMissingEntry(t *testing.T) {
	j := openTestJournal(t)
	if _, err := j.Get("op-missing"); err == nil {
		t.Fatal("expected an error for a missing entry")
	}
}

func TestJournalRejectsEmptyOperation(t *testing.T) {
	j := openTestJournal(t)
	if err := j.Record("", "", 8453, true, "", nil); err == nil {
		t.Fatal("expected an error for a missing operation name")
	}
}
