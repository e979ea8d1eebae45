package policy

import (
	"testing"

	clierr "github.com/basefolio/aeromgr/internal/errors"
)

func TestEmptyAllowlistPermitsEverything(t *testing.T) {
	if err := CheckOperationAllowed(nil, false, "withdraw"); err != nil {
		t.Fatalf("expected allowed, got %v", err)
	}
	if err := CheckOperationAllowed(nil, false, "balances"); err != nil {
		t.Fatalf("expected allowed, got %v", err)
	}
}

func TestAllowlistBlocksUnlistedOperations(t *testing.T) {
	allow := []string{"balances", "positions", "Claim-Rewards"}
	if err := CheckOperationAllowed(allow, false, "claim-rewards"); err != nil {
		t.Fatalf("expected allowed via case-insensitive match, got %v", err)
	}
	err := CheckOperationAllowed(allow, false, "withdraw")
	if err == nil {
		t.Fatal("expected withdraw to be blocked")
	}
	e, ok := clierr.As(err)
	if !ok || e.Code != clierr.CodeBlocked {
		t.Fatalf("expected CodeBlocked, got %v", err)
	}
}

func TestReadOnlyBlocksMutatingOnly(t *testing.T) {
	if err := CheckOperationAllowed(nil, true, "add-liquidity"); err == nil {
		t.Fatal("expected add-liquidity blocked in read-only mode")
	}
	if err := CheckOperationAllowed(nil, true, "positions"); err != nil {
		t.Fatalf("expected read operation allowed in read-only mode, got %v", err)
	}
}

func TestMutatingClassification(t *testing.T) {
	if !Mutating("Withdraw") {
		t.Fatal("withdraw must classify as mutating")
	}
	if Mutating("fees") {
		t.Fatal("fees must classify as read-only")
	}
}
