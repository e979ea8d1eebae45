// Package policy gates which operations this process may perform. The gate is
// a local safety rail for agent deployments, not an on-chain permission.
package policy

import (
	"strings"

	clierr "github.com/basefolio/aeromgr/internal/errors"
)

// mutating lists every operation that broadcasts a transaction. Read-only
// mode blocks exactly these.
var mutating = map[string]bool{
	"create-manager":   true,
	"deposit":          true,
	"withdraw":         true,
	"add-liquidity":    true,
	"remove-liquidity": true,
	"stake":            true,
	"unstake":          true,
	"claim-rewards":    true,
	"claim-fees":       true,
}

// CheckOperationAllowed enforces the read-only flag and the optional
// operation allow-list against a normalized operation name.
func CheckOperationAllowed(allowlist []string, readOnly bool, operation string) error {
	op := normalize(operation)
	if readOnly && mutating[op] {
		return clierr.New(clierr.CodeBlocked, "operation "+op+" blocked: session is read-only")
	}
	if len(allowlist) == 0 {
		return nil
	}
	for _, allowed := range allowlist {
		if normalize(allowed) == op {
			return nil
		}
	}
	return clierr.New(clierr.CodeBlocked, "operation "+op+" blocked by enable_operations policy")
}

// Mutating reports whether an operation broadcasts transactions.
func Mutating(operation string) bool {
	return mutating[normalize(operation)]
}

func normalize(v string) string {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(v)))
	return strings.Join(parts, " ")
}
