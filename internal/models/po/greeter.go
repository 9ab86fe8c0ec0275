// Package po defines persistence-oriented data objects shared by repositories.
package po

import "time"

// ContractEntry represents one row of greeter.contract_entries.
type ContractEntry struct {
	Key          string
	StorageClass string
	Value        []byte
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

// Live reports whether the entry is still retained at now.
func (e *ContractEntry) Live(now time.Time) bool {
	return e != nil && e.ExpiresAt.After(now)
}
