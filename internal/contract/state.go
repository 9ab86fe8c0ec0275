package contract

import (
	"context"
	"math"
)

const (
	// DefaultCharacterLimit applies when no limit has been stored.
	DefaultCharacterLimit uint32 = 32
	// GreetingToken is returned by every successful Greet.
	GreetingToken = "Hola"
)

// ContractState runs the contract operations against one Store.
type ContractState struct {
	store     Store
	retention Retention
}

// NewState binds the contract to store. A zero retention falls back to
// DefaultRetention.
func NewState(store Store, retention Retention) *ContractState {
	return &ContractState{store: store, retention: retention.normalize()}
}

// Snapshot is a consistent read of the contract state, optionally scoped to
// one user.
type Snapshot struct {
	Initialized     bool
	Admin           Address
	GreetingCount   uint32
	CharacterLimit  uint32
	User            Address
	UserCount       uint32
	LastGreeting    string
	HasLastGreeting bool
}

// Initialize stores admin and the default counters. It succeeds once.
func (s *ContractState) Initialize(ctx context.Context, admin Address) error {
	exists, err := s.store.Has(ctx, AdminKey)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyInitialized
	}

	if err := s.setString(ctx, AdminKey, string(admin)); err != nil {
		return err
	}
	if err := s.setUint32(ctx, GreetingCountKey, 0); err != nil {
		return err
	}
	if err := s.setUint32(ctx, CharacterLimitKey, DefaultCharacterLimit); err != nil {
		return err
	}
	return s.extendInstance(ctx)
}

// Greet validates text, bumps the global and per-caller counters, records text
// as the caller's last greeting and returns GreetingToken. Length is measured
// in bytes.
//
// The caller is not authenticated here.
func (s *ContractState) Greet(ctx context.Context, caller Address, text string) (string, error) {
	if len(text) == 0 {
		return "", ErrEmptyInput
	}
	limit, err := s.GetLimit(ctx)
	if err != nil {
		return "", err
	}
	if uint64(len(text)) > uint64(limit) {
		return "", ErrInputTooLong
	}

	total, err := s.getUint32(ctx, GreetingCountKey, 0)
	if err != nil {
		return "", err
	}
	userKey := UserGreetingCountKey(caller)
	userTotal, err := s.getUint32(ctx, userKey, 0)
	if err != nil {
		return "", err
	}
	if total == math.MaxUint32 || userTotal == math.MaxUint32 {
		return "", ErrCounterOverflow
	}

	if err := s.setUint32(ctx, GreetingCountKey, total+1); err != nil {
		return "", err
	}
	if err := s.setUint32(ctx, userKey, userTotal+1); err != nil {
		return "", err
	}
	lastKey := LastGreetingKey(caller)
	if err := s.setString(ctx, lastKey, text); err != nil {
		return "", err
	}

	for _, key := range []Key{lastKey, userKey} {
		if err := s.store.ExtendTTL(ctx, key, s.retention.Threshold, s.retention.ExtendTo); err != nil {
			return "", err
		}
	}
	if err := s.extendInstance(ctx); err != nil {
		return "", err
	}
	return GreetingToken, nil
}

// GetCounter returns the global greeting count, 0 before initialization.
func (s *ContractState) GetCounter(ctx context.Context) (uint32, error) {
	return s.getUint32(ctx, GreetingCountKey, 0)
}

// GetLastGreeting returns the last text accepted from user.
func (s *ContractState) GetLastGreeting(ctx context.Context, user Address) (string, bool, error) {
	return s.getString(ctx, LastGreetingKey(user))
}

// GetUserCounter returns how many times user has greeted.
func (s *ContractState) GetUserCounter(ctx context.Context, user Address) (uint32, error) {
	return s.getUint32(ctx, UserGreetingCountKey(user), 0)
}

// GetLimit returns the character limit, DefaultCharacterLimit when unset.
func (s *ContractState) GetLimit(ctx context.Context) (uint32, error) {
	return s.getUint32(ctx, CharacterLimitKey, DefaultCharacterLimit)
}

// GetAdmin returns the current admin if the contract is initialized.
func (s *ContractState) GetAdmin(ctx context.Context) (Address, bool, error) {
	admin, ok, err := s.getString(ctx, AdminKey)
	return Address(admin), ok, err
}

// ResetCounter zeroes the global counter. Per-user counters and last
// greetings are left as they are.
func (s *ContractState) ResetCounter(ctx context.Context, caller Address) error {
	if err := requireAdmin(ctx, s.store, caller); err != nil {
		return err
	}
	if err := s.setUint32(ctx, GreetingCountKey, 0); err != nil {
		return err
	}
	return s.extendInstance(ctx)
}

// TransferAdmin hands the admin role to newAdmin immediately.
func (s *ContractState) TransferAdmin(ctx context.Context, caller, newAdmin Address) error {
	if err := requireAdmin(ctx, s.store, caller); err != nil {
		return err
	}
	if err := s.setString(ctx, AdminKey, string(newAdmin)); err != nil {
		return err
	}
	return s.extendInstance(ctx)
}

// SetLimit replaces the character limit. Any value is accepted, including 0.
func (s *ContractState) SetLimit(ctx context.Context, caller Address, limit uint32) error {
	if err := requireAdmin(ctx, s.store, caller); err != nil {
		return err
	}
	if err := s.setUint32(ctx, CharacterLimitKey, limit); err != nil {
		return err
	}
	return s.extendInstance(ctx)
}

// Restore revives archived instance entries and, when user is non-empty, that
// user's records. Anyone may call it. It returns how many entries came back.
func (s *ContractState) Restore(ctx context.Context, user Address) (int, error) {
	keys := InstanceKeys()
	if user != "" {
		keys = append(keys, LastGreetingKey(user), UserGreetingCountKey(user))
	}
	restored := 0
	for _, key := range keys {
		ok, err := s.store.Restore(ctx, key, s.retention.ExtendTo)
		if err != nil {
			return restored, err
		}
		if ok {
			restored++
		}
	}
	return restored, nil
}

// Snapshot reads every singleton and, when user is non-empty, that user's
// records.
func (s *ContractState) Snapshot(ctx context.Context, user Address) (Snapshot, error) {
	var snap Snapshot
	admin, ok, err := s.GetAdmin(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Initialized = ok
	snap.Admin = admin

	if snap.GreetingCount, err = s.GetCounter(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.CharacterLimit, err = s.GetLimit(ctx); err != nil {
		return Snapshot{}, err
	}
	if user == "" {
		return snap, nil
	}

	snap.User = user
	if snap.UserCount, err = s.GetUserCounter(ctx, user); err != nil {
		return Snapshot{}, err
	}
	if snap.LastGreeting, snap.HasLastGreeting, err = s.GetLastGreeting(ctx, user); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// requireAdmin fails unless caller is the stored admin.
func requireAdmin(ctx context.Context, store Store, caller Address) error {
	data, ok, err := store.Get(ctx, AdminKey)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInitialized
	}
	admin, err := DecodeString(AdminKey, data)
	if err != nil {
		return err
	}
	if Address(admin) != caller {
		return ErrUnauthorized
	}
	return nil
}

func (s *ContractState) extendInstance(ctx context.Context) error {
	for _, key := range instanceKeys {
		if err := s.store.ExtendTTL(ctx, key, s.retention.Threshold, s.retention.ExtendTo); err != nil {
			return err
		}
	}
	return nil
}

func (s *ContractState) getUint32(ctx context.Context, key Key, fallback uint32) (uint32, error) {
	data, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return fallback, nil
	}
	return DecodeUint32(key, data)
}

func (s *ContractState) getString(ctx context.Context, key Key) (string, bool, error) {
	data, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	v, err := DecodeString(key, data)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *ContractState) setUint32(ctx context.Context, key Key, v uint32) error {
	data, err := encodeValue(v)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key, data)
}

func (s *ContractState) setString(ctx context.Context, key Key, v string) error {
	data, err := encodeValue(v)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key, data)
}
