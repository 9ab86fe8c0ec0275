package contract

import "fmt"

// Address is an opaque principal identifier.
type Address string

// StorageClass separates the contract's singleton entries from per-caller
// entries. Both classes are retained by TTL and must be refreshed.
type StorageClass string

const (
	// ClassInstance holds the singletons that live with the contract itself.
	ClassInstance StorageClass = "instance"
	// ClassPersistent holds records keyed by caller.
	ClassPersistent StorageClass = "persistent"
)

// KeyKind discriminates the persisted fields.
type KeyKind string

const (
	// KindAdmin is the current admin address.
	KindAdmin KeyKind = "Admin"
	// KindGreetingCount is the global greeting counter.
	KindGreetingCount KeyKind = "GreetingCount"
	// KindCharacterLimit is the maximum greeting length in bytes.
	KindCharacterLimit KeyKind = "CharacterLimit"
	// KindLastGreeting is one caller's last accepted text.
	KindLastGreeting KeyKind = "LastGreeting"
	// KindUserGreetingCount is one caller's greeting counter.
	KindUserGreetingCount KeyKind = "UserGreetingCount"
)

// Key addresses one persisted field. Owner is set only for per-caller kinds.
type Key struct {
	Kind  KeyKind
	Owner Address
}

var (
	// AdminKey stores the current admin.
	AdminKey = Key{Kind: KindAdmin}
	// GreetingCountKey stores the global greeting counter.
	GreetingCountKey = Key{Kind: KindGreetingCount}
	// CharacterLimitKey stores the maximum accepted greeting length.
	CharacterLimitKey = Key{Kind: KindCharacterLimit}

	instanceKeys = []Key{AdminKey, GreetingCountKey, CharacterLimitKey}
)

// LastGreetingKey stores the last accepted text of one caller.
func LastGreetingKey(owner Address) Key {
	return Key{Kind: KindLastGreeting, Owner: owner}
}

// UserGreetingCountKey stores the greeting count of one caller.
func UserGreetingCountKey(owner Address) Key {
	return Key{Kind: KindUserGreetingCount, Owner: owner}
}

// Class reports which storage class the key belongs to.
func (k Key) Class() StorageClass {
	switch k.Kind {
	case KindLastGreeting, KindUserGreetingCount:
		return ClassPersistent
	default:
		return ClassInstance
	}
}

// String renders the persisted key discriminant, e.g. "Admin" or
// "LastGreeting(GABC...)".
func (k Key) String() string {
	if k.Class() == ClassPersistent {
		return fmt.Sprintf("%s(%s)", k.Kind, k.Owner)
	}
	return string(k.Kind)
}

// InstanceKeys returns the singleton keys in a stable order.
func InstanceKeys() []Key {
	out := make([]Key, len(instanceKeys))
	copy(out, instanceKeys)
	return out
}
