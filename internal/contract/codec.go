package contract

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Values are stored as deterministic CBOR so every Store holds identical bytes
// for identical values.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("contract: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("contract: CBOR decoder initialization failed: " + err.Error())
	}
}

func encodeValue(v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("contract: encode %T: %w", v, err)
	}
	return data, nil
}

func decodeValue(key Key, data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("contract: decode %s: %w", key, err)
	}
	return nil
}

// DecodeUint32 decodes a stored counter value.
func DecodeUint32(key Key, data []byte) (uint32, error) {
	var v uint32
	err := decodeValue(key, data, &v)
	return v, err
}

// DecodeString decodes a stored text or address value.
func DecodeString(key Key, data []byte) (string, error) {
	var v string
	err := decodeValue(key, data, &v)
	return v, err
}
