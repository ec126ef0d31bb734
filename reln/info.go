package reln

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// diskInfo is the single record persisted in a relation's .info file:
// every static Params field plus the dynamic Counters, gob-encoded the way
// chirst-cdb's kv.Encode/Decode serializes general values.
type diskInfo struct {
	Params   Params
	Counters Counters
}

func encodeInfo(p Params, c Counters) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&diskInfo{Params: p, Counters: c}); err != nil {
		return nil, fmt.Errorf("reln: error encoding info record: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeInfo(b []byte) (Params, Counters, error) {
	var d diskInfo
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&d); err != nil {
		return Params{}, Counters{}, fmt.Errorf("reln: error decoding info record: %w", err)
	}
	return d.Params, d.Counters, nil
}

func writeInfoFile(path string, p Params, c Counters) error {
	if path == "" {
		return nil
	}
	b, err := encodeInfo(p, c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("reln: error writing info file %s: %w: %w", path, ErrIO, err)
	}
	return nil
}

func readInfoFile(path string) (Params, Counters, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Params{}, Counters{}, fmt.Errorf("reln: error reading info file %s: %w: %w", path, ErrIO, err)
	}
	return decodeInfo(b)
}
