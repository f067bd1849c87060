package timeline

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lifetree/lifetree/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode reads one snapshot document from r and checks it against the
// schema: required IDs on every branch, node and source, and non-empty
// parent and child references. It does not check graph structure; call
// [Snapshot.Validate] or [Snapshot.Index] for that.
//
// Trailing data after the document is rejected.
func Decode(r io.Reader) (*Snapshot, error) {
	dec := json.NewDecoder(r)
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "decode snapshot: unexpected data after document")
	}
	if err := CheckSchema(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Unmarshal decodes a snapshot from bytes. See [Decode].
func Unmarshal(data []byte) (*Snapshot, error) {
	return Decode(bytes.NewReader(data))
}

// CheckSchema runs the field-level schema checks of [Decode] on a snapshot
// built elsewhere, such as one assembled from database documents.
func CheckSchema(snap *Snapshot) error {
	if err := validate.Struct(snap); err != nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "%s", formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.TrimPrefix(e.Namespace(), "Snapshot.")
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q", field, e.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// Encode writes snap as indented JSON.
func Encode(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Marshal encodes snap as compact JSON.
func Marshal(snap *Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// ReadFile decodes the snapshot stored at path.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	snap, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// WriteFile writes snap to path as indented JSON.
func WriteFile(snap *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
