package section

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/lasf/errs"
	"github.com/arloliu/lasf/internal/hash"
)

// VLR is a variable length record stored between the header and the point data.
// The payload is carried as opaque bytes.
type VLR struct {
	Reserved    uint16 // byte offset 0-1
	UserID      string // byte offset 2-17, NUL padded
	RecordID    uint16 // byte offset 18-19
	Description string // byte offset 22-53, NUL padded; payload length is at 20-21
	Payload     []byte
}

// EVLR is an extended variable length record (LAS 1.4) stored after the point data.
// It differs from VLR only by its 64-bit payload length.
type EVLR struct {
	Reserved    uint16 // byte offset 0-1
	UserID      string // byte offset 2-17, NUL padded
	RecordID    uint16 // byte offset 18-19
	Description string // byte offset 28-59, NUL padded; payload length is at 20-27
	Payload     []byte
}

// Key returns the xxHash64 identity of the record's (UserID, RecordID) pair.
func (v VLR) Key() uint64 {
	return hash.RecordKey(v.UserID, v.RecordID)
}

// Size returns the framed size: 54 header bytes plus the payload.
func (v VLR) Size() int {
	return VLRHeaderSize + len(v.Payload)
}

// Validate checks the fixed-width fields and the payload length.
func (v VLR) Validate() error {
	if err := checkIdentity(v.UserID, v.Description); err != nil {
		return err
	}

	if len(v.Payload) > MaxVLRPayload {
		return errs.OutOfRange("vlr payload length", int64(len(v.Payload)), 0, MaxVLRPayload)
	}

	return nil
}

// Bytes serializes the record header followed by the payload.
func (v VLR) Bytes() ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	b := make([]byte, v.Size())
	putIdentity(b, v.Reserved, v.UserID, v.RecordID)
	engine.PutUint16(b[20:22], uint16(len(v.Payload)))
	putString(b[22:VLRHeaderSize], v.Description)
	copy(b[VLRHeaderSize:], v.Payload)

	return b, nil
}

// WriteTo writes the framed record to w.
func (v VLR) WriteTo(w io.Writer) (int64, error) {
	b, err := v.Bytes()
	if err != nil {
		return 0, err
	}

	n, err := w.Write(b)

	return int64(n), err
}

// Key returns the xxHash64 identity of the record's (UserID, RecordID) pair.
func (e EVLR) Key() uint64 {
	return hash.RecordKey(e.UserID, e.RecordID)
}

// Size returns the framed size: 60 header bytes plus the payload.
func (e EVLR) Size() int64 {
	return EVLRHeaderSize + int64(len(e.Payload))
}

// Validate checks the fixed-width fields.
func (e EVLR) Validate() error {
	return checkIdentity(e.UserID, e.Description)
}

// WriteTo writes the framed record to w.
func (e EVLR) WriteTo(w io.Writer) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	var head [EVLRHeaderSize]byte
	putIdentity(head[:], e.Reserved, e.UserID, e.RecordID)
	engine.PutUint64(head[20:28], uint64(len(e.Payload)))
	putString(head[28:], e.Description)

	n, err := w.Write(head[:])
	if err != nil {
		return int64(n), err
	}

	m, err := w.Write(e.Payload)

	return int64(n + m), err
}

// recordPrealloc caps the capacity reserved from an untrusted record count.
const recordPrealloc = 64

// ReadVLR reads one framed VLR from r.
func ReadVLR(r io.Reader) (VLR, error) {
	return readVLR(r, 0)
}

// ReadVLRs reads count consecutive VLRs from r.
func ReadVLRs(r io.Reader, count int) ([]VLR, error) {
	return ReadVLRsAt(r, count, 0)
}

// ReadVLRsAt is ReadVLRs for a stream positioned at offset; offset is only used for
// error context.
func ReadVLRsAt(r io.Reader, count int, offset int64) ([]VLR, error) {
	vlrs := make([]VLR, 0, min(count, recordPrealloc))
	for i := 0; i < count; i++ {
		v, err := readVLR(r, offset)
		if err != nil {
			return nil, fmt.Errorf("vlr %d: %w", i, err)
		}
		vlrs = append(vlrs, v)
		offset += int64(v.Size())
	}

	return vlrs, nil
}

func readVLR(r io.Reader, offset int64) (VLR, error) {
	var head [VLRHeaderSize]byte
	if err := readFull(r, head[:], "vlr header", offset); err != nil {
		return VLR{}, err
	}

	v := VLR{
		Reserved:    engine.Uint16(head[0:2]),
		UserID:      cString(head[2:18]),
		RecordID:    engine.Uint16(head[18:20]),
		Description: cString(head[22:VLRHeaderSize]),
	}

	if n := engine.Uint16(head[20:22]); n > 0 {
		v.Payload = make([]byte, n)
		if err := readFull(r, v.Payload, "vlr payload", offset+VLRHeaderSize); err != nil {
			return VLR{}, err
		}
	}

	return v, nil
}

// ReadEVLR reads one framed EVLR from r.
func ReadEVLR(r io.Reader) (EVLR, error) {
	return readEVLR(r, 0)
}

// ReadEVLRs reads count consecutive EVLRs from r.
func ReadEVLRs(r io.Reader, count int) ([]EVLR, error) {
	return ReadEVLRsAt(r, count, 0)
}

// ReadEVLRsAt is ReadEVLRs for a stream positioned at offset; offset is only used for
// error context.
func ReadEVLRsAt(r io.Reader, count int, offset int64) ([]EVLR, error) {
	evlrs := make([]EVLR, 0, min(count, recordPrealloc))
	for i := 0; i < count; i++ {
		e, err := readEVLR(r, offset)
		if err != nil {
			return nil, fmt.Errorf("evlr %d: %w", i, err)
		}
		evlrs = append(evlrs, e)
		offset += e.Size()
	}

	return evlrs, nil
}

func readEVLR(r io.Reader, offset int64) (EVLR, error) {
	var head [EVLRHeaderSize]byte
	if err := readFull(r, head[:], "evlr header", offset); err != nil {
		return EVLR{}, err
	}

	e := EVLR{
		Reserved:    engine.Uint16(head[0:2]),
		UserID:      cString(head[2:18]),
		RecordID:    engine.Uint16(head[18:20]),
		Description: cString(head[28:EVLRHeaderSize]),
	}

	length := engine.Uint64(head[20:28])
	if length > math.MaxInt64 {
		return EVLR{}, errs.OutOfRange("evlr payload length", math.MaxInt64, 0, math.MaxInt64)
	}

	if length == 0 {
		return e, nil
	}

	// length is untrusted; grow the payload while reading
	var payload bytes.Buffer
	n, err := io.Copy(&payload, io.LimitReader(r, int64(length)))
	if err != nil {
		return EVLR{}, err
	}

	if uint64(n) < length {
		return EVLR{}, errs.Truncated("evlr payload", offset+EVLRHeaderSize, int(length), int(n))
	}
	e.Payload = payload.Bytes()

	return e, nil
}

func checkIdentity(userID, description string) error {
	if len(userID) > UserIDSize {
		return errs.OutOfRange("vlr user id length", int64(len(userID)), 0, UserIDSize)
	}

	if len(description) > DescriptionSize {
		return errs.OutOfRange("vlr description length", int64(len(description)), 0, DescriptionSize)
	}

	return nil
}

func putIdentity(b []byte, reserved uint16, userID string, recordID uint16) {
	engine.PutUint16(b[0:2], reserved)
	putString(b[2:18], userID)
	engine.PutUint16(b[18:20], recordID)
}

// VLRSet indexes VLRs by their (UserID, RecordID) key. Payloads are not interpreted.
type VLRSet struct {
	vlrs  []VLR
	index map[uint64][]int
}

// NewVLRSet indexes vlrs. The slice is retained, not copied.
func NewVLRSet(vlrs []VLR) *VLRSet {
	s := &VLRSet{
		vlrs:  vlrs,
		index: make(map[uint64][]int, len(vlrs)),
	}

	for i, v := range vlrs {
		k := v.Key()
		s.index[k] = append(s.index[k], i)
	}

	return s
}

// Len returns the number of records in the set.
func (s *VLRSet) Len() int {
	return len(s.vlrs)
}

// All returns the records in file order.
func (s *VLRSet) All() []VLR {
	return s.vlrs
}

// Find returns the first record with the given identity.
func (s *VLRSet) Find(userID string, recordID uint16) (VLR, bool) {
	for _, i := range s.index[hash.RecordKey(userID, recordID)] {
		// entries sharing a key may still differ in identity
		if v := s.vlrs[i]; v.UserID == userID && v.RecordID == recordID {
			return v, true
		}
	}

	return VLR{}, false
}

// FindAll returns every record with the given identity, in file order.
func (s *VLRSet) FindAll(userID string, recordID uint16) []VLR {
	var out []VLR
	for _, i := range s.index[hash.RecordKey(userID, recordID)] {
		if v := s.vlrs[i]; v.UserID == userID && v.RecordID == recordID {
			out = append(out, v)
		}
	}

	return out
}
