// Package section defines the fixed binary structures of a LAS file: the public header
// and the variable length record framing.
//
// # File Structure
//
// A LAS file is a sequence of sections in strict order:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Public Header (227 / 235 / 375 bytes by version)        │
//	│  - "LASF" signature, version, software identification   │
//	│  - Point format id and record length                    │
//	│  - Point counts, scale/offset, bounding box             │
//	├─────────────────────────────────────────────────────────┤
//	│ Variable Length Records (NumberOfVLRs × (54 + payload)) │
//	│  - Opaque payloads keyed by (UserID, RecordID)          │
//	├─────────────────────────────────────────────────────────┤
//	│ Point Data (N × PointRecordLength)                      │
//	│  - Starts at OffsetToPointData                          │
//	├─────────────────────────────────────────────────────────┤
//	│ Extended VLRs (LAS 1.4 only, 60-byte headers)           │
//	│  - Starts at FirstEVLROffset                            │
//	└─────────────────────────────────────────────────────────┘
//
// # Header Format
//
// All multi-byte values are little-endian.
//
//	Bytes    | Field                    | Type      | Since
//	---------|--------------------------|-----------|------
//	0-3      | Signature "LASF"         | [4]byte   | 1.0
//	4-5      | FileSourceID             | uint16    | 1.0
//	6-7      | GlobalEncoding           | uint16    | 1.0
//	8-23     | ProjectID (GUID)         | [16]byte  | 1.0
//	24-25    | Version major, minor     | uint8×2   | 1.0
//	26-57    | SystemIdentifier         | [32]byte  | 1.0
//	58-89    | GeneratingSoftware       | [32]byte  | 1.0
//	90-93    | Creation day, year       | uint16×2  | 1.0
//	94-95    | HeaderSize               | uint16    | 1.0
//	96-99    | OffsetToPointData        | uint32    | 1.0
//	100-103  | NumberOfVLRs             | uint32    | 1.0
//	104      | PointFormat              | uint8     | 1.0
//	105-106  | PointRecordLength        | uint16    | 1.0
//	107-110  | Legacy point count       | uint32    | 1.0
//	111-130  | Legacy points by return  | uint32×5  | 1.0
//	131-178  | Scale XYZ, Offset XYZ    | f64×6     | 1.0
//	179-226  | Max/Min X, Y, Z          | f64×6     | 1.0
//	227-234  | WaveformDataOffset       | uint64    | 1.3
//	235-242  | FirstEVLROffset          | uint64    | 1.4
//	243-246  | NumberOfEVLRs            | uint32    | 1.4
//	247-254  | Point count              | uint64    | 1.4
//	255-374  | Points by return         | uint64×15 | 1.4
//
// # Usage
//
// Building a header:
//
//	h, err := section.NewHeaderBuilder(format.Point3).
//	    SystemIdentifier("survey-01").
//	    Quantization(quant.Uniform(0.01, quant.Vec3{})).
//	    Build()
//
// Parsing from bytes:
//
//	h, err := section.ParseHeader(data)
//	for _, issue := range h.Validate() {
//	    // header fields disagree with each other
//	}
//
// Framing variable length records:
//
//	vlrs, err := section.ReadVLRs(r, int(h.NumberOfVLRs))
//	set := section.NewVLRSet(vlrs)
//	if wkt, ok := set.Find("LASF_Projection", 2112); ok {
//	    // wkt.Payload holds the coordinate system
//	}
//
// Payloads are never interpreted. Types in this package are plain values and safe to
// copy; they are not synchronized.
package section
