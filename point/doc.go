// Package point implements the LAS point data record family (formats 0-10).
//
// Every format is a distinct Go type (Point0 ... Point10) assembled from shared
// components:
//
//	Legacy      formats 0-5 core (20 bytes): 3-bit return fields, 5-bit class, int8 scan angle rank
//	Extended    formats 6-10 core (30 bytes): 4-bit return fields, classification flags,
//	            scanner channel, int16 scan angle and GPS time
//	GPSTime     float64, formats 1, 3, 4, 5 (inside Extended for 6-10)
//	Color       RGB16 triplet, formats 2, 3, 5, 7, 8, 10
//	NIR         uint16, formats 8, 10
//	WavePacket  29-byte waveform descriptor, formats 4, 5, 9, 10
//
// All types implement the closed Record interface. The layout for a format is selected
// once through a table keyed by format id; decoding a batch slices fixed-width windows
// out of a single buffer:
//
//	records, err := point.DecodeAll(data, format.Point3, 34, count)
//	for _, r := range records {
//	    p := r.(*point.Point3)
//	    fmt.Println(p.X, p.Y, p.Z, p.GPSTime, p.Red)
//	}
//
// Encoding validates every bit field before any byte is written; out of range values
// produce *errs.RangeError and are never masked.
package point
