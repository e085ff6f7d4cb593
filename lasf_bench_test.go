package lasf

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/arloliu/lasf/format"
	"github.com/arloliu/lasf/internal/pool"
	"github.com/arloliu/lasf/quant"
)

func BenchmarkWriter(b *testing.B) {
	const n = 10000

	b.Run("buffered", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			bb := pool.GetFileBuffer()
			w, _ := NewWriter(bb, format.Point3)
			for i := range n {
				_ = w.Add(sampleRecord(format.Point3, i), samplePosition(i))
			}
			_ = w.Finish()
			pool.PutFileBuffer(bb)
		}
	})

	b.Run("streaming", func(b *testing.B) {
		p := quant.Uniform(0.01, quant.Vec3{X: 512000, Y: 4100000})
		b.ReportAllocs()
		for b.Loop() {
			bb := pool.GetFileBuffer()
			w, _ := NewWriter(bb, format.Point3, WithQuantization(p))
			for i := range n {
				_ = w.Add(sampleRecord(format.Point3, i), samplePosition(i))
			}
			_ = w.Finish()
			pool.PutFileBuffer(bb)
		}
	})
}

func BenchmarkReaderReadAll(b *testing.B) {
	data := writeFile(b, format.Point6, 100000)

	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				r, err := NewReader(bytes.NewReader(data), WithWorkers(workers))
				if err != nil {
					b.Fatal(err)
				}
				if _, err := r.ReadAll(context.Background()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
