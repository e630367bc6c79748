package streamjsonutil_test

import (
	"testing"

	"github.com/streamjson/streamjson/streamjsonutil"
)

func TestGetReturnsRequestedSize(t *testing.T) {
	p := streamjsonutil.NewPool(streamjsonutil.WithSizeHint(128))
	b := p.Get()
	if len(b.Bytes()) != 128 {
		t.Fatalf("len = %d, want 128", len(b.Bytes()))
	}
}

func TestGrowReusesCapacityWhenSufficient(t *testing.T) {
	b := &streamjsonutil.PooledBuffer{}
	b.Grow(16)
	before := b.Bytes()
	b.Grow(8)
	if &b.Bytes()[0] != &before[0] {
		t.Fatal("Grow to a smaller size reallocated instead of reusing capacity")
	}
	if len(b.Bytes()) != 8 {
		t.Fatalf("len = %d, want 8", len(b.Bytes()))
	}
}

func TestGrowReallocatesWhenCapacityInsufficient(t *testing.T) {
	b := &streamjsonutil.PooledBuffer{}
	b.Grow(4)
	b.Grow(64)
	if len(b.Bytes()) != 64 {
		t.Fatalf("len = %d, want 64", len(b.Bytes()))
	}
}

func TestPutRecyclesSmallBuffer(t *testing.T) {
	p := streamjsonutil.NewPool(streamjsonutil.WithSizeHint(256), streamjsonutil.WithLowerBound(1<<20))
	b := p.Get()
	p.Put(b)
	got := p.Get()
	if len(got.Bytes()) != 256 {
		t.Fatalf("recycled buffer len = %d, want 256", len(got.Bytes()))
	}
}

func TestPutToleratesRepeatedUnderutilization(t *testing.T) {
	// A buffer well above the lower bound, used at well under 50%
	// capacity several Get/Put cycles in a row, must not panic or corrupt
	// the pool's bookkeeping; eventually it is silently discarded rather
	// than recycled.
	p := streamjsonutil.NewPool(streamjsonutil.WithSizeHint(1<<20), streamjsonutil.WithLowerBound(64))
	for i := 0; i < 6; i++ {
		b := p.Get()
		b.Grow(1)
		p.Put(b)
	}
	b := p.Get()
	if len(b.Bytes()) == 0 {
		t.Fatal("expected a usable buffer from the pool after repeated underutilization")
	}
}
