package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/matchup/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("When a key is claimed for the first time", func() {
			id, seen := d.Claim(ctx, "s1/req-1")

			Convey("Then it is recorded as new", func() {
				So(seen, ShouldBeFalse)
				So(id, ShouldBeEmpty)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is claimed twice before completion", func() {
			d.Claim(ctx, "s1/req-1")
			id, seen := d.Claim(ctx, "s1/req-1")

			Convey("Then the second claim sees an in-flight request", func() {
				So(seen, ShouldBeTrue)
				So(id, ShouldBeEmpty)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a completed key is claimed again", func() {
			d.Claim(ctx, "s1/req-1")
			d.Complete(ctx, "s1/req-1", "cmp-9")
			id, seen := d.Claim(ctx, "s1/req-1")

			Convey("Then the stored result id is returned", func() {
				So(seen, ShouldBeTrue)
				So(id, ShouldEqual, "cmp-9")
			})
		})

		Convey("When a claimed key is released", func() {
			d.Claim(ctx, "s1/req-1")
			d.Release(ctx, "s1/req-1")
			_, seen := d.Claim(ctx, "s1/req-1")

			Convey("Then it can be claimed again", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unknown keys are completed or released", func() {
			d.Complete(ctx, "nope", "x")
			d.Release(ctx, "nope")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestInMemoryDeduperBounded(t *testing.T) {
	Convey("Given a deduper bounded to three keys", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 1; i <= 3; i++ {
			d.Claim(ctx, fmt.Sprintf("k%d", i))
		}

		Convey("When a fourth key arrives", func() {
			d.Claim(ctx, "k4")

			Convey("Then the oldest key is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				_, seen := d.Claim(ctx, "k1")
				So(seen, ShouldBeFalse)
			})

			Convey("And the newer keys are kept", func() {
				_, seen := d.Claim(ctx, "k4")
				So(seen, ShouldBeTrue)
				_, seen = d.Claim(ctx, "k3")
				So(seen, ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		Convey("When many keys are claimed", func() {
			for i := 0; i < 1000; i++ {
				d.Claim(ctx, fmt.Sprintf("k%d", i))
			}

			Convey("Then none are evicted", func() {
				So(d.Size(), ShouldEqual, 1000)
			})
		})
	})
}

func TestInMemoryDeduperConcurrency(t *testing.T) {
	Convey("Given concurrent claims of the same key", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		var fresh atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, seen := d.Claim(ctx, "same"); !seen {
					fresh.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one caller wins", func() {
			So(fresh.Load(), ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
