package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pontoval/internal/adapters/repository"
	"pontoval/internal/domain/model"
	"pontoval/internal/domain/types"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMemStore(t *testing.T) {
	Convey("Given a new outbox store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx)

		sub := model.Submission{
			ID:         "sub-1",
			Name:       "Ana Souza",
			Email:      "ana@example.com",
			Message:    "Gostaria de saber mais sobre o programa.",
			ReceivedAt: time.Now(),
		}

		Convey("When recording a submission", func() {
			err := store.Record(ctx, sub)

			Convey("Then it is tracked as queued", func() {
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 1)

				st, err := store.Status(ctx, "sub-1")
				So(err, ShouldBeNil)
				So(st.Status, ShouldEqual, types.StatusQueued)
				So(st.DeliveredAt, ShouldBeNil)
			})

			Convey("And recording the same id again fails", func() {
				So(store.Record(ctx, sub), ShouldEqual, repository.ErrAlreadyRecorded)
			})
		})

		Convey("When marking a submission delivered", func() {
			So(store.Record(ctx, sub), ShouldBeNil)
			at := time.Now()
			marked, err := store.MarkDelivered(ctx, "sub-1", at)

			Convey("Then the status flips with a delivery time", func() {
				So(err, ShouldBeNil)
				So(marked, ShouldBeTrue)

				st, err := store.Status(ctx, "sub-1")
				So(err, ShouldBeNil)
				So(st.Status, ShouldEqual, types.StatusDelivered)
				So(st.DeliveredAt, ShouldNotBeNil)
				So(st.DeliveredAt.Equal(at), ShouldBeTrue)
			})

			Convey("And marking twice reports no change", func() {
				marked, err := store.MarkDelivered(ctx, "sub-1", time.Now())
				So(err, ShouldBeNil)
				So(marked, ShouldBeFalse)
			})
		})

		Convey("When marking an unknown id", func() {
			_, err := store.MarkDelivered(ctx, "missing", time.Now())

			Convey("Then it reports not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When querying an unknown id", func() {
			_, err := store.Status(ctx, "missing")

			Convey("Then it reports not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When listing recent submissions", func() {
			for i := 0; i < 5; i++ {
				s := sub
				s.ID = fmt.Sprintf("sub-%d", i)
				So(store.Record(ctx, s), ShouldBeNil)
			}

			recent, err := store.Recent(ctx, 3)

			Convey("Then the newest come first", func() {
				So(err, ShouldBeNil)
				So(recent, ShouldHaveLength, 3)
				So(recent[0].ID, ShouldEqual, "sub-4")
				So(recent[1].ID, ShouldEqual, "sub-3")
				So(recent[2].ID, ShouldEqual, "sub-2")
			})
		})
	})

	Convey("Given a bounded outbox store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx, repository.WithCapacity(2))

		Convey("When recording beyond capacity", func() {
			for i := 0; i < 3; i++ {
				So(store.Record(ctx, model.Submission{
					ID:         fmt.Sprintf("sub-%d", i),
					ReceivedAt: time.Now(),
				}), ShouldBeNil)
			}

			Convey("Then the oldest submission is evicted", func() {
				So(store.Count(ctx), ShouldEqual, 2)
				_, err := store.Status(ctx, "sub-0")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
