package board_test

import (
	"encoding/json"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/statusboard/internal/board"
)

var _ = Describe("Board", func() {
	var b *board.Board

	indicator := func(name string) board.Indicator {
		ind, ok := b.Snapshot().Indicator(name)
		Expect(ok).To(BeTrue(), "indicator %q should exist", name)
		return ind
	}

	BeforeEach(func() {
		b = board.New([]board.Service{
			{Name: "database", DisplayName: "Database"},
			{Name: "cache"},
		})
	})

	Describe("New", func() {
		It("should start every indicator in the Checking state", func() {
			snap := b.Snapshot()
			Expect(snap.Indicators).To(HaveLen(2))
			for _, ind := range snap.Indicators {
				Expect(ind.State).To(Equal(board.StateChecking))
				Expect(ind.DotClass).To(Equal(board.DotClass))
				Expect(ind.Text).To(Equal(board.TextChecking))
				Expect(ind.Color).To(BeEmpty())
			}
		})

		It("should keep configured order and default display names", func() {
			Expect(b.Services()).To(Equal([]string{"database", "cache"}))
			Expect(indicator("database").DisplayName).To(Equal("Database"))
			Expect(indicator("cache").DisplayName).To(Equal("cache"))
		})

		It("should start with an idle, enabled trigger and no last check", func() {
			snap := b.Snapshot()
			Expect(snap.Trigger).To(Equal(board.Trigger{Disabled: false, Label: board.LabelIdle}))
			Expect(snap.LastCheck).To(BeEmpty())
		})

		It("should keep one indicator per duplicated name", func() {
			b = board.New([]board.Service{{Name: "a"}, {Name: "a"}})
			Expect(b.Snapshot().Indicators).To(HaveLen(1))
		})
	})

	Describe("Update", func() {
		It("should render an accessible service as online in green", func() {
			Expect(b.Update("database", true)).To(BeTrue())

			ind := indicator("database")
			Expect(ind.State).To(Equal(board.StateOnline))
			Expect(ind.DotClass).To(Equal("status-dot online"))
			Expect(ind.Text).To(Equal("Online"))
			Expect(ind.Color).To(Equal("#28a745"))
		})

		It("should render an unreachable service as offline in red", func() {
			Expect(b.Update("cache", false)).To(BeTrue())

			ind := indicator("cache")
			Expect(ind.State).To(Equal(board.StateOffline))
			Expect(ind.DotClass).To(Equal("status-dot offline"))
			Expect(ind.Text).To(Equal("Offline"))
			Expect(ind.Color).To(Equal("#dc3545"))
		})

		It("should ignore unknown services without touching the board", func() {
			before := b.Snapshot()
			Expect(b.Update("queue", true)).To(BeFalse())
			Expect(b.Snapshot()).To(Equal(before))
		})

		It("should fully overwrite the previous outcome", func() {
			b.Update("database", true)
			b.Update("database", false)

			ind := indicator("database")
			Expect(ind.State).To(Equal(board.StateOffline))
			Expect(ind.Color).To(Equal(board.ColorOffline))
		})

		It("should be idempotent", func() {
			b.Update("database", true)
			once := b.Snapshot()
			b.Update("database", true)
			Expect(b.Snapshot()).To(Equal(once))
		})
	})

	Describe("Reset", func() {
		It("should reset class and text but keep the color", func() {
			b.Update("database", true)
			b.Reset()

			ind := indicator("database")
			Expect(ind.State).To(Equal(board.StateChecking))
			Expect(ind.DotClass).To(Equal(board.DotClass))
			Expect(ind.Text).To(Equal(board.TextChecking))
			Expect(ind.Color).To(Equal(board.ColorOnline))
		})
	})

	Describe("SetAll", func() {
		It("should set the error text without changing classes or colors", func() {
			b.Update("database", true)
			b.Reset()
			b.SetAll(board.StateError)

			db := indicator("database")
			Expect(db.State).To(Equal(board.StateError))
			Expect(db.Text).To(Equal("Error"))
			Expect(db.DotClass).To(Equal(board.DotClass))
			Expect(db.Color).To(Equal(board.ColorOnline))

			Expect(indicator("cache").Text).To(Equal("Error"))
		})

		It("should render every service for online and offline", func() {
			b.SetAll(board.StateOffline)
			for _, ind := range b.Snapshot().Indicators {
				Expect(ind.State).To(Equal(board.StateOffline))
				Expect(ind.Color).To(Equal(board.ColorOffline))
			}

			b.SetAll(board.StateOnline)
			for _, ind := range b.Snapshot().Indicators {
				Expect(ind.State).To(Equal(board.StateOnline))
			}
		})

		It("should set the checking text", func() {
			b.SetAll(board.StateError)
			b.SetAll(board.StateChecking)
			Expect(indicator("cache").Text).To(Equal(board.TextChecking))
		})
	})

	Describe("SetServices", func() {
		It("should keep retained indicators and add new ones as checking", func() {
			b.Update("database", true)
			b.SetServices([]board.Service{{Name: "database", DisplayName: "Primary DB"}, {Name: "queue"}})

			Expect(b.Services()).To(Equal([]string{"database", "queue"}))
			Expect(indicator("database").State).To(Equal(board.StateOnline))
			Expect(indicator("database").DisplayName).To(Equal("Primary DB"))
			Expect(indicator("queue").State).To(Equal(board.StateChecking))

			_, ok := b.Snapshot().Indicator("cache")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Trigger and last check", func() {
		It("should record the trigger and last check values", func() {
			b.SetTrigger(true, board.LabelBusy)
			b.SetLastCheck("10:15:30")

			snap := b.Snapshot()
			Expect(snap.Trigger).To(Equal(board.Trigger{Disabled: true, Label: "Checking..."}))
			Expect(snap.LastCheck).To(Equal("10:15:30"))
		})
	})

	Describe("Snapshot", func() {
		It("should be detached from the board", func() {
			snap := b.Snapshot()
			b.Update("database", true)
			Expect(snap.Indicators[0].State).To(Equal(board.StateChecking))
		})

		It("should encode states by name", func() {
			b.Update("database", true)
			raw, err := json.Marshal(b.Snapshot())
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring(`"state":"online"`))
			Expect(string(raw)).To(ContainSubstring(`"state":"checking"`))
		})
	})

	Describe("concurrent use", func() {
		It("should tolerate parallel writers and readers", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(3)
				go func(i int) {
					defer wg.Done()
					b.Update("database", i%2 == 0)
				}(i)
				go func() {
					defer wg.Done()
					b.Reset()
				}()
				go func() {
					defer wg.Done()
					_ = b.Snapshot()
				}()
			}
			wg.Wait()
			Expect(b.Snapshot().Indicators).To(HaveLen(2))
		})
	})
})
