package allocator

import (
	"math"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thatjpcsguy/eventalloc/internal/traffic"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

var _ = Describe("Engine", func() {
	var (
		mainSt  traffic.Corridor
		riverRd traffic.Corridor
		hallA   *venue.Venue
		hallB   *venue.Venue
		hallC   *venue.Venue
		arena   *venue.Venue
		engine  *Engine
	)

	BeforeEach(func() {
		mainSt = corridor("Main St", 50)
		riverRd = corridor("River Rd", 30)
		hallA = fixedVenue("Hall A", 100, map[traffic.Corridor]int{mainSt: 20})
		hallB = fixedVenue("Hall B", 200, map[traffic.Corridor]int{mainSt: 40})
		hallC = fixedVenue("Hall C", 60, map[traffic.Corridor]int{riverRd: 10})
		arena = fixedVenue("Arena", 500, map[traffic.Corridor]int{riverRd: 1})

		var err error
		engine, err = New([]*venue.Venue{hallA, hallB, hallC, arena})
		Expect(err).NotTo(HaveOccurred())
	})

	Context("with an empty engine", func() {
		It("should expose the catalog in load order", func() {
			Expect(engine.Venues()).To(Equal([]*venue.Venue{hallA, hallB, hallC, arena}))
			Expect(engine.AllocatedEvents()).To(BeEmpty())
			Expect(engine.CorridorReport()).To(BeEmpty())
			Expect(engine.AllocationReport()).To(BeEmpty())
			Expect(engine.CheckInvariant()).To(Succeed())
		})

		It("should reject duplicate venue names in the catalog", func() {
			dup := fixedVenue("Hall A", 10, nil)
			_, err := New([]*venue.Venue{hallA, dup})
			Expect(err).To(MatchError(ContainSubstring("duplicate venue")))
		})

		It("should reject nil venues in the catalog", func() {
			_, err := New([]*venue.Venue{hallA, nil})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when allocating a concert to Hall A", func() {
		var alloc Allocation

		BeforeEach(func() {
			var err error
			alloc, err = engine.AddAllocation("Concert", "80", hallA)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should record the allocation and its traffic", func() {
			Expect(alloc.Venue).To(BeIdenticalTo(hallA))
			Expect(alloc.Event.Name()).To(Equal("Concert"))
			Expect(alloc.Event.Capacity()).To(Equal(80))
			Expect(alloc.Traffic.LoadOn(mainSt)).To(Equal(20))

			Expect(engine.CorridorReport()).To(Equal([]string{"Main St : 20"}))
			Expect(engine.AllocationReport()).To(Equal([]string{"Concert (80) : Hall A (100)"}))
			Expect(engine.AllocatedEvents()).To(Equal([]venue.Event{alloc.Event}))
			Expect(engine.IsVenueAllocated(hallA)).To(BeTrue())

			v, ok := engine.AllocatedVenue(alloc.Event)
			Expect(ok).To(BeTrue())
			Expect(v).To(BeIdenticalTo(hallA))
			Expect(engine.CheckInvariant()).To(Succeed())
		})

		It("should hand out a copy of the committed traffic", func() {
			Expect(alloc.Traffic.Add(mainSt, 25)).To(Succeed())
			Expect(engine.CheckInvariant()).To(Succeed())
			Expect(engine.Allocations()[0].Traffic.LoadOn(mainSt)).To(Equal(20))

			_, err := engine.AddAllocation("Market", "40", hallC)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.RemoveAllocation(alloc.Event)).To(Succeed())
			Expect(engine.CorridorReport()).To(Equal([]string{"River Rd : 10"}))
			Expect(engine.CheckInvariant()).To(Succeed())
		})

		It("should reject a second event at the same venue", func() {
			before := takeSnapshot(engine)
			_, err := engine.AddAllocation("Concert2", "10", hallA)
			Expect(err).To(MatchError(ErrConflict))
			Expect(err).To(MatchError(MsgVenueAllocated))
			expectUnchanged(engine, before)
		})

		It("should reject the same event at another venue", func() {
			before := takeSnapshot(engine)
			_, err := engine.AddAllocation("Concert", "80", arena)
			Expect(err).To(MatchError(ErrConflict))
			Expect(err).To(MatchError(MsgEventAllocated))
			expectUnchanged(engine, before)
		})

		It("should check hosting capacity before conflicts", func() {
			_, err := engine.AddAllocation("Concert", "80", hallC)
			Expect(err).To(MatchError(ErrCapacity))
		})

		It("should reject an event larger than the venue", func() {
			before := takeSnapshot(engine)
			_, err := engine.AddAllocation("BigConcert", "150", hallA)
			Expect(err).To(MatchError(ErrCapacity))
			Expect(err).To(MatchError(MsgCannotHost))
			expectUnchanged(engine, before)
		})

		It("should reject traffic that overloads a shared corridor", func() {
			before := takeSnapshot(engine)
			_, err := engine.AddAllocation("Festival", "100", hallB)
			Expect(err).To(MatchError(ErrSafety))
			Expect(err).To(MatchError(MsgUnsafeTraffic))

			var engineErr *Error
			Expect(err).To(BeAssignableToTypeOf(engineErr))
			Expect(err.(*Error).Corridors).To(Equal([]string{"Main St"}))

			expectUnchanged(engine, before)
			Expect(engine.CorridorReport()).To(Equal([]string{"Main St : 20"}))
		})

		It("should check safety before capacity and conflicts", func() {
			_, err := engine.AddAllocation("Concert", "80", hallB)
			Expect(err).To(MatchError(ErrSafety))
		})

		It("should restore the corridor report on removal", func() {
			Expect(engine.RemoveAllocation(alloc.Event)).To(Succeed())
			Expect(engine.CorridorReport()).To(BeEmpty())
			Expect(engine.AllocationReport()).To(BeEmpty())
			Expect(engine.AllocatedEvents()).To(BeEmpty())
			Expect(engine.IsVenueAllocated(hallA)).To(BeFalse())
			Expect(engine.CheckInvariant()).To(Succeed())

			_, err := engine.AddAllocation("Festival", "100", hallB)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.CorridorReport()).To(Equal([]string{"Main St : 40"}))
		})

		It("should refuse to extend the catalog", func() {
			Expect(engine.AddVenues(fixedVenue("Late Hall", 10, nil))).To(HaveOccurred())
		})
	})

	DescribeTable("input validation",
		func(name, capacity string, useVenue bool, message string) {
			var v *venue.Venue
			if useVenue {
				v = hallA
			}
			before := takeSnapshot(engine)
			_, err := engine.AddAllocation(name, capacity, v)
			Expect(err).To(MatchError(ErrValidation))
			Expect(err).To(MatchError(message))
			expectUnchanged(engine, before)
		},
		Entry("empty name", "", "10", true, MsgInvalidName),
		Entry("empty capacity", "X", "", true, MsgInvalidCapacity),
		Entry("non-numeric capacity", "X", "ten", true, MsgInvalidCapacity),
		Entry("negative capacity", "X", "-1", true, MsgInvalidCapacity),
		Entry("name checked before capacity", "", "", false, MsgInvalidName),
		Entry("capacity checked before venue", "X", "", false, MsgInvalidCapacity),
		Entry("no venue selected", "X", "10", false, MsgSelectVenue),
	)

	It("should reject venues that are not part of the catalog", func() {
		stranger := fixedVenue("Hall A", 100, map[traffic.Corridor]int{mainSt: 20})
		_, err := engine.AddAllocation("Concert", "80", stranger)
		Expect(err).To(MatchError(ErrValidation))
		Expect(err).To(MatchError(MsgUnknownVenue))
	})

	Context("when removing", func() {
		It("should report a missing selection as not found", func() {
			Expect(engine.RemoveAllocation(venue.Event{})).To(MatchError(ErrNotFound))
		})

		It("should report an unallocated event as not found", func() {
			_, err := engine.AddAllocation("Concert", "80", hallA)
			Expect(err).NotTo(HaveOccurred())

			before := takeSnapshot(engine)
			err = engine.RemoveAllocation(mustEvent("Concert", 81))
			Expect(err).To(MatchError(ErrNotFound))
			Expect(err).To(MatchError(MsgSelectEventToRem))
			expectUnchanged(engine, before)
		})

		It("should keep the other allocations intact", func() {
			_, err := engine.AddAllocation("Concert", "80", hallA)
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.AddAllocation("Market", "40", hallC)
			Expect(err).NotTo(HaveOccurred())

			Expect(engine.RemoveAllocation(mustEvent("Concert", 80))).To(Succeed())
			Expect(engine.AllocationReport()).To(Equal([]string{"Market (40) : Hall C (60)"}))
			Expect(engine.CorridorReport()).To(Equal([]string{"River Rd : 10"}))
			Expect(engine.CheckInvariant()).To(Succeed())
		})
	})

	Context("at corridor capacity", func() {
		var exact, over *venue.Venue

		BeforeEach(func() {
			exact = fixedVenue("Exact Hall", 100, map[traffic.Corridor]int{mainSt: 30})
			over = fixedVenue("Over Hall", 100, map[traffic.Corridor]int{mainSt: 31})
			Expect(engine.AddVenues(exact, over)).To(Succeed())
			_, err := engine.AddAllocation("Concert", "80", hallA)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should accept load that reaches capacity exactly", func() {
			_, err := engine.AddAllocation("Fair", "10", exact)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.CorridorReport()).To(Equal([]string{"Main St : 50"}))
			Expect(engine.CheckInvariant()).To(Succeed())
		})

		It("should reject one unit more", func() {
			_, err := engine.AddAllocation("Fair", "10", over)
			Expect(err).To(MatchError(ErrSafety))
		})
	})

	Context("at hosting capacity", func() {
		It("should accept an event that fills the venue exactly", func() {
			_, err := engine.AddAllocation("Sellout", "100", hallA)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.AllocationReport()).To(Equal([]string{"Sellout (100) : Hall A (100)"}))
		})

		It("should reject one seat more", func() {
			before := takeSnapshot(engine)
			_, err := engine.AddAllocation("Sellout", "101", hallA)
			Expect(err).To(MatchError(ErrCapacity))
			Expect(err).To(MatchError(MsgCannotHost))
			expectUnchanged(engine, before)
		})
	})

	Context("with proportional traffic", func() {
		var stadium *venue.Venue

		BeforeEach(func() {
			var err error
			stadium, err = venue.New("Stadium", 100, traffic.Of(map[traffic.Corridor]int{mainSt: 20}), venue.ModelProportional)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.AddVenues(stadium)).To(Succeed())
		})

		DescribeTable("should report oversized events as unsafe",
			func(capacity string) {
				before := takeSnapshot(engine)
				_, err := engine.AddAllocation("Rally", capacity, stadium)
				Expect(err).To(MatchError(ErrSafety))
				Expect(err.(*Error).Corridors).To(Equal([]string{"Main St"}))
				expectUnchanged(engine, before)
			},
			Entry("three times the venue", "300"),
			Entry("product beyond the int range", strconv.Itoa(math.MaxInt/10)),
			Entry("largest parsable capacity", strconv.Itoa(math.MaxInt)),
		)
	})

	It("should treat events with the same name but different capacity as distinct", func() {
		_, err := engine.AddAllocation("Show", "10", hallA)
		Expect(err).NotTo(HaveOccurred())
		_, err = engine.AddAllocation("Show", "11", hallC)
		Expect(err).NotTo(HaveOccurred())
		Expect(engine.AllocationReport()).To(Equal([]string{
			"Show (10) : Hall A (100)",
			"Show (11) : Hall C (60)",
		}))
		Expect(engine.CheckInvariant()).To(Succeed())
	})
})

func mustEvent(name string, capacity int) venue.Event {
	e, err := venue.NewEvent(name, capacity)
	Expect(err).NotTo(HaveOccurred())
	return e
}
